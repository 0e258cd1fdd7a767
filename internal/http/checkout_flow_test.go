package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/domain"
)

func checkoutDetails() url.Values {
	return url.Values{
		"first_name":  {"Ada"},
		"last_name":   {"Obi"},
		"email":       {"ada@example.com"},
		"phone":       {"08012345678"},
		"address":     {"1 Marina, Lagos"},
		"order_notes": {"leave at gate"},
	}
}

func TestCheckout_EndToEndWithReceipt(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Linen Shirt", 5000, nil)

	resp, _ := b.post("/cart/add", url.Values{"productId": {pid}, "qty": {"2"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cart", location(resp))

	_, body := b.get("/cart")
	assert.Contains(t, body, "Linen Shirt")
	assert.Contains(t, body, "₦10,000")
	assert.Contains(t, body, "Cart (2)")
	assert.Contains(t, body, "added to your cart", "flash shown after redirect")

	resp, _ = b.post("/checkout/proceed", nil)
	require.Equal(t, "/checkout", location(resp))
	_, body = b.get("/checkout")
	assert.Contains(t, body, `name="first_name"`)

	b.post("/checkout/details", checkoutDetails())
	_, body = b.get("/checkout")
	assert.Contains(t, body, "Place this order for ₦10,000?")
	assert.Contains(t, body, "leave at gate")

	b.post("/checkout/confirm", nil)
	_, body = b.get("/checkout")
	assert.Contains(t, body, "Order #102 placed")
	assert.Contains(t, body, `name="receipt"`)
	assert.Contains(t, body, "Cart (2)", "cart survives until payment")

	resp, _ = b.upload("/checkout/upload", "proof.png", []byte("\x89PNG fake"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = b.get("/checkout")
	assert.Contains(t, body, "We received your receipt for order #102")
	assert.Contains(t, body, "Cart (0)")
	assert.Equal(t, []string{"102"}, b.api.UploadedOrders())
	assert.Equal(t, "Proof Provided", b.api.OrderStatus("102"))

	b.mail.Wait()
	assert.Len(t, b.api.EmailsFor(domain.TriggerOrderConfirmation), 1)
	assert.Len(t, b.api.EmailsFor(domain.TriggerPaymentReceipt), 1)
}

func TestCheckout_InvalidDetailsStayOnDetails(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)
	b.post("/cart/add", url.Values{"productId": {pid}})
	b.post("/checkout/proceed", nil)

	form := checkoutDetails()
	form.Del("phone")
	b.post("/checkout/details", form)
	_, body := b.get("/checkout")
	assert.Contains(t, body, `name="first_name"`)
	assert.Contains(t, body, "Please fill in your first name")
	assert.Contains(t, body, `value="Ada"`, "typed details are kept")
}

func TestCheckout_CreateFailureStaysOnReview(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)
	b.post("/cart/add", url.Values{"productId": {pid}})
	b.post("/checkout/proceed", nil)
	b.post("/checkout/details", checkoutDetails())

	b.api.FailOn("orders.create", "Out of stock")
	b.post("/checkout/confirm", nil)
	_, body := b.get("/checkout")
	assert.Contains(t, body, "Out of stock")
	assert.Contains(t, body, "Yes, place order")
	assert.Empty(t, b.api.UploadedOrders())
}

func TestCheckout_PayLater(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)
	b.post("/cart/add", url.Values{"productId": {pid}})
	b.post("/checkout/proceed", nil)
	b.post("/checkout/details", checkoutDetails())
	b.post("/checkout/confirm", nil)
	b.post("/checkout/later", nil)

	_, body := b.get("/checkout")
	assert.Contains(t, body, "is waiting for payment")

	resp, _ := b.post("/checkout/new", nil)
	assert.Equal(t, "/products", location(resp))
}

func TestCheckout_EmptyCartCannotProceed(t *testing.T) {
	b := newBrowser(t)
	b.post("/checkout/proceed", nil)
	_, body := b.get("/checkout")
	assert.Contains(t, body, "Your cart is empty")
}

func TestCart_AdjustUpdateRemove(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Tee", 2500, nil)
	b.post("/cart/add", url.Values{"productId": {pid}, "qty": {"3"}})

	b.post("/cart/adjust", url.Values{"productId": {pid}, "delta": {"-1"}})
	_, body := b.get("/cart")
	assert.Contains(t, body, "₦5,000")

	b.post("/cart/update", url.Values{"productId": {pid}, "qty": {"0"}})
	_, body = b.get("/cart")
	assert.Contains(t, body, "Your cart is empty")

	resp, _ := b.post("/cart/adjust", url.Values{"productId": {pid}, "delta": {"5"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCart_PriceComesFromAPI(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Tee", 2500, nil)
	b.post("/cart/add", url.Values{"productId": {pid}, "price": {"1"}, "name": {"Free"}})
	_, body := b.get("/cart")
	assert.Contains(t, body, "₦2,500")
	assert.NotContains(t, body, "Free")
}

func TestCurrencySwitch(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Tee", 10000, nil)
	b.post("/cart/add", url.Values{"productId": {pid}})

	resp, _ := b.post("/currency", url.Values{"code": {"USD"}, "next": {"/cart"}})
	assert.Equal(t, "/cart", location(resp))
	_, body := b.get("/cart")
	assert.Contains(t, body, "$6.25")

	resp, _ = b.post("/currency", url.Values{"code": {"GBP"}, "next": {"//evil.example"}})
	assert.Equal(t, "/", location(resp))
}

func TestHome_ThemeAndShelves(t *testing.T) {
	b := newBrowser(t)
	b.api.AddProduct("Featured Jacket", 20000, map[string]any{"is_featured": 1})
	b.api.AddProduct("Sale Hat", 5000, map[string]any{"on_sale": true, "sale_price": 4000})

	resp, body := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ":root{")
	assert.Contains(t, body, "Featured Jacket")
	assert.Contains(t, body, "₦4,000")
	assert.True(t, strings.Count(body, "Sale Hat") >= 2, "sale item is on the sale and new-in shelves")
}
