package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(b *browser, email string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {b.api.Password}})
	return resp
}

func TestAccount_RequiresLogin(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.get("/account")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=/account", location(resp))
}

func TestRegister_ThenAccount(t *testing.T) {
	b := newBrowser(t)

	resp, body := b.post("/register", url.Values{
		"name": {"Ada Obi"}, "email": {"ada@example.com"}, "phone": {"08012345678"},
		"password": {"Passw0rd1"}, "confirm_password": {"Passw0rd2"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords do not match.")

	resp, _ = b.post("/register", url.Values{
		"name": {"Ada Obi"}, "email": {"ada@example.com"}, "phone": {"08012345678"},
		"password": {"Passw0rd1"}, "confirm_password": {"Passw0rd1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/account", location(resp))

	_, body = b.get("/account")
	assert.Contains(t, body, "Ada Obi")
	assert.Contains(t, body, "No orders yet.")
}

func TestLogin_FailureAndSuccess(t *testing.T) {
	b := newBrowser(t)
	b.api.AddUser("Ada Obi", "ada@example.com")

	resp, body := b.post("/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")
	assert.Contains(t, body, `value="ada@example.com"`)

	resp, _ = b.post("/login", url.Values{"email": {"ada@example.com"}, "password": {b.api.Password}, "next": {"/checkout"}})
	assert.Equal(t, "/checkout", location(resp))

	resp, _ = b.get("/login")
	assert.Equal(t, "/account", location(resp), "already logged in")

	b.post("/logout", nil)
	resp, _ = b.get("/account")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogin_OffsiteNextIsIgnored(t *testing.T) {
	b := newBrowser(t)
	b.api.AddUser("Ada Obi", "ada@example.com")
	resp, _ := b.post("/login", url.Values{"email": {"ada@example.com"}, "password": {b.api.Password}, "next": {"//evil.example/x"}})
	assert.Equal(t, "/account", location(resp))
}

func TestLogin_Throttled(t *testing.T) {
	b := newBrowser(t)
	for i := 0; i < 5; i++ {
		resp, _ := b.post("/login", url.Values{"email": {"x@example.com"}, "password": {"nope"}})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}
	resp, body := b.post("/login", url.Values{"email": {"x@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Too many attempts")

	// Admin login is counted separately.
	resp, _ = b.post("/admin/login", url.Values{"email": {"x@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccount_OrderOwnership(t *testing.T) {
	b := newBrowser(t)
	uid := b.api.AddUser("Ada Obi", "ada@example.com")
	b.api.AddOrder(map[string]any{"id": "501", "user_id": uid, "status": "Pending",
		"customer_info": map[string]any{"email": "ada@example.com"}, "total_cents": 7000})
	b.api.AddOrder(map[string]any{"id": "502", "user_id": "someone-else", "status": "Pending",
		"customer_info": map[string]any{"email": "bola@example.com"}, "total_cents": 9000})
	require.Equal(t, http.StatusSeeOther, login(b, "ada@example.com").StatusCode)

	_, body := b.get("/account")
	assert.Contains(t, body, "#501")
	assert.NotContains(t, body, "#502")

	resp, body := b.get("/account/orders/501")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "₦7,000")
	assert.Contains(t, body, `name="receipt"`)

	resp, _ = b.get("/account/orders/502")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = b.upload("/account/orders/502/receipt", "proof.png", []byte("png"))
	assert.Equal(t, "/account/orders/502", location(resp))
	assert.Empty(t, b.api.UploadedOrders())

	b.upload("/account/orders/501/receipt", "proof.png", []byte("png"))
	assert.Equal(t, []string{"501"}, b.api.UploadedOrders())
	_, body = b.get("/account/orders/501")
	assert.Contains(t, body, "Receipt uploaded.")
}
