package handlers_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeze/internal/http/handlers"
	applog "steeze/internal/log"
)

func TestCSRF_MissingOrWrongTokenIsRejected(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)

	resp, body := b.post("/cart/add", url.Values{"productId": {pid}, "csrf": {"not-the-token"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "Security check failed")

	req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader("productId="+pid))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ = b.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body = b.get("/cart")
	assert.Contains(t, body, "Your cart is empty")
}

func TestValidation_BadInputs(t *testing.T) {
	b := newBrowser(t)

	resp, body := b.get("/products?q=" + url.QueryEscape("<script>alert(1)</script>"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid keyword")
	assert.NotContains(t, body, "<script>alert(1)</script>")

	resp, _ = b.post("/cart/add", url.Values{"productId": {"../../etc"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = b.get("/admin/orders/" + url.PathEscape("1 OR 1=1"))
	assert.Equal(t, http.StatusFound, resp.StatusCode, "admin check runs first")
}

func TestAvailabilityAPI(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)

	resp, body := b.get("/api/v1/availability")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "missing productId")

	resp, _ = b.get("/api/v1/availability?productId=" + url.QueryEscape("a b"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = b.get("/api/v1/availability?productId=999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = b.get("/api/v1/availability?productId=" + pid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, pid, got["productId"])
	assert.EqualValues(t, 10, got["qty"])
}

func TestErrorHandler_HidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db timeout: secret trace") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	logs := captureLogs(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "secret trace")
	assert.Contains(t, string(body), "Something went wrong")
	assert.Contains(t, logs.String(), "secret trace", "the cause is logged instead")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/gone", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownPathIs404(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestUpload_TooLarge(t *testing.T) {
	b := newBrowser(t)
	pid := b.api.AddProduct("Cap", 3000, nil)
	b.post("/cart/add", url.Values{"productId": {pid}})
	b.post("/checkout/proceed", nil)
	b.post("/checkout/details", checkoutDetails())
	b.post("/checkout/confirm", nil)

	// Over the receipt limit but inside the request body limit.
	resp, _ := b.upload("/checkout/upload", "proof.png", bytes.Repeat([]byte("x"), 1<<20+10))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body := b.get("/checkout")
	assert.Contains(t, body, "That file is too large.")
	assert.Empty(t, b.api.UploadedOrders())

	b.upload("/checkout/upload", "proof.exe", []byte("MZ"))
	_, body = b.get("/checkout")
	assert.Contains(t, body, "Please attach a JPG, PNG, WEBP or PDF receipt.")
	assert.Empty(t, b.api.UploadedOrders())
}

func captureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := applog.Logger.Out
	applog.Logger.SetOutput(&buf)
	t.Cleanup(func() { applog.Logger.SetOutput(prev) })
	return &buf
}

func TestSecurityEventsAreLogged(t *testing.T) {
	logs := captureLogs(t)

	b := newBrowser(t)
	b.post("/admin/login", url.Values{"email": {"ops@example.com"}, "password": {"hunter2"}})

	raw := logs.String()
	var found map[string]any
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		var e map[string]any
		if json.Unmarshal(sc.Bytes(), &e) == nil && e["action"] == "admin.login.fail" {
			found = e
		}
	}
	require.NotNil(t, found, "admin.login.fail entry")
	assert.Equal(t, "security", found["kind"])
	assert.Equal(t, "/admin/login", found["path"])
	assert.NotContains(t, raw, "hunter2")
}
