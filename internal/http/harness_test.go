package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"steeze/internal/apiclient"
	"steeze/internal/apitest"
	"steeze/internal/config"
	"steeze/internal/http/handlers"
	"steeze/internal/notify"
	"steeze/internal/repos"
)

// browser drives the full app and keeps cookies between requests.
type browser struct {
	t    *testing.T
	app  *fiber.App
	api  *apitest.Server
	mail *notify.Dispatcher
	jar  map[string]string
}

func testConfig(apiURL string) config.Config {
	return config.Config{
		DBDSN:         ":memory:",
		APIBaseURL:    apiURL,
		APITimeout:    5 * time.Second,
		EmailTimeout:  5 * time.Second,
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
		MaxUploadMB:   1,
		RatePerMinute: 1000,
	}
}

func newBrowser(t *testing.T, tweak ...func(*config.Config)) *browser {
	t.Helper()
	api := apitest.New(t)
	cfg := testConfig(api.URL)
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	mail := notify.NewDispatcher(client, cfg.EmailTimeout)
	app := handlers.NewApp(handlers.NewDeps(db, cfg, client, mail), cfg)

	b := &browser{t: t, app: app, api: api, mail: mail, jar: map[string]string{}}
	// First visit hands out the sid and csrf cookies.
	b.get("/login")
	require.NotEmpty(t, b.jar["csrf_"], "csrf cookie")
	require.NotEmpty(t, b.jar["sid"], "sid cookie")
	return b
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	for name, value := range b.jar {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(b.jar, ck.Name)
			continue
		}
		b.jar[ck.Name] = ck.Value
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits a form with the current csrf token.
func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.jar["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// upload posts a multipart form carrying a "receipt" file.
func (b *browser) upload(path, filename string, data []byte) (*http.Response, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(b.t, w.WriteField("csrf", b.jar["csrf_"]))
	fw, err := w.CreateFormFile("receipt", filename)
	require.NoError(b.t, err)
	_, _ = fw.Write(data)
	require.NoError(b.t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) adminLogin() {
	b.t.Helper()
	resp, _ := b.post("/admin/login", url.Values{"email": {"admin@steeze.test"}, "password": {b.api.Password}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/admin", resp.Header.Get("Location"))
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }
