package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/httpserver"
	"github.com/haikalarif/portofolio-freelance/internal/metrics"
	"github.com/haikalarif/portofolio-freelance/internal/pagesession"
	"github.com/haikalarif/portofolio-freelance/internal/platform/config"
)

// SampleCatalogYAML backs the default test server.
const SampleCatalogYAML = `
packages:
  - id: basic
    name: Paket Basic
    price: 1500000
  - id: bisnis
    name: Paket Bisnis
    price: 3500000
    highlighted: true
addons:
  - id: seo
    name: SEO
    price: 200000
  - id: hosting
    name: Hosting
    price: 350000
  - id: logo
    name: Logo
    price: 150000
`

// SampleCatalog parses SampleCatalogYAML.
func SampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()

	c, err := catalog.Parse([]byte(SampleCatalogYAML))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithSessions shares a session store with the test.
func WithSessions(store *pagesession.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Sessions = store
	}
}

// WithMetrics shares a metrics registry with the test.
func WithMetrics(reg *metrics.Registry) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Metrics = reg
	}
}

// WithLogger overrides the request logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// WithCatalog replaces the sample catalog.
func WithCatalog(c *catalog.Catalog) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = c
	}
}

// NewServer constructs an httptest server running the site HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:  ":0",
		Title:    "Portfolio",
		Catalog:  SampleCatalog(t),
		Sessions: pagesession.NewStore(),
		Messaging: config.MessagingConfig{
			Host:               "wa.me",
			OrderDestination:   "6282119904581",
			ContactDestination: "62821199045813",
			ChatDestination:    "6281234567890",
			ChatGreeting:       "Halo, saya tertarik dengan layanan pembuatan website Anda.",
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Browser is a cookie-keeping client that never follows redirects and echoes the CSRF token.
type Browser struct {
	t      testing.TB
	base   string
	client *http.Client
	Token  string
}

// NewBrowser returns a Browser for ts.
func NewBrowser(t testing.TB, ts *httptest.Server) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Browser{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Open loads the pricing page and returns its document and page session id.
func (b *Browser) Open() (*goquery.Document, string) {
	b.t.Helper()

	resp, body := b.Do(http.MethodGet, "/", nil, false)
	if resp.StatusCode != http.StatusOK {
		b.t.Fatalf("GET /: status %d", resp.StatusCode)
	}
	doc := ParseHTML(b.t, body)
	b.Token = doc.Find(`input[name="csrf_token"]`).First().AttrOr("value", "")
	return doc, doc.Find("body").AttrOr("data-session", "")
}

// Post submits form values, as htmx when htmx is set.
func (b *Browser) Post(path string, form url.Values, htmx bool) (*http.Response, []byte) {
	b.t.Helper()
	return b.Do(http.MethodPost, path, form, htmx)
}

// Do performs a request and reads the full body.
func (b *Browser) Do(method, path string, form url.Values, htmx bool) (*http.Response, []byte) {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, b.base+path, body)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-CSRF-Token", b.Token)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}
	return resp, payload
}
