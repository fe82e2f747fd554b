package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
)

func TestHTMXMiddleware(t *testing.T) {
	var got HTMXInfo
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = HTMXInfoFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/s/abc/order", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !got.IsHTMX {
		t.Fatalf("unexpected htmx info: %+v", got)
	}
	if rr.Header().Get("Vary") != "HX-Request" {
		t.Fatalf("expected Vary header")
	}
	if IsHTMXRequest(httptest.NewRequest(http.MethodGet, "/", nil).Context()) {
		t.Fatalf("expected plain request without middleware")
	}
}

func TestTrigger(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := Trigger(rr, "order:launch", map[string]string{"url": "https://wa.me/1?text=a%20b"}); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	want := `{"order:launch":{"url":"https://wa.me/1?text=a%20b"}}`
	if got := rr.Header().Get("HX-Trigger"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCSRFMiddleware(t *testing.T) {
	var seen string
	handler := CSRF(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "portfolio_csrf" {
		t.Fatalf("expected csrf cookie, got %v", cookies)
	}
	token := cookies[0].Value
	if seen != token {
		t.Fatalf("expected token in context")
	}

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("header token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.AddCookie(cookies[0])
		req.Header.Set("X-CSRF-Token", token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("form token accepted", func(t *testing.T) {
		form := url.Values{CSRFFormField: {token}}
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("mismatched token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.AddCookie(cookies[0])
		req.Header.Set("X-CSRF-Token", "other")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore()(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store")
	}
}

func TestAssetsWithCache(t *testing.T) {
	fsys := fstest.MapFS{"app.js": &fstest.MapFile{Data: []byte("console.log(1)")}}
	handler := http.StripPrefix("/assets", AssetsWithCache(fsys))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rr.Code)
	}
}
