package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/time/rate"
)

type routesHandler struct {
	routes []string
}

func (h *routesHandler) Routes() []string { return h.routes }
func (h *routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("custom " + r.URL.Path))
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle Is Method Qualified", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/thing", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/thing", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}, mw("route"))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if got := strings.Join(order, ","); got != "first,second,route,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("Handler Registers Routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(&routesHandler{routes: []string{"GET /a", "GET /b"}})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "custom "+path {
				t.Errorf("%s: unexpected body %q", path, rec.Body.String())
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		var seen string
		h := Logging(shared.NewLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

		id := rec.Header().Get(RequestIDHeader)
		if id == "" || id != seen {
			t.Errorf("expected request id %q in context, got %q", id, seen)
		}
		out := buf.String()
		if !strings.Contains(out, "/brew") || !strings.Contains(out, "418") || !strings.Contains(out, id) {
			t.Errorf("log line missing fields: %s", out)
		}
	})

	t.Run("Recoverer", func(t *testing.T) {
		var buf bytes.Buffer
		h := Recoverer(shared.NewLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Error("expected panic to be logged")
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected first request allowed, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", rec.Code)
		}
	})

	t.Run("NewLoginLimiter", func(t *testing.T) {
		unlimited := NewLoginLimiter(shared.LimitsConfig{})
		for range 100 {
			if !unlimited.Allow() {
				t.Fatal("expected zero rate to disable limiting")
			}
		}

		limited := NewLoginLimiter(shared.LimitsConfig{LoginRate: 0.001, LoginBurst: 2})
		if !limited.Allow() || !limited.Allow() || limited.Allow() {
			t.Error("expected burst of 2")
		}
	})
}

func TestCookieStore(t *testing.T) {
	t.Run("Reads Request Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "a.b.c"})

		store := NewCookieStore("token", time.Hour, httptest.NewRecorder(), req)
		token, ok, err := store.Load()
		if err != nil || !ok || token != "a.b.c" {
			t.Errorf("expected stored token, got %q %v %v", token, ok, err)
		}
	})

	t.Run("Save Sets Cookie Flags", func(t *testing.T) {
		rec := httptest.NewRecorder()
		store := NewCookieStore("token", time.Hour, rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if err := store.Save("x.y.z"); err != nil {
			t.Fatal(err)
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected 1 cookie, got %d", len(cookies))
		}
		c := cookies[0]
		if c.Value != "x.y.z" || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/" || c.MaxAge != 3600 {
			t.Errorf("unexpected cookie %+v", c)
		}

		if token, ok, _ := store.Load(); !ok || token != "x.y.z" {
			t.Errorf("expected saved token visible to Load, got %q", token)
		}
	})

	t.Run("Clear Expires Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "a.b.c"})
		rec := httptest.NewRecorder()

		store := NewCookieStore("token", time.Hour, rec, req)
		if err := store.Clear(); err != nil {
			t.Fatal(err)
		}
		if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 {
			t.Errorf("expected negative MaxAge, got %d", c.MaxAge)
		}
		if _, ok, _ := store.Load(); ok {
			t.Error("expected cleared store to be empty")
		}
	})
}
