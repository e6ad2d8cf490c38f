package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestBasicRouter(t *testing.T) {
	t.Run("Dispatches By Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/api/thing", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "get")
		})
		r.HandleFunc(http.MethodPut, "/api/thing", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "put")
		})

		for _, method := range []string{http.MethodGet, http.MethodPut} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(method, "/api/thing", nil))
			if rec.Body.String() != strings.ToLower(method) {
				t.Errorf("%s: got body %q", method, rec.Body.String())
			}
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/a", func(http.ResponseWriter, *http.Request) {})
		r.HandleFunc(http.MethodPost, "/a", func(http.ResponseWriter, *http.Request) {})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/a", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if got := rec.Header().Get("Allow"); got != "GET, POST" {
			t.Errorf("unexpected Allow header %q", got)
		}
		var body ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error != "Method not allowed" {
			t.Errorf("unexpected body %+v (%v)", body, err)
		}
	})

	t.Run("Path Values", func(t *testing.T) {
		r := NewBasicRouter()
		var id string
		r.HandleFunc(http.MethodGet, "/api/playlist/{id}", func(_ http.ResponseWriter, req *http.Request) {
			id = req.PathValue("id")
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/playlist/37i9dQZF1DX", nil))
		if id != "37i9dQZF1DX" {
			t.Errorf("expected path value, got %q", id)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.HandleFunc(http.MethodGet, "/", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") })
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Chain", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(mw("a"), mw("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "a,b" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("With Scopes Middleware", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("global"))
		With(r, mw("scoped")).Handle(http.MethodGet, "/scoped", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		r.HandleFunc(http.MethodGet, "/plain", func(http.ResponseWriter, *http.Request) {})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/scoped", nil))
		if strings.Join(order, ",") != "global,scoped" {
			t.Errorf("unexpected order %v", order)
		}

		order = nil
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
		if strings.Join(order, ",") != "global" {
			t.Errorf("scoped middleware leaked: %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Recover", func(t *testing.T) {
		h := RecoverMiddleware(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("Request ID", func(t *testing.T) {
		var seen string
		h := RequestIDMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected generated id in context and header, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "abc" {
			t.Errorf("expected inbound id to be reused, got %q", seen)
		}
	})

	t.Run("Logging Captures Status", func(t *testing.T) {
		var buf strings.Builder
		logger := log.New(&buf)
		h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app?access_token=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "418") {
			t.Errorf("expected status in log line, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("query string must not be logged")
		}
	})

	t.Run("Rate Limit", func(t *testing.T) {
		h := RateLimitMiddleware(RateLimitConfig{RequestsPerWindow: 2, Window: time.Hour, Burst: 2}, testLogger())(
			http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		)

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
			t.Errorf("unexpected codes %v", codes)
		}

		other := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
		other.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, other)
		if rec.Code != 200 {
			t.Errorf("other IPs have their own bucket, got %d", rec.Code)
		}
	})

	t.Run("Rate Limit Disabled", func(t *testing.T) {
		h := RateLimitMiddleware(RateLimitConfig{}, testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		for range 50 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != 200 {
				t.Fatalf("expected no limiting, got %d", rec.Code)
			}
		}
	})

	t.Run("Client IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		if got := ClientIP(req); got != "203.0.113.9" {
			t.Errorf("expected first forwarded address, got %q", got)
		}
	})

	t.Run("CORS Preflight", func(t *testing.T) {
		h := CORS("https://dash.example.com/")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("preflight should not reach the handler")
		}))

		req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
			t.Errorf("unexpected allow origin %q", got)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials to be allowed")
		}
	})

	t.Run("Metrics Endpoint", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(MetricsMiddleware())
		r.HandleFunc(http.MethodGet, "/api/health", func(http.ResponseWriter, *http.Request) {})
		r.Handle(http.MethodGet, "/metrics", MetricsHandler())

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if !strings.Contains(rec.Body.String(), "sonar_http_requests_total") {
			t.Error("expected request counter in exposition")
		}
	})
}

func TestServer(t *testing.T) {
	t.Run("Serves Until Cancelled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}

		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		srv := New(h, Options{ShutdownTimeout: time.Second}, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.Header.Get("Cache-Control") != "no-store" {
			t.Error("expected no-store on JSON responses")
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down")
		}
	})
}
