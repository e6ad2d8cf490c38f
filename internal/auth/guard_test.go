package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuth(t *testing.T) {
	guard := RequireAuth(log.New(io.Discard))

	spy := func(calls *int, seen *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls++
			*seen, _ = TokenFromContext(r.Context())
		})
	}

	t.Run("Header Wins Over Cookie", func(t *testing.T) {
		var calls int
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "cookie-token"})

		guard(spy(&calls, &seen)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, 1, calls)
		assert.Equal(t, "header-token", seen)
	})

	t.Run("Cookie Fallback", func(t *testing.T) {
		var calls int
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "cookie-token"})

		guard(spy(&calls, &seen)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "cookie-token", seen)
	})

	t.Run("Rejects Without Token", func(t *testing.T) {
		var calls int
		var seen string
		rec := httptest.NewRecorder()

		guard(spy(&calls, &seen)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Zero(t, calls, "downstream must not run")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Not authenticated. Please login with Spotify."}`, rec.Body.String())
	})

	t.Run("Malformed Header Falls Back", func(t *testing.T) {
		tests := []struct {
			name   string
			header string
			cookie string
			want   string
			calls  int
		}{
			{"basic scheme", "Basic abc", "", "", 0},
			{"empty bearer", "Bearer ", "", "", 0},
			{"basic scheme with cookie", "Basic abc", "C", "C", 1},
			{"empty cookie", "", "", "", 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var calls int
				var seen string
				req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				if tt.cookie != "" {
					req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tt.cookie})
				}

				guard(spy(&calls, &seen)).ServeHTTP(httptest.NewRecorder(), req)
				assert.Equal(t, tt.calls, calls)
				assert.Equal(t, tt.want, seen)
			})
		}
	})
}

func TestTopology(t *testing.T) {
	tests := []struct {
		configured string
		frontend   string
		want       Topology
		wantErr    bool
	}{
		{"", "http://localhost:3000", Local, false},
		{"", "http://127.0.0.1:3000", Local, false},
		{"", "https://sonar.example.com", Remote, false},
		{"remote", "http://localhost:3000", Remote, false},
		{"LOCAL", "https://sonar.example.com", Local, false},
		{"hybrid", "https://sonar.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"|"+tt.frontend, func(t *testing.T) {
			got, err := ResolveTopology(tt.configured, tt.frontend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
