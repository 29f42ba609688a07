package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
)

func withRegistry(t *testing.T) {
	t.Helper()
	saved := registry
	registry = nil
	t.Cleanup(func() { registry = saved })
}

func TestRegisterAllAppliesPerRouteMiddlewares(t *testing.T) {
	withRegistry(t)

	tagVersion := func(d deps.Deps) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Sandbox-Version", d.Version)
				next.ServeHTTP(w, r)
			})
		}
	}
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	Register(func(r chi.Router, d deps.Deps) { r.Get("/plain", ok) })
	Register(func(r chi.Router, d deps.Deps) { r.Get("/wrapped", ok) }, tagVersion)

	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{Version: "v1"})

	tests := []struct {
		path string
		want string
	}{
		{path: "/plain", want: ""},
		{path: "/wrapped", want: "v1"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("GET %s status = %d", tt.path, rec.Code)
		}
		if got := rec.Header().Get("X-Sandbox-Version"); got != tt.want {
			t.Errorf("GET %s header = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAuthenticatedUsesSandboxUsers(t *testing.T) {
	withRegistry(t)

	Register(func(r chi.Router, d deps.Deps) {
		r.Get("/private", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	}, authenticated)

	tests := []struct {
		name  string
		users map[string]string
		auth  bool
		want  int
	}{
		{name: "no credentials", users: map[string]string{"alice": "pw"}, want: http.StatusUnauthorized},
		{name: "valid credentials", users: map[string]string{"alice": "pw"}, auth: true, want: http.StatusOK},
		{name: "no users configured", users: nil, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			RegisterAll(r, deps.Deps{Users: tt.users})

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.auth {
				req.SetBasicAuth("alice", "pw")
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
