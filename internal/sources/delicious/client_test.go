package delicious

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

func TestFetchAll(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/posts/all" {
			http.NotFound(w, r)
			return
		}
		if u, p, ok := r.BasicAuth(); !ok || u != "alice" || p != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if ua := r.UserAgent(); ua != "delicious2fluid/test" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte(`<posts user="alice"/>`))
	}))
	defer ts.Close()

	tests := []struct {
		name       string
		password   string
		wantStatus int
	}{
		{name: "ok", password: "pw"},
		{name: "bad credentials", password: "nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(ClientOptions{
				BaseURL:   ts.URL + "/v1/",
				Username:  "alice",
				Password:  tt.password,
				UserAgent: "delicious2fluid/test",
			}, logger.NewNop())

			body, err := c.FetchAll(context.Background())
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("FetchAll() error = %v", err)
				}
				if string(body) != `<posts user="alice"/>` {
					t.Errorf("body = %s", body)
				}
				return
			}

			var fe *domain.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("FetchAll() error = %v, want FetchError", err)
			}
			if fe.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", fe.Status, tt.wantStatus)
			}
		})
	}
}

func TestFetchAllUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(ClientOptions{BaseURL: url}, logger.NewNop())
	_, err := c.FetchAll(context.Background())

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("FetchAll() error = %v, want FetchError", err)
	}
	if fe.Status != 0 || fe.Err == nil {
		t.Errorf("FetchError = %+v, want transport error", fe)
	}
}

func TestLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xml")
	if err := os.WriteFile(path, []byte(`<posts/>`), 0o644); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}

	data, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != `<posts/>` {
		t.Errorf("Load() = %s", data)
	}

	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.xml")).Load(); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
