package fluiddb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name     string
		elements []string
		want     string
	}{
		{name: "single", elements: []string{"namespaces"}, want: "/namespaces"},
		{name: "nested path", elements: []string{"tags", "alice/delicious"}, want: "/tags/alice/delicious"},
		{name: "trims slashes", elements: []string{"/tags/", "/alice/"}, want: "/tags/alice"},
		{name: "escapes segment", elements: []string{"tags", "alice/c++ & go"}, want: "/tags/alice/c++%20&%20go"},
		{name: "question mark", elements: []string{"tags", "alice/why?"}, want: "/tags/alice/why%3F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildPath(tt.elements...); got != tt.want {
				t.Errorf("buildPath(%q) = %q, want %q", tt.elements, got, tt.want)
			}
		})
	}
}

func TestAlreadyExists(t *testing.T) {
	tests := []struct {
		name  string
		resp  response
		exist bool
	}{
		{name: "conflict", resp: response{status: http.StatusConflict}, exist: true},
		{name: "412 namespace", resp: response{status: http.StatusPreconditionFailed, errorClass: "NamespaceAlreadyExists"}, exist: true},
		{name: "412 no class", resp: response{status: http.StatusPreconditionFailed}, exist: true},
		{name: "412 other class", resp: response{status: http.StatusPreconditionFailed, errorClass: "PermissionDenied"}, exist: false},
		{name: "not found", resp: response{status: http.StatusNotFound}, exist: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.alreadyExists(); got != tt.exist {
				t.Errorf("alreadyExists() = %v, want %v", got, tt.exist)
			}
		})
	}
}

func TestAboutQuery(t *testing.T) {
	tests := []struct {
		about string
		want  string
	}{
		{about: "http://a", want: `fluiddb/about = "http://a"`},
		{about: `say "hi"`, want: `fluiddb/about = "say \"hi\""`},
		{about: `back\slash`, want: `fluiddb/about = "back\\slash"`},
	}

	for _, tt := range tests {
		if got := AboutQuery(tt.about); got != tt.want {
			t.Errorf("AboutQuery(%q) = %q, want %q", tt.about, got, tt.want)
		}
	}
}

func TestResolveInstance(t *testing.T) {
	tests := map[string]string{
		"":                       MainURL,
		"main":                   MainURL,
		"SANDBOX":                SandboxURL,
		"http://localhost:9000/": "http://localhost:9000",
	}
	for in, want := range tests {
		if got := ResolveInstance(in); got != want {
			t.Errorf("ResolveInstance(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnsupportedValueNeverSent(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL}, logger.NewNop())
	ctx := context.Background()

	err := c.PutValues(ctx, AboutQuery("http://a"), map[string]any{"alice/x": map[string]int{"a": 1}})
	var uv *domain.UnsupportedValueError
	if !errors.As(err, &uv) {
		t.Fatalf("PutValues() error = %v, want UnsupportedValueError", err)
	}
	if uv.Path != "alice/x" {
		t.Errorf("Path = %q", uv.Path)
	}

	err = c.SetAboutValue(ctx, "http://a", "alice/x", struct{}{}, "")
	if !errors.As(err, &uv) {
		t.Fatalf("SetAboutValue() error = %v, want UnsupportedValueError", err)
	}

	if calls != 0 {
		t.Errorf("server saw %d requests, want 0", calls)
	}
}

func TestSyncErrorCarriesClass(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, p, ok := r.BasicAuth(); !ok || u != "alice" || p != "pw" {
			t.Errorf("basic auth = %q/%q/%v", u, p, ok)
		}
		if got := r.Header.Get("Content-Type"); got != ContentTypeJSON {
			t.Errorf("Content-Type = %q", got)
		}
		w.Header().Set(ErrorClassHeader, "PermissionDenied")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Username: "alice", Password: "pw"}, logger.NewNop())
	_, err := c.CreateNamespace(context.Background(), "alice", "delicious", "d")

	var se *domain.SyncError
	if !errors.As(err, &se) {
		t.Fatalf("CreateNamespace() error = %v, want SyncError", err)
	}
	if se.Status != http.StatusUnauthorized || se.ErrorClass != "PermissionDenied" {
		t.Errorf("SyncError = %+v", se)
	}
	if se.Method != http.MethodPost || se.Path != "/namespaces/alice" {
		t.Errorf("SyncError request = %s %s", se.Method, se.Path)
	}
}
