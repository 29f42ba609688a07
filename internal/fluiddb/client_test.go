package fluiddb_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

func newClient(t *testing.T) (*fluiddb.Client, *memstore.MemoryStore) {
	t.Helper()
	store := memstore.NewMemoryStore("alice")
	srv := sandbox.New("", logger.NewNop(), deps.Deps{
		Store: store,
		Users: map[string]string{"alice": "pw"},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := fluiddb.New(fluiddb.Options{BaseURL: ts.URL, Username: "alice", Password: "pw"}, logger.NewNop())
	return c, store
}

func TestCreateNamespaceIsIdempotent(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	created, err := c.CreateNamespace(ctx, "alice", "delicious", "Holds tags")
	if err != nil || !created {
		t.Fatalf("first CreateNamespace() = %v, %v", created, err)
	}
	created, err = c.CreateNamespace(ctx, "alice", "delicious", "Holds tags")
	if err != nil || created {
		t.Fatalf("second CreateNamespace() = %v, %v; want false, nil", created, err)
	}

	ns, err := c.GetNamespace(ctx, "alice/delicious")
	if err != nil {
		t.Fatalf("GetNamespace() error = %v", err)
	}
	if ns.Description != "Holds tags" {
		t.Errorf("Description = %q", ns.Description)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	if _, err := c.GetNamespace(ctx, "alice/nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetNamespace() error = %v, want ErrNotFound", err)
	}
	if _, err := c.GetTag(ctx, "alice/nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTag() error = %v, want ErrNotFound", err)
	}
	if _, _, err := c.GetAboutValue(ctx, "http://nowhere", "alice/title"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetAboutValue() error = %v, want ErrNotFound", err)
	}
}

func TestCreateTagUnderMissingNamespace(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.CreateTag(context.Background(), "alice/missing", "x", "", false)
	var se *domain.SyncError
	if !errors.As(err, &se) {
		t.Fatalf("CreateTag() error = %v, want SyncError", err)
	}
	if se.Status != 404 || se.ErrorClass != "NonexistentNamespace" {
		t.Errorf("SyncError = %+v", se)
	}
}

func TestObjectsAndValues(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	for _, name := range []string{"title", "x"} {
		if _, err := c.CreateTag(ctx, "alice", name, "", false); err != nil {
			t.Fatalf("CreateTag(%s): %v", name, err)
		}
	}

	id1, err := c.CreateObject(ctx, "http://a")
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}
	id2, err := c.CreateObject(ctx, "http://a")
	if err != nil || id1 != id2 {
		t.Fatalf("second CreateObject() = %q, %v; want %q", id2, err, id1)
	}

	err = c.PutValues(ctx, fluiddb.AboutQuery("http://a"), map[string]any{
		"alice/title": "A page",
		"alice/x":     nil,
	})
	if err != nil {
		t.Fatalf("PutValues() error = %v", err)
	}

	ids, err := c.QueryObjects(ctx, fluiddb.HasQuery("alice/x"))
	if err != nil {
		t.Fatalf("QueryObjects() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != id1 {
		t.Errorf("QueryObjects() = %v, want [%s]", ids, id1)
	}

	got, err := c.GetValues(ctx, fluiddb.AboutQuery("http://a"), []string{"alice/title", "alice/x"})
	if err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}
	values := got[id1]
	if values["alice/title"] != "A page" {
		t.Errorf("title = %v", values["alice/title"])
	}
	if v, ok := values["alice/x"]; !ok || v != nil {
		t.Errorf("x = %v (present %v), want nil", v, ok)
	}
}

func TestAboutValues(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	if _, err := c.CreateTag(ctx, "alice", "notes", "", false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		value    any
		mime     string
		want     any
		wantType string
	}{
		{name: "string", value: "hello", want: "hello", wantType: fluiddb.ContentTypePrimitive},
		{name: "bool", value: true, want: true, wantType: fluiddb.ContentTypePrimitive},
		{name: "number", value: 42, want: float64(42), wantType: fluiddb.ContentTypePrimitive},
		{name: "opaque", value: []byte("<b>hi</b>"), mime: "text/html", want: "<b>hi</b>", wantType: "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.SetAboutValue(ctx, "http://a/b?c=d", "alice/notes", tt.value, tt.mime); err != nil {
				t.Fatalf("SetAboutValue() error = %v", err)
			}
			got, ct, err := c.GetAboutValue(ctx, "http://a/b?c=d", "alice/notes")
			if err != nil {
				t.Fatalf("GetAboutValue() error = %v", err)
			}
			if ct != tt.wantType {
				t.Errorf("content type = %q, want %q", ct, tt.wantType)
			}
			if raw, ok := got.([]byte); ok {
				got = string(raw)
			}
			if got != tt.want {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}
