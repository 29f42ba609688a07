package fluiddb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// Namespace is the GET /namespaces representation.
type Namespace struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

type createNamespaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateNamespace creates parent/name. An existing namespace is not an error;
// created is false in that case.
func (c *Client) CreateNamespace(ctx context.Context, parent, name, description string) (bool, error) {
	path := buildPath("namespaces", parent)
	resp, err := c.callJSON(ctx, http.MethodPost, path, nil, createNamespaceRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return false, err
	}
	switch {
	case resp.ok():
		return true, nil
	case resp.alreadyExists():
		return false, nil
	default:
		return false, resp.syncError(http.MethodPost, path)
	}
}

// GetNamespace returns the namespace at path, or domain.ErrNotFound.
func (c *Client) GetNamespace(ctx context.Context, nsPath string) (*Namespace, error) {
	path := buildPath("namespaces", nsPath)
	resp, err := c.call(ctx, http.MethodGet, path, url.Values{"returnDescription": {"True"}}, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if !resp.ok() {
		return nil, resp.syncError(http.MethodGet, path)
	}

	var ns Namespace
	if err := decodeJSON(resp, &ns); err != nil {
		return nil, err
	}
	return &ns, nil
}
