package fluiddb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// Tag is the GET /tags representation.
type Tag struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Indexed     bool   `json:"indexed"`
}

type createTagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Indexed     bool   `json:"indexed"`
}

// CreateTag defines namespace/name. An existing tag is not an error.
func (c *Client) CreateTag(ctx context.Context, namespace, name, description string, indexed bool) (bool, error) {
	path := buildPath("tags", namespace)
	resp, err := c.callJSON(ctx, http.MethodPost, path, nil, createTagRequest{
		Name:        name,
		Description: description,
		Indexed:     indexed,
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

// GetTag returns the tag at path, or domain.ErrNotFound.
func (c *Client) GetTag(ctx context.Context, tagPath string) (*Tag, error) {
	path := buildPath("tags", tagPath)
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

	var tag Tag
	if err := decodeJSON(resp, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}
