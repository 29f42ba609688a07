package fluiddb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type createObjectRequest struct {
	About string `json:"about"`
}

type createObjectResponse struct {
	ID  string `json:"id"`
	URI string `json:"URI"`
}

type queryObjectsResponse struct {
	IDs []string `json:"ids"`
}

// CreateObject finds or creates the object whose about value is about and returns its id.
func (c *Client) CreateObject(ctx context.Context, about string) (string, error) {
	path := buildPath("objects")
	resp, err := c.callJSON(ctx, http.MethodPost, path, nil, createObjectRequest{About: about})
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.syncError(http.MethodPost, path)
	}

	var out createObjectResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("POST %s: response carries no object id", path)
	}
	return out.ID, nil
}

// QueryObjects returns the ids of objects matching a query.
func (c *Client) QueryObjects(ctx context.Context, query string) ([]string, error) {
	path := buildPath("objects")
	resp, err := c.call(ctx, http.MethodGet, path, url.Values{"query": {query}}, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.syncError(http.MethodGet, path)
	}

	var out queryObjectsResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// AboutQuery builds the query that selects the object with the given about value.
func AboutQuery(about string) string {
	return fmt.Sprintf(`fluiddb/about = "%s"`, queryEscaper.Replace(about))
}

// HasQuery builds the query that selects every object carrying tagPath.
func HasQuery(tagPath string) string {
	return "has " + tagPath
}
