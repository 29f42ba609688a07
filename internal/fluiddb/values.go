package fluiddb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
)

// ValueEnvelope wraps a tag value in the /values body.
type ValueEnvelope struct {
	Value any `json:"value"`
}

type valuesResponse struct {
	Results struct {
		ID map[string]map[string]ValueEnvelope `json:"id"`
	} `json:"results"`
}

// IsPrimitive reports whether v can be sent as a primitive value:
// null, bool, number, string or a list of strings.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case nil, bool, string, []string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// PutValues writes every path => value pair onto the objects matched by query
// in a single request. Values must be primitive.
func (c *Client) PutValues(ctx context.Context, query string, values map[string]any) error {
	body := make(map[string]ValueEnvelope, len(values))
	for tagPath, v := range values {
		if !IsPrimitive(v) {
			return &domain.UnsupportedValueError{Path: tagPath, Type: fmt.Sprintf("%T", v)}
		}
		body[tagPath] = ValueEnvelope{Value: v}
	}

	path := buildPath("values")
	resp, err := c.callJSON(ctx, http.MethodPut, path, url.Values{"query": {query}}, body)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.syncError(http.MethodPut, path)
	}
	return nil
}

// GetValues reads tagPaths from every object matched by query, keyed by object id.
func (c *Client) GetValues(ctx context.Context, query string, tagPaths []string) (map[string]map[string]any, error) {
	params := url.Values{"query": {query}}
	for _, t := range tagPaths {
		params.Add("tag", t)
	}

	path := buildPath("values")
	resp, err := c.call(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.syncError(http.MethodGet, path)
	}

	var out valuesResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}

	results := make(map[string]map[string]any, len(out.Results.ID))
	for id, tags := range out.Results.ID {
		values := make(map[string]any, len(tags))
		for tagPath, env := range tags {
			values[tagPath] = env.Value
		}
		results[id] = values
	}
	return results, nil
}

// encodeValue picks the wire form of a single tag value.
// Opaque values need an explicit media type; nothing is sent otherwise.
func encodeValue(tagPath string, v any, mimeType string) ([]byte, string, error) {
	if mimeType != "" {
		switch raw := v.(type) {
		case []byte:
			return raw, mimeType, nil
		case string:
			return []byte(raw), mimeType, nil
		default:
			return nil, "", &domain.UnsupportedValueError{Path: tagPath, Type: fmt.Sprintf("%T", v)}
		}
	}
	if !IsPrimitive(v) {
		return nil, "", &domain.UnsupportedValueError{Path: tagPath, Type: fmt.Sprintf("%T", v)}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode value: %w", err)
	}
	return data, ContentTypePrimitive, nil
}

// SetAboutValue writes one value on the object with the given about value.
func (c *Client) SetAboutValue(ctx context.Context, about, tagPath string, v any, mimeType string) error {
	body, contentType, err := encodeValue(tagPath, v, mimeType)
	if err != nil {
		return err
	}

	path := buildPath("about") + "/" + url.PathEscape(about) + buildPath(tagPath)
	resp, err := c.call(ctx, http.MethodPut, path, nil, body, contentType)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.syncError(http.MethodPut, path)
	}
	return nil
}

// GetAboutValue reads one value. Primitive values are decoded;
// opaque values are returned as []byte with their media type.
func (c *Client) GetAboutValue(ctx context.Context, about, tagPath string) (any, string, error) {
	path := buildPath("about") + "/" + url.PathEscape(about) + buildPath(tagPath)
	resp, err := c.call(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	if resp.status == http.StatusNotFound {
		return nil, "", domain.ErrNotFound
	}
	if !resp.ok() {
		return nil, "", resp.syncError(http.MethodGet, path)
	}

	if resp.contentType != ContentTypePrimitive {
		return resp.body, resp.contentType, nil
	}
	var v any
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return nil, "", fmt.Errorf("failed to decode value: %w", err)
	}
	return v, resp.contentType, nil
}
