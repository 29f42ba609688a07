package fluiddb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/utils"
)

const (
	// MainURL is the production instance.
	MainURL = "https://fluiddb.fluidinfo.com"
	// SandboxURL is a scratch instance whose data may be wiped at any time.
	SandboxURL = "https://sandbox.fluidinfo.com"

	ContentTypeJSON      = "application/json"
	ContentTypePrimitive = "application/vnd.fluiddb.value+json"

	// ErrorClassHeader carries the server-side error name on failures.
	ErrorClassHeader = "X-FluidDB-Error-Class"
)

// ResolveInstance maps the "main" and "sandbox" aliases to their URLs.
func ResolveInstance(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "main":
		return MainURL
	case "sandbox":
		return SandboxURL
	default:
		return strings.TrimRight(name, "/")
	}
}

// Client is an authenticated session against one FluidDB instance.
// It is safe to use several clients with different credentials in one process.
type Client struct {
	baseURL   string
	username  string
	password  string
	userAgent string
	http      *http.Client
	logger    logger.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL   string // instance URL or "main" / "sandbox"
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration
}

// New creates a client session
func New(opts Options, log logger.Logger) *Client {
	return &Client{
		baseURL:   ResolveInstance(opts.BaseURL),
		username:  opts.Username,
		password:  opts.Password,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: opts.Timeout},
		logger:    log,
	}
}

// BaseURL returns the resolved instance URL.
func (c *Client) BaseURL() string { return c.baseURL }

// response is a fully read HTTP response.
type response struct {
	status      int
	contentType string
	errorClass  string
	body        []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// alreadyExists reports the duplicate-creation failures that find-or-create tolerates.
func (r *response) alreadyExists() bool {
	if r.status == http.StatusConflict {
		return true
	}
	return r.status == http.StatusPreconditionFailed &&
		(r.errorClass == "" || strings.HasSuffix(r.errorClass, "AlreadyExists"))
}

func (r *response) syncError(method, path string) *domain.SyncError {
	return &domain.SyncError{Method: method, Path: path, Status: r.status, ErrorClass: r.errorClass}
}

// buildPath escapes each element so names containing reserved characters stay one segment.
func buildPath(elements ...string) string {
	var sb strings.Builder
	for _, el := range elements {
		for _, seg := range strings.Split(strings.Trim(el, "/"), "/") {
			if seg == "" {
				continue
			}
			sb.WriteByte('/')
			sb.WriteString(url.PathEscape(seg))
		}
	}
	return sb.String()
}

// call performs one request. Transport failures are returned as-is;
// status handling is left to the caller.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer utils.Close(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	r := &response{
		status:      resp.StatusCode,
		contentType: ct,
		errorClass:  resp.Header.Get(ErrorClassHeader),
		body:        data,
	}

	c.logger.Debug("fluiddb call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", r.status),
		logger.String("error_class", r.errorClass),
		logger.Duration("duration", time.Since(start)))

	return r, nil
}

func (c *Client) callJSON(ctx context.Context, method, path string, query url.Values, payload any) (*response, error) {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		body = data
	}
	return c.call(ctx, method, path, query, body, ContentTypeJSON)
}

func decodeJSON(r *response, dst any) error {
	if len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
