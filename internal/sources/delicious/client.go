package delicious

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/domain"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/utils"
)

// DefaultBaseURL is the v1 API root.
const DefaultBaseURL = "https://api.del.icio.us/v1"

// Client fetches the full export from the delicious API.
// Credentials live on the value, never in package state.
type Client struct {
	baseURL   string
	username  string
	password  string
	userAgent string
	http      *http.Client
	logger    logger.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration
}

// NewClient creates a source client
func NewClient(opts ClientOptions, log logger.Logger) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		username:  opts.Username,
		password:  opts.Password,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: opts.Timeout},
		logger:    log,
	}
}

// FetchAll downloads posts/all. Any status other than 200 is a FetchError.
func (c *Client) FetchAll(ctx context.Context) ([]byte, error) {
	url := c.baseURL + "/posts/all"
	c.logger.Info("grabbing bookmarks from delicious", logger.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "*/*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer utils.Close(resp.Body)

	c.logger.Debug("delicious response",
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	c.logger.Info("fetched export", logger.Int("bytes", len(body)))
	return body, nil
}
