package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v1"

// Client is a thin transport to the maintenance backend. It does I/O only:
// retry and caching policy live in the query layer, never here.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	token   string
	httpc   *http.Client
	log     *logrus.Entry
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "upstream"),
	}
}

// Reconfigure applies a new base URL and timeout live. The http client is
// replaced, not mutated, so in-flight requests keep their old timeout.
func (c *Client) Reconfigure(baseURL string, timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	if timeout > 0 {
		c.httpc = &http.Client{Timeout: timeout}
	}
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) (*PingInfo, error) {
	var info PingInfo
	if err := c.get(ctx, "/health", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// errorEnvelope is the backend's error body shape.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	c.mu.RLock()
	url := c.baseURL + apiPrefix + path
	token := c.token
	httpc := c.httpc
	c.mu.RUnlock()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil && env.Error != "" {
			apiErr.Message = env.Error
			apiErr.Code = env.Code
		}
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).
			Debug("upstream error response")
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}
