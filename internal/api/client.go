// Package api is the HTTP client for the remote stock and formula service.
//
// Every failure is returned as an error matching one of the package
// sentinels (ErrNotFound, ErrConflict, ErrStatus, ErrTransport, ErrDecode);
// callers branch with errors.Is. No call is retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "rubberstock/internal/log"
	"rubberstock/internal/metrics"
)

const (
	defaultBaseURL = "https://api-rubber-hono.onrender.com"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20

	requestIDHeader = "X-Request-ID"
)

// Config describes how the Client should be initialised.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Collector
}

// Client performs CRUD calls against the /stock and /formulas collections.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// NewClient builds a Client, applying defaults for unset fields.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}, nil
}

// call describes one request/response exchange.
type call struct {
	resource string
	method   string
	path     string
	body     any
	out      any
	ifMatch  string
}

// keyPath joins a collection path and a percent-encoded key segment.
func keyPath(collection, key string) string {
	return collection + "/" + url.PathEscape(key)
}

func (c *Client) do(ctx context.Context, req call) (http.Header, error) {
	requestID := uuid.NewString()
	ctx = applog.WithAttrs(ctx, "request_id", requestID, "resource", req.resource)

	started := time.Now()
	header, err := c.exchange(ctx, requestID, req)
	c.metrics.ObserveClient(req.resource, req.method, outcome(err), time.Since(started))
	return header, err
}

func (c *Client) exchange(ctx context.Context, requestID string, req call) (http.Header, error) {
	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s body: %w", req.resource, err)
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, payload)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.ifMatch != "" {
		httpReq.Header.Set("If-Match", req.ifMatch)
	}

	applog.Debug(ctx, "api request", "method", req.method, "path", req.path)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		applog.Error(ctx, "api request failed", "method", req.method, "path", req.path, "error", err)
		return nil, fmt.Errorf("api: %s %s: %w: %w", req.method, req.path, ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		applog.Error(ctx, "api response read failed", "method", req.method, "path", req.path, "error", err)
		return nil, fmt.Errorf("api: read %s %s: %w: %w", req.method, req.path, ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := newStatusError(req.method, req.path, resp.StatusCode, body)
		if resp.StatusCode == http.StatusNotFound {
			applog.Info(ctx, "api resource not found", "method", req.method, "path", req.path)
		} else {
			applog.Error(ctx, "api returned error status",
				"method", req.method,
				"path", req.path,
				"status", resp.StatusCode,
				"message", statusErr.Message,
			)
		}
		return resp.Header, statusErr
	}

	if req.out != nil {
		if len(bytes.TrimSpace(body)) == 0 {
			applog.Error(ctx, "api returned empty body", "method", req.method, "path", req.path)
			return resp.Header, fmt.Errorf("api: %s %s: %w: empty body", req.method, req.path, ErrDecode)
		}
		if err := json.Unmarshal(body, req.out); err != nil {
			applog.Error(ctx, "api response is not valid json", "method", req.method, "path", req.path, "error", err)
			return resp.Header, fmt.Errorf("api: %s %s: %w: %w", req.method, req.path, ErrDecode, err)
		}
	}

	applog.Debug(ctx, "api request completed", "method", req.method, "path", req.path, "status", resp.StatusCode)
	return resp.Header, nil
}
