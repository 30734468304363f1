// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tenderec/internal/common/errors"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/metrics"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Client is a JSON REST client rooted at a single API base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Named("http"),
	}
}

// WithHTTPClient swaps the underlying transport client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call. Path is relative to the base URL and must already be escaped.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	// NotFound makes a 404 reply a NotFound error naming Resource instead of a status error.
	NotFound bool
	Resource string
}

// Do performs the request and returns the raw response body of a 2xx reply.
// A 404 on a NotFound request becomes a NotFound error, any other non-2xx a
// transient status error, and transport failures a transient failure.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", r.Operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", r.Operation, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.APIRequests.WithLabelValues(r.Operation, "error").Inc()
		c.logger.Warn("API request failed", map[string]interface{}{
			"operation":  r.Operation,
			"method":     r.Method,
			"path":       r.Path,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, errors.NewTransientFailureError(r.Operation, err)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	metrics.APIRequests.WithLabelValues(r.Operation, status).Inc()
	metrics.APIRequestDuration.WithLabelValues(r.Operation).Observe(elapsed.Seconds())

	c.logger.Debug("API request completed", map[string]interface{}{
		"operation":   r.Operation,
		"method":      r.Method,
		"path":        r.Path,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"duration_ms": elapsed.Milliseconds(),
	})

	if r.NotFound && resp.StatusCode == http.StatusNotFound {
		resource := r.Resource
		if resource == "" {
			resource = r.Operation
		}
		return nil, errors.NewNotFoundError(resource, r.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.NewStatusError(r.Operation, resp.StatusCode, string(snippet))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransientFailureError(r.Operation, err)
	}
	return data, nil
}

// DoJSON performs the request and decodes a 2xx body into out.
func (c *Client) DoJSON(ctx context.Context, r Request, out interface{}) error {
	data, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return Decode(r.Operation, data, out)
}

// Decode unmarshals a response body, classifying failures as invalid responses.
func Decode(operation string, data []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewInvalidResponseError(operation, err)
	}
	return nil
}

// PathEscape joins escaped segments into a path starting with "/".
func PathEscape(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
