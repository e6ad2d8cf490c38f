package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/sonar/internal/shared"
)

// APIError is a non-2xx response from an upstream service.
// The proxy relays StatusCode and Message to its caller.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// AsAPIError unwraps err to an [*APIError].
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewHTTPClient returns the client used for all upstream calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// request describes one upstream call.
type request struct {
	service string
	method  string
	url     string
	token   string // bearer; empty for keyless APIs
	body    any
}

// do sends req and returns the status and body. Non-2xx responses are not errors here.
func do(ctx context.Context, hc *http.Client, req request) (int, []byte, error) {
	var reader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		upstreamRequests.WithLabelValues(req.service, "error").Inc()
		return 0, nil, fmt.Errorf("%w: %s request failed: %w", shared.ErrServiceUnavailable, req.service, err)
	}
	defer resp.Body.Close()
	upstreamRequests.WithLabelValues(req.service, strconv.Itoa(resp.StatusCode)).Inc()
	upstreamDuration.WithLabelValues(req.service).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func decode(service string, body []byte, result any) error {
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}
