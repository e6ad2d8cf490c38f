package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// NetworkErrorMessage is reported when a failure carries no readable error body.
const NetworkErrorMessage = "Network error"

// Error is the single failure shape returned by [Client] for any unsuccessful request.
type Error struct {
	Status  int // HTTP status; 0 when the request never completed
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

// Options customises a single request.
type Options struct {
	Method  string      // defaults to GET
	Headers http.Header // merged over the defaults; caller values win
	Body    any         // JSON-encoded when non-nil
}

// Client is the fetch wrapper used for every call to the sonar API.
//
// Requests always carry cookies from the client's jar and a JSON content type.
// When the [TokenStore] holds an access token it is sent as a bearer token, so
// callers need not know whether the server delivers tokens by cookie or by redirect.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenStore
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. A cookie jar is added when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			clone := *hc
			c.httpClient = &clone
		}
	}
}

// New creates a [Client] rooted at baseURL. tokens may be nil.
func New(baseURL string, tokens *TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	if c.tokens == nil {
		c.tokens = NewTokenStore(nil)
	}
	return c
}

// Tokens returns the client's token store.
func (c *Client) Tokens() *TokenStore { return c.tokens }

// URL resolves target against the base URL. Absolute URLs pass through.
func (c *Client) URL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

// Fetch performs the request and returns the decoded JSON body (nil for an empty body).
func (c *Client) Fetch(ctx context.Context, target string, opts *Options) (any, error) {
	var out any
	if err := c.FetchInto(ctx, target, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchInto performs the request and decodes a successful JSON body into dst.
func (c *Client) FetchInto(ctx context.Context, target string, opts *Options, dst any) error {
	c.ensureFresh(ctx)

	status, body, err := c.do(ctx, target, opts, true)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &Error{Status: status, Message: errorMessage(status, body)}
	}

	if len(bytes.TrimSpace(body)) == 0 || dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &Error{Status: status, Message: "Invalid JSON response", err: err}
	}
	return nil
}

// do sends one request. Transport failures are already normalised to *Error.
func (c *Client) do(ctx context.Context, target string, opts *Options, withToken bool) (int, []byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, nil, &Error{Message: fmt.Sprintf("invalid request body: %v", err), err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(target), reader)
	if err != nil {
		return 0, nil, &Error{Message: NetworkErrorMessage, err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if withToken {
		if token, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &Error{Message: NetworkErrorMessage, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Status: resp.StatusCode, Message: NetworkErrorMessage, err: err}
	}
	return resp.StatusCode, body, nil
}

// errorMessage extracts {"error": "..."} from a failed response body.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return NetworkErrorMessage
	}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", status)
}
