package client

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// CaptureResult is the outcome of a browser login observed by [CallbackCapture].
type CaptureResult struct {
	ExpiresIn int
	err       error
}

func (c *CaptureResult) Error() error {
	return c.err
}

// CallbackCapture plays the frontend's part at the end of a remote-topology login.
//
// The gateway redirects the browser to /app with the token pair in the query,
// or to / with an error code. Tokens are written to the [TokenStore] and one
// result is delivered on the channel. Later callbacks are rejected.
type CallbackCapture struct {
	tokens      *TokenStore
	resultChan  chan CaptureResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackCapture creates a capture that stores tokens into tokens.
func NewCallbackCapture(tokens *TokenStore) *CallbackCapture {
	return &CallbackCapture{
		tokens:     tokens,
		resultChan: make(chan CaptureResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackCapture) Routes() []string {
	return []string{"/app", "/"}
}

func (h *CallbackCapture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/favicon.ico" {
		http.NotFound(w, r)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if code := q.Get("error"); code != "" {
		h.Send(CaptureResult{err: fmt.Errorf("authorization failed: %s", code)})
		http.Error(w, "Authorization failed: "+code, http.StatusBadRequest)
		return
	}

	access, refresh := q.Get("access_token"), q.Get("refresh_token")
	if access == "" {
		h.Send(CaptureResult{err: fmt.Errorf("no tokens in redirect; is the server running in local topology?")})
		http.Error(w, "No tokens received", http.StatusBadRequest)
		return
	}

	expiresIn, err := strconv.Atoi(q.Get("expires_in"))
	if err != nil {
		expiresIn = 0
	}
	if err := h.tokens.Set(access, refresh, expiresIn); err != nil {
		h.Send(CaptureResult{err: fmt.Errorf("failed to store tokens: %w", err)})
		http.Error(w, "Failed to store tokens", http.StatusInternalServerError)
		return
	}

	h.Send(CaptureResult{ExpiresIn: expiresIn})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers the result (only once).
func (h *CallbackCapture) Send(result CaptureResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one result and is then closed.
func (h *CallbackCapture) Result() <-chan CaptureResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Signed in to Spotify</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .card { text-align: center; background: #181818; padding: 2rem; border-radius: 8px; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>Signed in</h1>
        <p>sonar has your tokens. You can close this window.</p>
    </div>
</body>
</html>
`
