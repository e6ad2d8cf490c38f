package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/desertthunder/sonar/internal/models"
)

const (
	loginPath   = "/api/auth/login"
	logoutPath  = "/api/auth/logout"
	statusPath  = "/api/auth/status"
	refreshPath = "/api/auth/refresh"
)

// LoginURL is where a user agent starts the authorization flow.
func (c *Client) LoginURL() string {
	return c.URL(loginPath)
}

// ensureFresh trades the stored refresh token for a new pair when the access
// token is believed expired. A failed attempt is not fatal: the request goes out
// and the server decides.
func (c *Client) ensureFresh(ctx context.Context) {
	if !c.tokens.IsExpired() {
		return
	}
	if _, ok := c.tokens.RefreshToken(); !ok {
		return
	}
	_ = c.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for a new token pair and stores it.
func (c *Client) Refresh(ctx context.Context) error {
	refresh, ok := c.tokens.RefreshToken()
	if !ok {
		return &Error{Status: http.StatusUnauthorized, Message: "No refresh token available"}
	}

	status, body, err := c.do(ctx, refreshPath, &Options{
		Method: http.MethodPost,
		Body:   models.RefreshRequest{RefreshToken: refresh},
	}, false)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &Error{Status: status, Message: errorMessage(status, body)}
	}

	var out models.TokenPair
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return &Error{Status: status, Message: "Invalid JSON response", err: err}
	}
	if out.RefreshToken == "" {
		out.RefreshToken = refresh
	}
	return c.tokens.Set(out.AccessToken, out.RefreshToken, out.ExpiresIn)
}

// Logout asks the server to clear its cookies and clears local storage.
// Local tokens are cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Fetch(ctx, logoutPath, &Options{Method: http.MethodPost})
	if clearErr := c.tokens.Clear(); err == nil {
		err = clearErr
	}
	return err
}

// Status reports the server's cookie-based authentication signal.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var out models.AuthStatus
	if err := c.FetchInto(ctx, statusPath, nil, &out); err != nil {
		return false, err
	}
	return out.Authenticated, nil
}
