package models

// AuthStatus reports whether an access cookie is present. It says nothing about validity.
type AuthStatus struct {
	Authenticated bool `json:"authenticated"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenPair is what a successful refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest optionally carries the refresh token in the body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse hands the resolved bearer token to cookie-only clients.
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}
