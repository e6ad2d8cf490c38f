package auth

import (
	"net/http"
	"time"
)

// Cookie names shared with the frontend.
const (
	AccessCookie  = "spotify_access_token"
	RefreshCookie = "spotify_refresh_token"
)

// RefreshCookieMaxAge is fixed regardless of the provider's token lifetime.
const RefreshCookieMaxAge = 30 * 24 * time.Hour

// tokenCookie is HttpOnly and SameSite=Lax but not Secure, which only suits
// same-origin local development.
func tokenCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}
}

func setTokenCookies(w http.ResponseWriter, access, refresh string, expiresIn int) {
	http.SetCookie(w, tokenCookie(AccessCookie, access, expiresIn))
	if refresh != "" {
		http.SetCookie(w, tokenCookie(RefreshCookie, refresh, int(RefreshCookieMaxAge.Seconds())))
	}
}

func clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie(AccessCookie, "", -1))
	http.SetCookie(w, tokenCookie(RefreshCookie, "", -1))
}
