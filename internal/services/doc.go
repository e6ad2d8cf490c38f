// Package services implements clients for the upstream HTTP APIs the proxy forwards to.
//
// # Spotify
//
// [SpotifyService] holds the base URL and transport. Access tokens belong to
// the caller, not the service, so each request binds its own with
// [SpotifyService.WithToken] and gets a short-lived [SpotifyClient].
//
// # Lyrics and Last.fm
//
// [MusicService] covers the keyless lyrics.ovh lookup and the Last.fm
// similarity calls. Last.fm is disabled when no API key is configured.
//
// # Error Handling
//
// Upstream non-2xx responses become [*APIError], which carries the status
// and message the proxy relays to its caller. Other failures use sentinels
// from the shared package:
//   - [shared.ErrNotAuthenticated] : no access token bound
//   - [shared.ErrInvalidInput] : missing query or identifier
//   - [shared.ErrServiceUnavailable] : transport failure or unconfigured service
//   - [shared.ErrAPIRequest] : wrapped by every [*APIError]
package services
