// Package api implements the authenticated proxy in front of the Spotify Web API,
// plus the lyrics and Last.fm lookups.
//
// Every route except the health probe sits behind [auth.RequireAuth]; handlers
// read the caller's token from the request context and bind it to a fresh
// Spotify client, so no token outlives its request.
//
// Responses use the schemas in the models package. Errors are always
// {"error": message}:
//   - upstream non-2xx: the upstream status and message
//   - invalid input: 400
//   - upstream unreachable or unconfigured: 503
//   - anything else: 500 "Internal server error"
package api
