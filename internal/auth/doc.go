// Package auth implements the Spotify authorization-code gateway and the request guard.
//
// # Gateway
//
// [Gateway] serves /api/auth/login, /callback, /logout, /status, /refresh and /token.
// Login issues a random state nonce which is saved in a [StateStore] for
// [StateTTL] and consumed at callback, so each nonce finishes at most one login.
//
// After a successful exchange the token pair is delivered according to the [Topology]:
//   - [Local]: HttpOnly cookies, then a redirect to FRONTEND_URL/app
//   - [Remote]: a redirect to FRONTEND_URL/app with the pair in the query
//
// Failures redirect to FRONTEND_URL?error=<code> where code is missing_code,
// invalid_state or auth_failed.
//
// # Guard
//
// [RequireAuth] resolves a bearer token from the Authorization header, then the
// spotify_access_token cookie, and stores it in the request context
// ([TokenFromContext]). It performs no validation; Spotify rejects bad tokens.
//
// # State stores
//
// [MemoryStateStore] suits a single instance. [RedisStateStore] shares nonces
// across instances and relies on key TTLs for expiry.
package auth
