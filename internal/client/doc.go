// Package client is the consumer side of the sonar API.
//
// # Token Store
//
// [TokenStore] keeps the access token, refresh token and absolute expiry
// (unix milliseconds) in any [Storage]. The command-line client backs it with
// SQLite through repositories.KVRepository; tests use [MemoryStorage].
//
// # Fetch Wrapper
//
// [Client.Fetch] and [Client.FetchInto] send every request with the cookie jar,
// a JSON content type and, when a token is stored, a bearer Authorization
// header. Non-2xx responses and transport failures surface as a single [*Error]
// whose message is the server's "error" field, "HTTP <status>" or "Network error".
//
// # Login Capture
//
// [CallbackCapture] receives the redirect that ends a remote-topology login
// and writes the delivered tokens to the store.
package client
