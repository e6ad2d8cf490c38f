// Package server provides HTTP routing, middleware, and the server lifecycle for the sonar API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with per-path method tables,
// so wildcard patterns and several methods on one path both work.
//
// # Middleware
//
//   - [RequestIDMiddleware] assigns a uuid to every request
//   - [LoggingMiddleware] logs method, path, status and duration (never the query string)
//   - [RecoverMiddleware] converts panics into the JSON 500 envelope
//   - [RateLimitMiddleware] applies a token bucket per client IP
//   - [MetricsMiddleware] feeds the Prometheus registry served by [MetricsHandler]
//   - [CORS] admits the configured frontend origin with credentials
//
// # Responses
//
// Every JSON error has the shape {"error": "..."}; see [WriteError].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// The CLI uses this for the one-shot login capture server.
package server
