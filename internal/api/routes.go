package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonar/internal/auth"
	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/server"
)

// Register mounts the proxy endpoints on r, each behind guard.
func (h *Handler) Register(r server.Router, guard server.Middleware) {
	g := server.With(r, guard)

	g.Handle(http.MethodGet, "/api/me", http.HandlerFunc(h.Me))
	g.Handle(http.MethodGet, "/api/top-tracks", http.HandlerFunc(h.TopTracks))
	g.Handle(http.MethodGet, "/api/top-artists", http.HandlerFunc(h.TopArtists))
	g.Handle(http.MethodGet, "/api/recently-played", http.HandlerFunc(h.RecentlyPlayed))
	g.Handle(http.MethodGet, "/api/recommendations", http.HandlerFunc(h.Recommendations))
	g.Handle(http.MethodGet, "/api/playlists", http.HandlerFunc(h.Playlists))
	g.Handle(http.MethodGet, "/api/playlist/{id}", http.HandlerFunc(h.PlaylistTracks))
	g.Handle(http.MethodGet, "/api/search", http.HandlerFunc(h.Search))
	g.Handle(http.MethodGet, "/api/analytics", http.HandlerFunc(h.Analytics))

	g.Handle(http.MethodGet, "/api/playback/current", http.HandlerFunc(h.CurrentlyPlaying))
	g.Handle(http.MethodGet, "/api/playback/devices", http.HandlerFunc(h.Devices))
	g.Handle(http.MethodPut, "/api/playback/play", http.HandlerFunc(h.Play))
	g.Handle(http.MethodPut, "/api/playback/pause", http.HandlerFunc(h.Pause))
	g.Handle(http.MethodPost, "/api/playback/next", http.HandlerFunc(h.Next))
	g.Handle(http.MethodPost, "/api/playback/previous", http.HandlerFunc(h.Previous))
	g.Handle(http.MethodPut, "/api/playback/seek", http.HandlerFunc(h.Seek))
	g.Handle(http.MethodPut, "/api/playback/volume", http.HandlerFunc(h.Volume))
	g.Handle(http.MethodPut, "/api/playback/transfer", http.HandlerFunc(h.Transfer))

	g.Handle(http.MethodGet, "/api/music/lyrics", http.HandlerFunc(h.Lyrics))
	g.Handle(http.MethodGet, "/api/music/similar-tracks", http.HandlerFunc(h.SimilarTracks))
	g.Handle(http.MethodGet, "/api/music/artist", http.HandlerFunc(h.ArtistInfo))
}

// Health is the unauthenticated liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// RouterOptions wires the pieces [NewRouter] assembles.
type RouterOptions struct {
	Gateway     *auth.Gateway
	Handler     *Handler
	FrontendURL string

	// AuthLimit and APILimit rate-limit /api/auth/* and the proxy routes; zero disables.
	AuthLimit server.RateLimitConfig
	APILimit  server.RateLimitConfig

	Logger *log.Logger
}

// NewRouter builds the full HTTP handler: request IDs, logging, panic
// recovery and metrics around every route, rate limits and the auth guard
// per group, and CORS for the frontend origin outermost.
func NewRouter(opts RouterOptions) http.Handler {
	r := server.NewBasicRouter()
	r.Use(
		server.RequestIDMiddleware(),
		server.LoggingMiddleware(opts.Logger),
		server.RecoverMiddleware(opts.Logger),
		server.MetricsMiddleware(),
	)

	r.HandleFunc(http.MethodGet, "/api/health", Health)
	r.Handle(http.MethodGet, "/metrics", server.MetricsHandler())

	guard := auth.RequireAuth(opts.Logger)
	if opts.Gateway != nil {
		opts.Gateway.Register(server.With(r, server.RateLimitMiddleware(opts.AuthLimit, opts.Logger)), guard)
	}
	if opts.Handler != nil {
		opts.Handler.Register(server.With(r, server.RateLimitMiddleware(opts.APILimit, opts.Logger)), guard)
	}

	if opts.FrontendURL == "" {
		return r
	}
	return server.CORS(opts.FrontendURL)(r)
}
