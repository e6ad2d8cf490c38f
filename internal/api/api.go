package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonar/internal/auth"
	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/server"
	"github.com/desertthunder/sonar/internal/services"
	"github.com/desertthunder/sonar/internal/shared"
)

const (
	internalErrorMessage    = "Internal server error"
	unavailableErrorMessage = "Service unavailable"

	maxBodyBytes = 1 << 16
)

// Spotify is the per-user Spotify client the handlers call.
type Spotify interface {
	UserProfile(ctx context.Context) (*models.User, error)
	TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error)
	Recommendations(ctx context.Context, seedTracks []string, limit int) ([]models.Track, error)
	UserPlaylists(ctx context.Context, limit, offset int) (*models.Paging[models.SimplePlaylist], error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]models.AudioFeatures, error)

	CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error)
	Devices(ctx context.Context) ([]models.Device, error)
	Play(ctx context.Context, req models.PlayRequest) error
	Pause(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, positionMS int, deviceID string) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
	Transfer(ctx context.Context, deviceID string, play bool) error
}

// SpotifyFactory binds a caller's access token to a [Spotify] client.
type SpotifyFactory func(token string) Spotify

// SpotifyFromService adapts a [services.SpotifyService] to a [SpotifyFactory].
func SpotifyFromService(s *services.SpotifyService) SpotifyFactory {
	return func(token string) Spotify { return s.WithToken(token) }
}

// Music is the lyrics and Last.fm lookup.
type Music interface {
	Lyrics(ctx context.Context, artist, song string) (*models.Lyrics, error)
	SimilarTracks(ctx context.Context, artist, track string, limit int) ([]models.SimilarTrack, error)
	ArtistInfo(ctx context.Context, name string) (*models.ArtistInfo, error)
}

// Handler serves the proxy endpoints under /api.
type Handler struct {
	spotify SpotifyFactory
	music   Music
	logger  *log.Logger
}

// NewHandler creates a [Handler].
func NewHandler(spotify SpotifyFactory, music Music, logger *log.Logger) *Handler {
	return &Handler{spotify: spotify, music: music, logger: logger}
}

// client returns the Spotify client for the token the guard resolved.
func (h *Handler) client(r *http.Request) Spotify {
	token, _ := auth.TokenFromContext(r.Context())
	return h.spotify(token)
}

// fail maps err to a JSON error response. Upstream errors keep their status
// and message; anything unexpected is logged and hidden behind a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := services.AsAPIError(err); ok {
		h.logger.Debug("upstream error", "service", apiErr.Service, "status", apiErr.StatusCode, "path", r.URL.Path)
		server.WriteError(w, apiErr.StatusCode, apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		server.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNotAuthenticated):
		server.WriteError(w, http.StatusUnauthorized, auth.NotAuthenticatedMessage)
	case errors.Is(err, shared.ErrServiceUnavailable):
		h.logger.Warn("upstream unavailable", "path", r.URL.Path, "error", err)
		server.WriteError(w, http.StatusServiceUnavailable, unavailableErrorMessage)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", server.RequestID(r.Context()), "error", err)
		server.WriteError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

type validator interface {
	Validate() error
}

// decodeBody reads an optional JSON body into v and validates it. An empty
// body leaves v at its zero value.
func decodeBody(r *http.Request, v validator) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	return v.Validate()
}

// intParam reads a non-negative integer query parameter, falling back to def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", shared.ErrInvalidInput, name)
	}
	return n, nil
}
