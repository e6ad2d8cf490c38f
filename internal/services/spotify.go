// Spotify Web API client
//
// Response types live in models; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"
	spotifyName    = "spotify"

	maxPlaylistPages = 10
)

// SpotifyService holds the shared transport for Spotify calls. Tokens are
// per request; see [SpotifyService.WithToken].
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a service against baseURL (empty for the public API).
func NewSpotifyService(baseURL string, httpClient *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpotifyService{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithToken binds an access token for one request's worth of calls.
func (s *SpotifyService) WithToken(token string) *SpotifyClient {
	return &SpotifyClient{service: s, token: token}
}

// SpotifyClient performs Spotify calls as one user.
type SpotifyClient struct {
	service *SpotifyService
	token   string
}

// spotifyError is the Web API error envelope.
type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// doRequest performs an authenticated request. body is JSON-encoded when non-nil.
func (c *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) (int, error) {
	if c.token == "" {
		return 0, shared.ErrNotAuthenticated
	}

	status, data, err := do(ctx, c.service.httpClient, request{
		service: spotifyName,
		method:  method,
		url:     c.service.baseURL + endpoint,
		token:   c.token,
		body:    body,
	})
	if err != nil {
		return status, err
	}

	if status < 200 || status >= 300 {
		return status, spotifyAPIError(status, data)
	}
	return status, decode(spotifyName, data, result)
}

func spotifyAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Service: spotifyName, StatusCode: status, Message: http.StatusText(status)}

	var envelope spotifyError
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if envelope.Error.Reason != "" {
			apiErr.Message += " (" + envelope.Error.Reason + ")"
		}
	}
	return apiErr
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// UserProfile retrieves the current user's profile.
func (c *SpotifyClient) UserProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves the user's top tracks for the time range (up to 50).
func (c *SpotifyClient) TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", timeRange, clampLimit(limit, 20, 50))

	var page models.Paging[models.Track]
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TopArtists retrieves the user's top artists for the time range (up to 50).
func (c *SpotifyClient) TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error) {
	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", timeRange, clampLimit(limit, 20, 50))

	var page models.Paging[models.Artist]
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// RecentlyPlayed retrieves the most recent plays (up to 50).
func (c *SpotifyClient) RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error) {
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", clampLimit(limit, 20, 50))

	var page models.Paging[models.PlayHistory]
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Recommendations seeds from up to five track IDs.
func (c *SpotifyClient) Recommendations(ctx context.Context, seedTracks []string, limit int) ([]models.Track, error) {
	if len(seedTracks) == 0 {
		return []models.Track{}, nil
	}
	if len(seedTracks) > 5 {
		seedTracks = seedTracks[:5]
	}

	params := url.Values{}
	params.Set("seed_tracks", strings.Join(seedTracks, ","))
	params.Set("limit", fmt.Sprint(clampLimit(limit, 20, 100)))

	var response struct {
		Tracks []models.Track `json:"tracks"`
	}
	if _, err := c.doRequest(ctx, http.MethodGet, "/recommendations?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// UserPlaylists retrieves one page of the user's playlists.
func (c *SpotifyClient) UserPlaylists(ctx context.Context, limit, offset int) (*models.Paging[models.SimplePlaylist], error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", clampLimit(limit, 20, 50), max(offset, 0))

	var page models.Paging[models.SimplePlaylist]
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks retrieves a playlist's tracks, following pagination.
// Removed and local entries (null track) are dropped.
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}

	tracks := []models.Track{}
	limit, offset := 100, 0
	for range maxPlaylistPages {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

		var page models.Paging[models.PlaylistItem]
		if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if item.Track != nil && item.Track.ID != "" {
				tracks = append(tracks, *item.Track)
			}
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}
	return tracks, nil
}

// SearchTracks searches the catalogue for tracks.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(clampLimit(limit, 20, 50)))

	var response struct {
		Tracks models.Paging[models.Track] `json:"tracks"`
	}
	if _, err := c.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// AudioFeatures retrieves features for up to 100 tracks. Tracks without features are omitted.
func (c *SpotifyClient) AudioFeatures(ctx context.Context, trackIDs []string) ([]models.AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return []models.AudioFeatures{}, nil
	}
	if len(trackIDs) > 100 {
		trackIDs = trackIDs[:100]
	}

	var response struct {
		AudioFeatures []*models.AudioFeatures `json:"audio_features"`
	}
	endpoint := "/audio-features?ids=" + url.QueryEscape(strings.Join(trackIDs, ","))
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	features := make([]models.AudioFeatures, 0, len(response.AudioFeatures))
	for _, f := range response.AudioFeatures {
		if f != nil {
			features = append(features, *f)
		}
	}
	return features, nil
}

// CurrentlyPlaying returns nil when nothing is playing (204).
func (c *SpotifyClient) CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error) {
	var current models.CurrentlyPlaying
	status, err := c.doRequest(ctx, http.MethodGet, "/me/player/currently-playing", nil, &current)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &current, nil
}

// Devices lists the user's Connect devices.
func (c *SpotifyClient) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []models.Device `json:"devices"`
	}
	if _, err := c.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}
	if response.Devices == nil {
		return []models.Device{}, nil
	}
	return response.Devices, nil
}

func withDevice(endpoint, deviceID string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if deviceID != "" {
		params.Set("device_id", deviceID)
	}
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// Play starts or resumes playback.
func (c *SpotifyClient) Play(ctx context.Context, req models.PlayRequest) error {
	body := struct {
		URIs       []string `json:"uris,omitempty"`
		ContextURI string   `json:"context_uri,omitempty"`
		PositionMS *int     `json:"position_ms,omitempty"`
	}{req.URIs, req.ContextURI, req.PositionMS}

	_, err := c.doRequest(ctx, http.MethodPut, withDevice("/me/player/play", req.DeviceID, nil), body, nil)
	return err
}

// Pause pauses playback.
func (c *SpotifyClient) Pause(ctx context.Context, deviceID string) error {
	_, err := c.doRequest(ctx, http.MethodPut, withDevice("/me/player/pause", deviceID, nil), nil, nil)
	return err
}

// Next skips to the next track.
func (c *SpotifyClient) Next(ctx context.Context, deviceID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, withDevice("/me/player/next", deviceID, nil), nil, nil)
	return err
}

// Previous skips to the previous track.
func (c *SpotifyClient) Previous(ctx context.Context, deviceID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, withDevice("/me/player/previous", deviceID, nil), nil, nil)
	return err
}

// Seek moves the playhead to positionMS.
func (c *SpotifyClient) Seek(ctx context.Context, positionMS int, deviceID string) error {
	params := url.Values{"position_ms": {fmt.Sprint(positionMS)}}
	_, err := c.doRequest(ctx, http.MethodPut, withDevice("/me/player/seek", deviceID, params), nil, nil)
	return err
}

// SetVolume sets the volume (0..100).
func (c *SpotifyClient) SetVolume(ctx context.Context, percent int, deviceID string) error {
	params := url.Values{"volume_percent": {fmt.Sprint(percent)}}
	_, err := c.doRequest(ctx, http.MethodPut, withDevice("/me/player/volume", deviceID, params), nil, nil)
	return err
}

// Transfer moves playback to deviceID, optionally starting it.
func (c *SpotifyClient) Transfer(ctx context.Context, deviceID string, play bool) error {
	body := struct {
		DeviceIDs []string `json:"device_ids"`
		Play      bool     `json:"play"`
	}{[]string{deviceID}, play}

	_, err := c.doRequest(ctx, http.MethodPut, "/me/player", body, nil)
	return err
}
