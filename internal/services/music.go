package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/shared"
)

const (
	lyricsName = "lyrics"
	lastFMName = "lastfm"

	lastFMNotFound = 6
)

// MusicService looks up lyrics (lyrics.ovh) and similarity data (Last.fm).
// Neither source needs the user's Spotify token.
type MusicService struct {
	lyricsURL  string
	lastFMURL  string
	lastFMKey  string
	httpClient *http.Client
}

// NewMusicService creates a [MusicService]. An empty lastFMKey disables the Last.fm lookups.
func NewMusicService(lyricsURL, lastFMURL, lastFMKey string, httpClient *http.Client) *MusicService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MusicService{
		lyricsURL:  strings.TrimRight(lyricsURL, "/"),
		lastFMURL:  lastFMURL,
		lastFMKey:  lastFMKey,
		httpClient: httpClient,
	}
}

// Lyrics looks up lyrics. A miss is not an error: Lyrics comes back empty.
func (m *MusicService) Lyrics(ctx context.Context, artist, song string) (*models.Lyrics, error) {
	artist, song = strings.TrimSpace(artist), strings.TrimSpace(song)
	if artist == "" || song == "" {
		return nil, fmt.Errorf("%w: artist and song are required", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", m.lyricsURL, url.PathEscape(artist), url.PathEscape(song))
	status, data, err := do(ctx, m.httpClient, request{service: lyricsName, method: http.MethodGet, url: endpoint})
	if err != nil {
		return nil, err
	}

	result := &models.Lyrics{Artist: artist, Song: song}
	switch {
	case status == http.StatusNotFound:
		return result, nil
	case status < 200 || status >= 300:
		return nil, &APIError{Service: lyricsName, StatusCode: http.StatusBadGateway, Message: "Lyrics service unavailable"}
	}

	var body struct {
		Lyrics string `json:"lyrics"`
	}
	if err := decode(lyricsName, data, &body); err != nil {
		return nil, err
	}
	result.Lyrics = strings.TrimSpace(strings.ReplaceAll(body.Lyrics, "\r\n", "\n"))
	return result, nil
}

// lastFMNumber accepts Last.fm numbers, which arrive as either JSON numbers or strings.
type lastFMNumber float64

func (n *lastFMNumber) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = lastFMNumber(f)
	return nil
}

type lastFMRef struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

// call performs a Last.fm method call and decodes into result.
func (m *MusicService) call(ctx context.Context, method string, params url.Values, result any) error {
	if m.lastFMKey == "" {
		return fmt.Errorf("%w: Last.fm API key is not configured", shared.ErrServiceUnavailable)
	}

	params.Set("method", method)
	params.Set("api_key", m.lastFMKey)
	params.Set("format", "json")

	status, data, err := do(ctx, m.httpClient, request{
		service: lastFMName,
		method:  http.MethodGet,
		url:     m.lastFMURL + "?" + params.Encode(),
	})
	if err != nil {
		return err
	}

	// Last.fm reports most failures in the body, sometimes with a 200.
	var envelope struct {
		Error   int    `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &envelope)
	if envelope.Error != 0 {
		code := http.StatusBadGateway
		if envelope.Error == lastFMNotFound {
			code = http.StatusNotFound
		}
		return &APIError{Service: lastFMName, StatusCode: code, Message: envelope.Message}
	}
	if status < 200 || status >= 300 {
		return &APIError{Service: lastFMName, StatusCode: http.StatusBadGateway, Message: http.StatusText(status)}
	}
	return decode(lastFMName, data, result)
}

// SimilarTracks returns tracks Last.fm considers similar, best match first.
func (m *MusicService) SimilarTracks(ctx context.Context, artist, track string, limit int) ([]models.SimilarTrack, error) {
	artist, track = strings.TrimSpace(artist), strings.TrimSpace(track)
	if artist == "" || track == "" {
		return nil, fmt.Errorf("%w: artist and track are required", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("artist", artist)
	params.Set("track", track)
	params.Set("autocorrect", "1")
	params.Set("limit", strconv.Itoa(clampLimit(limit, 10, 50)))

	var response struct {
		SimilarTracks struct {
			Track []struct {
				Name   string       `json:"name"`
				Match  lastFMNumber `json:"match"`
				URL    string       `json:"url"`
				Artist lastFMRef    `json:"artist"`
			} `json:"track"`
		} `json:"similartracks"`
	}
	if err := m.call(ctx, "track.getsimilar", params, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.SimilarTrack, 0, len(response.SimilarTracks.Track))
	for _, t := range response.SimilarTracks.Track {
		tracks = append(tracks, models.SimilarTrack{
			Name:   t.Name,
			Artist: models.SimilarArtist{Name: t.Artist.Name, MBID: t.Artist.MBID, URL: t.Artist.URL},
			Match:  float64(t.Match),
			URL:    t.URL,
		})
	}
	return tracks, nil
}

// ArtistInfo returns Last.fm's artist summary.
func (m *MusicService) ArtistInfo(ctx context.Context, name string) (*models.ArtistInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("artist", name)
	params.Set("autocorrect", "1")

	var response struct {
		Artist struct {
			Name  string `json:"name"`
			URL   string `json:"url"`
			Stats struct {
				Listeners lastFMNumber `json:"listeners"`
				Playcount lastFMNumber `json:"playcount"`
			} `json:"stats"`
			Similar struct {
				Artist []lastFMRef `json:"artist"`
			} `json:"similar"`
			Tags struct {
				Tag []lastFMRef `json:"tag"`
			} `json:"tags"`
			Bio struct {
				Summary string `json:"summary"`
			} `json:"bio"`
		} `json:"artist"`
	}
	if err := m.call(ctx, "artist.getinfo", params, &response); err != nil {
		return nil, err
	}

	a := response.Artist
	info := &models.ArtistInfo{
		Name:      a.Name,
		URL:       a.URL,
		Listeners: int(a.Stats.Listeners),
		Playcount: int(a.Stats.Playcount),
		Tags:      make([]string, 0, len(a.Tags.Tag)),
		Similar:   make([]string, 0, len(a.Similar.Artist)),
		Summary:   stripLastFMLink(a.Bio.Summary),
	}
	for _, tag := range a.Tags.Tag {
		info.Tags = append(info.Tags, tag.Name)
	}
	for _, s := range a.Similar.Artist {
		info.Similar = append(info.Similar, s.Name)
	}
	return info, nil
}

// stripLastFMLink drops the trailing "<a href=...>Read more on Last.fm</a>" from bios.
func stripLastFMLink(s string) string {
	if i := strings.Index(s, "<a href"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
