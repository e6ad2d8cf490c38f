package api

import (
	"net/http"
	"strings"

	"github.com/desertthunder/sonar/internal/analytics"
	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/server"
)

const recommendationSeeds = 5

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.client(r).UserProfile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, user)
}

// TopTracks returns the caller's top tracks for ?time_range=.
func (h *Handler) TopTracks(w http.ResponseWriter, r *http.Request) {
	timeRange, err := models.ParseTimeRange(r.URL.Query().Get("time_range"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tracks, err := h.client(r).TopTracks(r.Context(), timeRange, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(tracks))
}

// TopArtists returns the caller's top artists for ?time_range=.
func (h *Handler) TopArtists(w http.ResponseWriter, r *http.Request) {
	timeRange, err := models.ParseTimeRange(r.URL.Query().Get("time_range"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	artists, err := h.client(r).TopArtists(r.Context(), timeRange, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(artists))
}

// RecentlyPlayed returns the caller's latest plays.
func (h *Handler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	plays, err := h.client(r).RecentlyPlayed(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(plays))
}

// Recommendations seeds from the caller's five top tracks.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	spotify := h.client(r)

	top, err := spotify.TopTracks(r.Context(), models.MediumTerm, recommendationSeeds)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	seeds := make([]string, 0, len(top))
	for _, t := range top {
		if t.ID != "" {
			seeds = append(seeds, t.ID)
		}
	}

	tracks, err := spotify.Recommendations(r.Context(), seeds, 20)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(tracks))
}

// Playlists returns one page of the caller's playlists as an array.
func (h *Handler) Playlists(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.client(r).UserPlaylists(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(page.Items))
}

// PlaylistTracks returns every track of playlist {id}.
func (h *Handler) PlaylistTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.client(r).PlaylistTracks(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(tracks))
}

// Search finds tracks matching ?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tracks, err := h.client(r).SearchTracks(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(tracks))
}

// Analytics summarises the caller's listening.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	timeRange, err := models.ParseTimeRange(r.URL.Query().Get("time_range"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := analytics.Compute(r.Context(), h.client(r), timeRange, h.logger)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, summary)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
