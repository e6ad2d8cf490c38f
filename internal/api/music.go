package api

import (
	"net/http"

	"github.com/desertthunder/sonar/internal/server"
)

// Lyrics looks up ?artist=&song=. A miss is 200 with empty lyrics.
func (h *Handler) Lyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lyrics, err := h.music.Lyrics(r.Context(), q.Get("artist"), q.Get("song"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, lyrics)
}

// SimilarTracks looks up ?artist=&track= on Last.fm.
func (h *Handler) SimilarTracks(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	tracks, err := h.music.SimilarTracks(r.Context(), q.Get("artist"), q.Get("track"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(tracks))
}

// ArtistInfo looks up ?name= on Last.fm.
func (h *Handler) ArtistInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.music.ArtistInfo(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, info)
}
