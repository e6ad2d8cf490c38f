package api

import (
	"net/http"

	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/server"
)

// Playback commands answer with this body on success.
type playbackResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) done(w http.ResponseWriter) {
	server.WriteJSON(w, http.StatusOK, playbackResponse{Success: true})
}

// CurrentlyPlaying returns the playback state, or null when nothing is playing.
func (h *Handler) CurrentlyPlaying(w http.ResponseWriter, r *http.Request) {
	current, err := h.client(r).CurrentlyPlaying(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, current)
}

// Devices lists the caller's Connect devices.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.client(r).Devices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, nonNil(devices))
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	var req models.PlayRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).Play(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).Pause(r.Context(), req.DeviceID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).Next(r.Context(), req.DeviceID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).Previous(r.Context(), req.DeviceID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	var req models.SeekRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).Seek(r.Context(), *req.PositionMS, req.DeviceID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

func (h *Handler) Volume(w http.ResponseWriter, r *http.Request) {
	var req models.VolumeRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.client(r).SetVolume(r.Context(), *req.VolumePercent, req.DeviceID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}

// Transfer moves playback to {device_id}. Playback starts unless play is false.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	play := true
	if req.Play != nil {
		play = *req.Play
	}
	if err := h.client(r).Transfer(r.Context(), req.DeviceID, play); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w)
}
