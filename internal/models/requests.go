package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/sonar/internal/shared"
)

// TimeRange is the affinity window for top tracks and artists.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// ParseTimeRange defaults an empty value to [MediumTerm].
func ParseTimeRange(s string) (TimeRange, error) {
	switch tr := TimeRange(s); tr {
	case "":
		return MediumTerm, nil
	case ShortTerm, MediumTerm, LongTerm:
		return tr, nil
	}
	return "", fmt.Errorf("%w: time_range must be short_term, medium_term or long_term", shared.ErrInvalidInput)
}

// PlayRequest starts or resumes playback.
type PlayRequest struct {
	URIs       []string `json:"uris,omitempty"`
	ContextURI string   `json:"context_uri,omitempty"`
	DeviceID   string   `json:"device_id,omitempty"`
	PositionMS *int     `json:"position_ms,omitempty"`
}

func (p *PlayRequest) Validate() error {
	for _, uri := range p.URIs {
		if !strings.HasPrefix(uri, "spotify:") {
			return fmt.Errorf("%w: %q is not a spotify uri", shared.ErrInvalidInput, uri)
		}
	}
	if p.PositionMS != nil && *p.PositionMS < 0 {
		return fmt.Errorf("%w: position_ms must not be negative", shared.ErrInvalidInput)
	}
	return nil
}

// SeekRequest moves the playhead.
type SeekRequest struct {
	PositionMS *int   `json:"position_ms"`
	DeviceID   string `json:"device_id,omitempty"`
}

func (s *SeekRequest) Validate() error {
	if s.PositionMS == nil {
		return fmt.Errorf("%w: position_ms is required", shared.ErrInvalidInput)
	}
	if *s.PositionMS < 0 {
		return fmt.Errorf("%w: position_ms must not be negative", shared.ErrInvalidInput)
	}
	return nil
}

// VolumeRequest sets the device volume.
type VolumeRequest struct {
	VolumePercent *int   `json:"volume_percent"`
	DeviceID      string `json:"device_id,omitempty"`
}

func (v *VolumeRequest) Validate() error {
	if v.VolumePercent == nil {
		return fmt.Errorf("%w: volume_percent is required", shared.ErrInvalidInput)
	}
	if *v.VolumePercent < 0 || *v.VolumePercent > 100 {
		return fmt.Errorf("%w: volume_percent must be between 0 and 100", shared.ErrInvalidInput)
	}
	return nil
}

// TransferRequest moves playback to another device.
type TransferRequest struct {
	DeviceID string `json:"device_id"`
	Play     *bool  `json:"play,omitempty"`
}

func (t *TransferRequest) Validate() error {
	if strings.TrimSpace(t.DeviceID) == "" {
		return fmt.Errorf("%w: device_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// DeviceRequest carries the optional target device for pause/next/previous.
type DeviceRequest struct {
	DeviceID string `json:"device_id,omitempty"`
}

func (d *DeviceRequest) Validate() error { return nil }
