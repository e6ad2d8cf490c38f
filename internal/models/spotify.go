package models

// Image is an artwork or avatar rendition.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Followers carries only the follower total.
type Followers struct {
	Total int `json:"total"`
}

// ExternalURLs links to the Spotify web client.
type ExternalURLs struct {
	Spotify string `json:"spotify,omitempty"`
}

// User is the current user's profile.
type User struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Email        string       `json:"email"`
	Country      string       `json:"country"`
	Product      string       `json:"product"` // premium, free, etc.
	Followers    Followers    `json:"followers"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist is a full or simplified artist object.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres,omitempty"`
	Popularity   int          `json:"popularity,omitempty"`
	Followers    *Followers   `json:"followers,omitempty"`
	Images       []Image      `json:"images,omitempty"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Album is a simplified album object.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track is a full track object.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	Popularity   int          `json:"popularity"`
	PreviewURL   *string      `json:"preview_url"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Owner is a playlist owner.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TrackCount is the tracks reference on a simplified playlist.
type TrackCount struct {
	Total int `json:"total"`
}

// SimplePlaylist is a playlist as listed in /me/playlists.
type SimplePlaylist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       Owner      `json:"owner"`
	Public      bool       `json:"public"`
	Tracks      TrackCount `json:"tracks"`
	Images      []Image    `json:"images"`
	URI         string     `json:"uri"`
}

// PlaylistItem is one entry of a playlist. Track is nil for removed or local items.
type PlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// PlayHistory is one recently played entry.
type PlayHistory struct {
	Track    Track  `json:"track"`
	PlayedAt string `json:"played_at"` // RFC 3339
}

// Paging is the Spotify paging envelope.
type Paging[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Device is a Spotify Connect device.
type Device struct {
	ID               string `json:"id"`
	IsActive         bool   `json:"is_active"`
	IsRestricted     bool   `json:"is_restricted"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	VolumePercent    *int   `json:"volume_percent"`
	SupportsVolume   bool   `json:"supports_volume"`
	IsPrivateSession bool   `json:"is_private_session"`
}

// CurrentlyPlaying is the user's playback state. The proxy returns null when nothing plays.
type CurrentlyPlaying struct {
	Device               *Device `json:"device,omitempty"`
	ProgressMS           int     `json:"progress_ms"`
	IsPlaying            bool    `json:"is_playing"`
	Item                 *Track  `json:"item"`
	CurrentlyPlayingType string  `json:"currently_playing_type"`
	ShuffleState         bool    `json:"shuffle_state"`
	RepeatState          string  `json:"repeat_state"`
}

// AudioFeatures holds the 0..1 descriptors for one track.
type AudioFeatures struct {
	ID           string  `json:"id"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
	Acousticness float64 `json:"acousticness"`
	Speechiness  float64 `json:"speechiness"`
	Tempo        float64 `json:"tempo"`
}
