package models

// Lyrics is the lyrics lookup result. Lyrics is empty when none were found.
type Lyrics struct {
	Artist string `json:"artist"`
	Song   string `json:"song"`
	Lyrics string `json:"lyrics"`
}

// SimilarArtist is the artist reference on a similar track.
type SimilarArtist struct {
	Name string `json:"name"`
	MBID string `json:"mbid,omitempty"`
	URL  string `json:"url,omitempty"`
}

// SimilarTrack is one Last.fm similarity match.
type SimilarTrack struct {
	Name   string        `json:"name"`
	Artist SimilarArtist `json:"artist"`
	Match  float64       `json:"match"` // 0..1
	URL    string        `json:"url,omitempty"`
}

// ArtistInfo is an artist biography and tags from Last.fm.
type ArtistInfo struct {
	Name      string   `json:"name"`
	URL       string   `json:"url,omitempty"`
	Listeners int      `json:"listeners"`
	Playcount int      `json:"playcount"`
	Tags      []string `json:"tags"`
	Similar   []string `json:"similar"`
	Summary   string   `json:"summary"`
}
