package models

// GenreCount is one slice of the genre breakdown.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// AudioProfile is the mean of each audio feature, scaled to 0..100.
type AudioProfile struct {
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
	Acousticness float64 `json:"acousticness"`
	Speechiness  float64 `json:"speechiness"`
}

// Analytics summarises a user's listening.
type Analytics struct {
	TotalListeningTime int          `json:"totalListeningTime"` // milliseconds
	TotalTracks        int          `json:"totalTracks"`
	TotalArtists       int          `json:"totalArtists"`
	AvgPopularity      int          `json:"avgPopularity"`
	ListeningByHour    [24]int      `json:"listeningByHour"` // UTC
	TopGenres          []GenreCount `json:"topGenres"`
	AudioFeatures      AudioProfile `json:"audioFeatures"`
}
