// Package analytics aggregates a user's listening data into the dashboard summary.
package analytics

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/sonar/internal/models"
)

const (
	sampleSize = 50
	maxGenres  = 10
)

// Source is the subset of the Spotify client the aggregation reads from.
type Source interface {
	TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]models.AudioFeatures, error)
}

// Input is the raw data a summary is computed from.
type Input struct {
	TopTracks  []models.Track
	TopArtists []models.Artist
	Recent     []models.PlayHistory
	Features   []models.AudioFeatures
}

// Compute fetches top tracks, top artists and recent plays in parallel, then
// the top tracks' audio features, and summarises them. Any of the first three
// failing fails the whole call; a feature lookup failure only zeroes the
// audio profile.
func Compute(ctx context.Context, src Source, timeRange models.TimeRange, logger *log.Logger) (*models.Analytics, error) {
	var in Input

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tracks, err := src.TopTracks(gctx, timeRange, sampleSize)
		in.TopTracks = tracks
		return err
	})
	g.Go(func() error {
		artists, err := src.TopArtists(gctx, timeRange, sampleSize)
		in.TopArtists = artists
		return err
	})
	g.Go(func() error {
		recent, err := src.RecentlyPlayed(gctx, sampleSize)
		in.Recent = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(in.TopTracks))
	for _, t := range in.TopTracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) > 0 {
		features, err := src.AudioFeatures(ctx, ids)
		if err != nil {
			if logger != nil {
				logger.Warn("audio features unavailable", "error", err)
			}
		} else {
			in.Features = features
		}
	}

	summary := Summarize(in)
	return &summary, nil
}

// Summarize computes the dashboard figures from already fetched data.
func Summarize(in Input) models.Analytics {
	var a models.Analytics

	tracks := make(map[string]struct{})
	artists := make(map[string]struct{})
	addArtists := func(list []models.Artist) {
		for _, ar := range list {
			if key := cmp.Or(ar.ID, ar.Name); key != "" {
				artists[key] = struct{}{}
			}
		}
	}

	popularity := 0
	for _, t := range in.TopTracks {
		tracks[cmp.Or(t.ID, t.URI, t.Name)] = struct{}{}
		addArtists(t.Artists)
		popularity += t.Popularity
	}
	if n := len(in.TopTracks); n > 0 {
		a.AvgPopularity = int(math.Round(float64(popularity) / float64(n)))
	}

	for _, p := range in.Recent {
		a.TotalListeningTime += p.Track.DurationMS
		tracks[cmp.Or(p.Track.ID, p.Track.URI, p.Track.Name)] = struct{}{}
		addArtists(p.Track.Artists)

		if played, err := time.Parse(time.RFC3339, p.PlayedAt); err == nil {
			a.ListeningByHour[played.UTC().Hour()]++
		}
	}

	addArtists(in.TopArtists)
	delete(tracks, "")
	a.TotalTracks = len(tracks)
	a.TotalArtists = len(artists)
	a.TopGenres = topGenres(in.TopArtists)
	a.AudioFeatures = audioProfile(in.Features)
	return a
}

// topGenres counts genres across artists, highest first, ties by name.
func topGenres(artists []models.Artist) []models.GenreCount {
	counts := make(map[string]int)
	for _, ar := range artists {
		for _, g := range ar.Genres {
			counts[g]++
		}
	}

	genres := make([]models.GenreCount, 0, len(counts))
	for g, c := range counts {
		genres = append(genres, models.GenreCount{Genre: g, Count: c})
	}
	slices.SortFunc(genres, func(x, y models.GenreCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Genre, y.Genre)
	})
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	return genres
}

// audioProfile averages the features and scales them to percentages.
func audioProfile(features []models.AudioFeatures) models.AudioProfile {
	var p models.AudioProfile
	if len(features) == 0 {
		return p
	}

	for _, f := range features {
		p.Energy += f.Energy
		p.Danceability += f.Danceability
		p.Valence += f.Valence
		p.Acousticness += f.Acousticness
		p.Speechiness += f.Speechiness
	}

	scale := 100 / float64(len(features))
	p.Energy = round2(p.Energy * scale)
	p.Danceability = round2(p.Danceability * scale)
	p.Valence = round2(p.Valence * scale)
	p.Acousticness = round2(p.Acousticness * scale)
	p.Speechiness = round2(p.Speechiness * scale)
	return p
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
