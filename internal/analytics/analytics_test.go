package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/sonar/internal/models"
)

type fakeSource struct {
	tracks      []models.Track
	artists     []models.Artist
	recent      []models.PlayHistory
	features    []models.AudioFeatures
	tracksErr   error
	featuresErr error
	featureIDs  []string
}

func (f *fakeSource) TopTracks(context.Context, models.TimeRange, int) ([]models.Track, error) {
	return f.tracks, f.tracksErr
}

func (f *fakeSource) TopArtists(context.Context, models.TimeRange, int) ([]models.Artist, error) {
	return f.artists, nil
}

func (f *fakeSource) RecentlyPlayed(context.Context, int) ([]models.PlayHistory, error) {
	return f.recent, nil
}

func (f *fakeSource) AudioFeatures(_ context.Context, ids []string) ([]models.AudioFeatures, error) {
	f.featureIDs = ids
	return f.features, f.featuresErr
}

func artist(id string, genres ...string) models.Artist {
	return models.Artist{ID: id, Name: id, Genres: genres}
}

func TestSummarize(t *testing.T) {
	in := Input{
		TopTracks: []models.Track{
			{ID: "t1", Popularity: 60, Artists: []models.Artist{artist("a1")}},
			{ID: "t2", Popularity: 71, Artists: []models.Artist{artist("a2")}},
		},
		TopArtists: []models.Artist{
			artist("a1", "house", "disco"),
			artist("a3", "house", "ambient"),
		},
		Recent: []models.PlayHistory{
			{Track: models.Track{ID: "t1", DurationMS: 200000}, PlayedAt: "2024-05-01T09:15:00Z"},
			{Track: models.Track{ID: "t3", DurationMS: 100000, Artists: []models.Artist{artist("a4")}}, PlayedAt: "2024-05-01T11:30:00+02:00"},
			{Track: models.Track{ID: "t4", DurationMS: 50000}, PlayedAt: "not a time"},
		},
		Features: []models.AudioFeatures{
			{Energy: 0.5, Danceability: 0.2, Valence: 1},
			{Energy: 0.7, Danceability: 0.4, Speechiness: 0.1},
		},
	}

	a := Summarize(in)

	t.Run("Listening Time", func(t *testing.T) {
		if a.TotalListeningTime != 350000 {
			t.Errorf("expected 350000ms, got %d", a.TotalListeningTime)
		}
	})

	t.Run("Distinct Counts", func(t *testing.T) {
		if a.TotalTracks != 4 {
			t.Errorf("expected 4 distinct tracks, got %d", a.TotalTracks)
		}
		if a.TotalArtists != 4 {
			t.Errorf("expected 4 distinct artists, got %d", a.TotalArtists)
		}
	})

	t.Run("Average Popularity Rounds", func(t *testing.T) {
		if a.AvgPopularity != 66 {
			t.Errorf("expected 66, got %d", a.AvgPopularity)
		}
	})

	t.Run("Hour Buckets In UTC", func(t *testing.T) {
		if a.ListeningByHour[9] != 2 {
			t.Errorf("expected two plays at 09 UTC, got %d", a.ListeningByHour[9])
		}
		total := 0
		for _, c := range a.ListeningByHour {
			total += c
		}
		if total != 2 {
			t.Errorf("unparseable timestamps should be skipped, got %d plays", total)
		}
	})

	t.Run("Genres", func(t *testing.T) {
		want := []models.GenreCount{{"house", 2}, {"ambient", 1}, {"disco", 1}}
		if len(a.TopGenres) != len(want) {
			t.Fatalf("expected %d genres, got %+v", len(want), a.TopGenres)
		}
		for i := range want {
			if a.TopGenres[i] != want[i] {
				t.Errorf("genre %d: expected %+v, got %+v", i, want[i], a.TopGenres[i])
			}
		}
	})

	t.Run("Audio Profile", func(t *testing.T) {
		p := a.AudioFeatures
		if p.Energy != 60 || p.Danceability != 30 || p.Valence != 50 || p.Speechiness != 5 || p.Acousticness != 0 {
			t.Errorf("unexpected profile %+v", p)
		}
	})
}

func TestTopGenresLimit(t *testing.T) {
	var artists []models.Artist
	for _, g := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		artists = append(artists, artist(g, g))
	}
	artists = append(artists, artist("x", "l"))

	genres := topGenres(artists)
	if len(genres) != maxGenres {
		t.Fatalf("expected %d genres, got %d", maxGenres, len(genres))
	}
	if genres[0].Genre != "l" || genres[0].Count != 2 {
		t.Errorf("expected most common genre first, got %+v", genres[0])
	}
	if genres[1].Genre != "a" {
		t.Errorf("expected ties ordered by name, got %+v", genres[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	a := Summarize(Input{})
	if a.TotalTracks != 0 || a.AvgPopularity != 0 || len(a.TopGenres) != 0 {
		t.Errorf("expected zero summary, got %+v", a)
	}
	if a.TopGenres == nil {
		t.Error("expected empty genre slice so it encodes as []")
	}
}

func TestCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("Requests Features For Top Tracks", func(t *testing.T) {
		src := &fakeSource{
			tracks:   []models.Track{{ID: "t1", Popularity: 40}, {ID: "t2", Popularity: 60}},
			features: []models.AudioFeatures{{Energy: 1}},
		}

		a, err := Compute(ctx, src, models.MediumTerm, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(src.featureIDs) != 2 {
			t.Errorf("expected features for 2 tracks, got %v", src.featureIDs)
		}
		if a.AvgPopularity != 50 || a.AudioFeatures.Energy != 100 {
			t.Errorf("unexpected summary %+v", a)
		}
	})

	t.Run("Feature Failure Is Tolerated", func(t *testing.T) {
		src := &fakeSource{
			tracks:      []models.Track{{ID: "t1"}},
			featuresErr: errors.New("forbidden"),
		}

		a, err := Compute(ctx, src, models.MediumTerm, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.AudioFeatures != (models.AudioProfile{}) {
			t.Errorf("expected zero profile, got %+v", a.AudioFeatures)
		}
	})

	t.Run("Fetch Failure Fails", func(t *testing.T) {
		boom := errors.New("boom")
		src := &fakeSource{tracksErr: boom}

		if _, err := Compute(ctx, src, models.MediumTerm, nil); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}
