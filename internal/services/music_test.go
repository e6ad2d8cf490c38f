package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sonar/internal/shared"
)

func TestLyrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.EscapedPath()
			_, _ = io.WriteString(w, `{"lyrics":"line one\r\nline two\n"}`)
		}))
		defer srv.Close()

		m := NewMusicService(srv.URL+"/v1/", "", "", srv.Client())
		got, err := m.Lyrics(ctx, "Daft Punk", "One More Time")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "/v1/Daft%20Punk/One%20More%20Time" {
			t.Errorf("unexpected path %s", path)
		}
		if got.Lyrics != "line one\nline two" {
			t.Errorf("unexpected lyrics %q", got.Lyrics)
		}
	})

	t.Run("Not Found Is Empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"No lyrics found"}`)
		}))
		defer srv.Close()

		got, err := NewMusicService(srv.URL, "", "", srv.Client()).Lyrics(ctx, "a", "b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Lyrics != "" || got.Artist != "a" {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewMusicService(srv.URL, "", "", srv.Client()).Lyrics(ctx, "a", "b")
		if apiErr, ok := AsAPIError(err); !ok || apiErr.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502 APIError, got %v", err)
		}
	})

	t.Run("Missing Input", func(t *testing.T) {
		_, err := NewMusicService("", "", "", nil).Lyrics(ctx, "", "b")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestLastFM(t *testing.T) {
	ctx := context.Background()

	t.Run("Similar Tracks", func(t *testing.T) {
		var method, key string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, key = r.URL.Query().Get("method"), r.URL.Query().Get("api_key")
			_, _ = io.WriteString(w, `{"similartracks":{"track":[
				{"name":"Digital Love","match":1,"url":"u1","artist":{"name":"Daft Punk"}},
				{"name":"Music Sounds Better","match":"0.42","artist":{"name":"Stardust"}}
			]}}`)
		}))
		defer srv.Close()

		m := NewMusicService("", srv.URL, "key", srv.Client())
		tracks, err := m.SimilarTracks(ctx, "Daft Punk", "One More Time", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if method != "track.getsimilar" || key != "key" {
			t.Errorf("unexpected call method=%s key=%s", method, key)
		}
		if len(tracks) != 2 || tracks[0].Match != 1 || tracks[1].Match != 0.42 || tracks[1].Artist.Name != "Stardust" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("Error In Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"error":6,"message":"Track not found"}`)
		}))
		defer srv.Close()

		_, err := NewMusicService("", srv.URL, "key", srv.Client()).SimilarTracks(ctx, "x", "y", 5)
		apiErr, ok := AsAPIError(err)
		if !ok || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Track not found" {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("Artist Info", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"artist":{"name":"Daft Punk","stats":{"listeners":"4000000","playcount":"300"},
				"similar":{"artist":[{"name":"Justice"}]},"tags":{"tag":[{"name":"electronic"},{"name":"house"}]},
				"bio":{"summary":"French duo. <a href=\"https://last.fm\">Read more on Last.fm</a>"}}}`)
		}))
		defer srv.Close()

		info, err := NewMusicService("", srv.URL, "key", srv.Client()).ArtistInfo(ctx, "Daft Punk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Listeners != 4000000 || info.Playcount != 300 {
			t.Errorf("unexpected stats %+v", info)
		}
		if len(info.Tags) != 2 || info.Similar[0] != "Justice" {
			t.Errorf("unexpected tags/similar %+v", info)
		}
		if info.Summary != "French duo." {
			t.Errorf("unexpected summary %q", info.Summary)
		}
	})

	t.Run("Not Configured", func(t *testing.T) {
		_, err := NewMusicService("", "http://127.0.0.1:0", "", nil).ArtistInfo(ctx, "x")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
