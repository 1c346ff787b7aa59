package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wavefm/model"
)

func TestJamendoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("client_id"); got != "test-client" {
			t.Errorf("expected client_id test-client, got %q", got)
		}
		if got := r.URL.Query().Get("tags"); got != "rock" {
			t.Errorf("expected tags rock, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"id": 12345,
					"name": "Road Home",
					"artist_name": "The Wanderers",
					"album_name": "Miles",
					"album_image": "https://cdn.example/cover.jpg",
					"audio": "https://cdn.example/road-home.mp3",
					"duration": 241,
					"releasedate": "2019-06-14",
					"popularity_total": 8321,
					"musicinfo": {"tags": {"genres": ["rock"], "vartags": ["happy"]}}
				}
			]
		}`))
	}))
	defer srv.Close()

	source := NewJamendoSource(srv.URL, "test-client", time.Second)
	songs, err := source.Fetch(context.Background(), "rock", 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(songs))
	}

	song := songs[0]
	if song.ID != "jamendo_12345" {
		t.Errorf("expected ID jamendo_12345, got %s", song.ID)
	}
	if song.Source != model.SourceJamendo {
		t.Errorf("expected jamendo source, got %s", song.Source)
	}
	if song.Genre != "rock" {
		t.Errorf("expected genre rock, got %s", song.Genre)
	}
	if song.Mood != "happy" {
		t.Errorf("expected mood happy from vartags, got %s", song.Mood)
	}
	if song.ReleaseYear != 2019 {
		t.Errorf("expected release year 2019, got %d", song.ReleaseYear)
	}
	if song.Plays != 8321 {
		t.Errorf("expected plays 8321, got %d", song.Plays)
	}
}

func TestJamendoFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	source := NewJamendoSource(srv.URL, "test-client", time.Second)
	if _, err := source.Fetch(context.Background(), "", 10); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestDeezerFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != `genre:"jazz"` {
			t.Errorf("expected genre query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{
					"id": 777,
					"title": "Blue Rooms",
					"duration": 198,
					"preview": "https://cdn.example/preview.mp3",
					"rank": 51234,
					"artist": {"name": "Nora Velt"},
					"album": {"title": "Late Sets", "cover_medium": "https://cdn.example/late.jpg"}
				}
			]
		}`))
	}))
	defer srv.Close()

	source := NewDeezerSource(srv.URL, time.Second)
	songs, err := source.Fetch(context.Background(), "jazz", 5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(songs))
	}

	song := songs[0]
	if song.ID != "deezer_777" {
		t.Errorf("expected ID deezer_777, got %s", song.ID)
	}
	if song.Artist != "Nora Velt" {
		t.Errorf("expected artist from nested object, got %s", song.Artist)
	}
	if song.Genre != "jazz" {
		t.Errorf("expected requested genre carried through, got %s", song.Genre)
	}
	if song.FileURL != "https://cdn.example/preview.mp3" {
		t.Errorf("expected preview URL, got %s", song.FileURL)
	}
}

func TestDeezerFetchDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": 1, "title": "Untitled", "duration": 100, "artist": {"name": "A"}, "album": {}}]}`))
	}))
	defer srv.Close()

	source := NewDeezerSource(srv.URL, time.Second)
	songs, err := source.Fetch(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	song := songs[0]
	if song.Album != "Single" {
		t.Errorf("expected album default Single, got %s", song.Album)
	}
	if song.CoverArt != "/uploads/default-cover.jpg" {
		t.Errorf("expected default cover, got %s", song.CoverArt)
	}
	if song.Genre != "Various" {
		t.Errorf("expected genre Various, got %s", song.Genre)
	}
}
