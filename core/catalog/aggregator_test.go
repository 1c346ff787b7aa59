package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wavefm/core/catalog"
	"wavefm/model"
)

// stubSource returns a fixed list or a fixed error.
type stubSource struct {
	name  string
	songs []*model.Song
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, genre string, limit int) ([]*model.Song, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.songs, nil
}

// stubSongRepo serves a fixed list of uploaded songs.
type stubSongRepo struct {
	songs []*model.Song
	err   error
}

func (r *stubSongRepo) CreateSong(song *model.Song) error { return nil }

func (r *stubSongRepo) GetSongByID(id string) (*model.Song, error) {
	for _, song := range r.songs {
		if song.ID == id {
			return song, nil
		}
	}
	return nil, nil
}

func (r *stubSongRepo) ListSongs() ([]*model.Song, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.songs, nil
}

func (r *stubSongRepo) ListSongsByUser(userID int64) ([]*model.Song, error) { return r.songs, nil }

func (r *stubSongRepo) UpdateCoverArt(id, coverArt string) error { return nil }

func (r *stubSongRepo) IncrementPlays(id string) error { return nil }

func song(id, title, artist, genre, mood string, plays int64) *model.Song {
	return &model.Song{
		ID:     id,
		Title:  title,
		Artist: artist,
		Genre:  genre,
		Mood:   mood,
		Plays:  plays,
		Source: model.SourceJamendo,
	}
}

func newAggregator(sources []catalog.Source, repo *stubSongRepo) *catalog.Aggregator {
	samples := catalog.NewSampleCatalog("")
	return catalog.NewAggregator(sources, samples, repo, time.Second, time.Minute)
}

func TestListSongsFiltersAreANDed(t *testing.T) {
	source := &stubSource{name: "jamendo", songs: []*model.Song{
		song("jamendo_1", "Love Story", "Ann", "Pop", "romantic", 10),
		song("jamendo_2", "Lovely Day", "Ben", "Rock", "happy", 20),
		song("jamendo_3", "Nothing Here", "Cal", "Pop", "sad", 30),
	}}
	agg := newAggregator([]catalog.Source{source}, &stubSongRepo{})

	result, err := agg.ListSongs(context.Background(), catalog.Filter{
		Search: "love",
		Genre:  "Pop",
	})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}

	if result.Total != 1 {
		t.Fatalf("expected 1 match, got %d", result.Total)
	}
	if result.Songs[0].ID != "jamendo_1" {
		t.Fatalf("expected jamendo_1, got %s", result.Songs[0].ID)
	}
}

func TestListSongsPagination(t *testing.T) {
	songs := make([]*model.Song, 25)
	for i := range songs {
		songs[i] = song(fmt.Sprintf("jamendo_%d", i+1), fmt.Sprintf("Track %02d", i+1), "Artist", "Pop", "happy", int64(i))
	}
	source := &stubSource{name: "jamendo", songs: songs}
	agg := newAggregator([]catalog.Source{source}, &stubSongRepo{})

	result, err := agg.ListSongs(context.Background(), catalog.Filter{
		SortBy: "title",
		Order:  "asc",
		Page:   2,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}

	if result.Total != 25 {
		t.Fatalf("expected total 25, got %d", result.Total)
	}
	if result.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", result.TotalPages)
	}
	if result.CurrentPage != 2 {
		t.Fatalf("expected current page 2, got %d", result.CurrentPage)
	}
	if len(result.Songs) != 10 {
		t.Fatalf("expected 10 songs on page 2, got %d", len(result.Songs))
	}
	if result.Songs[0].Title != "Track 11" || result.Songs[9].Title != "Track 20" {
		t.Fatalf("expected tracks 11-20, got %s..%s", result.Songs[0].Title, result.Songs[9].Title)
	}
}

func TestListSongsPageBeyondEnd(t *testing.T) {
	source := &stubSource{name: "jamendo", songs: []*model.Song{
		song("jamendo_1", "Only Track", "Ann", "Pop", "happy", 1),
	}}
	agg := newAggregator([]catalog.Source{source}, &stubSongRepo{})

	result, err := agg.ListSongs(context.Background(), catalog.Filter{Page: 5, Limit: 10})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(result.Songs) != 0 {
		t.Fatalf("expected empty page, got %d songs", len(result.Songs))
	}
	if result.Total != 1 {
		t.Fatalf("expected total 1, got %d", result.Total)
	}
}

func TestListSongsOneSourceFailingDegrades(t *testing.T) {
	good := &stubSource{name: "jamendo", songs: []*model.Song{
		song("jamendo_1", "Alive", "Ann", "Pop", "happy", 1),
	}}
	bad := &stubSource{name: "deezer", err: fmt.Errorf("upstream 500")}
	agg := newAggregator([]catalog.Source{good, bad}, &stubSongRepo{})

	result, err := agg.ListSongs(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected the surviving source's song only, got %d", result.Total)
	}
	if result.Songs[0].ID != "jamendo_1" {
		t.Fatalf("expected jamendo_1, got %s", result.Songs[0].ID)
	}
}

func TestListSongsAllSourcesFailingFallsBackToSamples(t *testing.T) {
	bad1 := &stubSource{name: "jamendo", err: fmt.Errorf("timeout")}
	bad2 := &stubSource{name: "deezer", err: fmt.Errorf("timeout")}
	agg := newAggregator([]catalog.Source{bad1, bad2}, &stubSongRepo{})

	result, err := agg.ListSongs(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if result.Total == 0 {
		t.Fatal("expected sample fallback songs, got none")
	}
	for _, s := range result.Songs {
		if s.Source != model.SourceSample {
			t.Fatalf("expected only sample songs, got source %q", s.Source)
		}
	}
}

func TestListSongsRepositoryFailureIsFatal(t *testing.T) {
	source := &stubSource{name: "jamendo", songs: nil}
	agg := newAggregator([]catalog.Source{source}, &stubSongRepo{err: fmt.Errorf("connection refused")})

	if _, err := agg.ListSongs(context.Background(), catalog.Filter{}); err == nil {
		t.Fatal("expected error when the songs table is unreachable")
	}
}

func TestListSongsSourceSelector(t *testing.T) {
	source := &stubSource{name: "jamendo", songs: []*model.Song{
		song("jamendo_1", "External", "Ann", "Pop", "happy", 1),
	}}
	repo := &stubSongRepo{songs: []*model.Song{
		{ID: "user_1", Title: "Mine", Artist: "Me", Genre: "Pop", Source: model.SourceUser},
	}}
	agg := newAggregator([]catalog.Source{source}, repo)

	result, err := agg.ListSongs(context.Background(), catalog.Filter{Source: catalog.SelectUser})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if result.Total != 1 || result.Songs[0].ID != "user_1" {
		t.Fatalf("expected only the uploaded song, got %+v", result.Songs)
	}
	if result.Sources[catalog.SelectAPI] != 0 {
		t.Fatalf("expected no external songs counted, got %d", result.Sources[catalog.SelectAPI])
	}
}

func TestRecommendationsSortedByPlays(t *testing.T) {
	source := &stubSource{name: "jamendo", songs: []*model.Song{
		song("jamendo_1", "Quiet", "Ann", "Pop", "calm", 5),
		song("jamendo_2", "Hit", "Ben", "Pop", "happy", 500),
		song("jamendo_3", "Middle", "Cal", "Pop", "happy", 50),
	}}
	agg := newAggregator([]catalog.Source{source}, &stubSongRepo{})

	songs, err := agg.Recommendations(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recommendations failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(songs))
	}
	if songs[0].ID != "jamendo_2" || songs[1].ID != "jamendo_3" {
		t.Fatalf("expected most-played first, got %s then %s", songs[0].ID, songs[1].ID)
	}
}

func TestResolveSong(t *testing.T) {
	repo := &stubSongRepo{songs: []*model.Song{
		{ID: "user_abc", Title: "Mine", Source: model.SourceUser},
	}}
	agg := newAggregator(nil, repo)

	t.Run("uploaded song comes from the repository", func(t *testing.T) {
		found, err := agg.ResolveSong(context.Background(), "user_abc")
		if err != nil {
			t.Fatalf("ResolveSong failed: %v", err)
		}
		if found == nil || found.Title != "Mine" {
			t.Fatalf("expected the uploaded song, got %+v", found)
		}
	})

	t.Run("sample song comes from the fallback list", func(t *testing.T) {
		found, err := agg.ResolveSong(context.Background(), "sample_1")
		if err != nil {
			t.Fatalf("ResolveSong failed: %v", err)
		}
		if found == nil || found.Source != model.SourceSample {
			t.Fatalf("expected a sample song, got %+v", found)
		}
	})

	t.Run("unknown ID resolves to nil", func(t *testing.T) {
		found, err := agg.ResolveSong(context.Background(), "jamendo_999")
		if err != nil {
			t.Fatalf("ResolveSong failed: %v", err)
		}
		if found != nil {
			t.Fatalf("expected nil, got %+v", found)
		}
	})
}
