package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wavefm/cache"
	"wavefm/logger"
	"wavefm/model"
	"wavefm/repository"
)

// Source selector values for Filter.Source.
const (
	SelectAll  = "all"
	SelectAPI  = "api"
	SelectUser = "user"
)

// Filter describes one catalog listing request. All specified filters are
// AND-ed together.
type Filter struct {
	Search string
	Genre  string
	Mood   string
	Source string
	SortBy string
	Order  string
	Page   int
	Limit  int
}

func (f Filter) normalized() Filter {
	if f.Source == "" {
		f.Source = SelectAll
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.Order == "" {
		f.Order = "desc"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	return f
}

// Result is one page of aggregated songs plus pagination totals and
// per-source counts for attribution badges.
type Result struct {
	Songs       []*model.Song  `json:"songs"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Sources     map[string]int `json:"sources"`
}

// Aggregator merges songs from external catalog sources and user uploads
// into one filterable, paginated list.
type Aggregator struct {
	sources  []Source
	samples  *SampleCatalog
	songRepo repository.SongRepository
	timeout  time.Duration
	cacheTTL time.Duration
}

// NewAggregator wires the aggregator. timeout bounds each external fetch;
// cacheTTL controls how long external results are reused.
func NewAggregator(sources []Source, samples *SampleCatalog, songRepo repository.SongRepository, timeout, cacheTTL time.Duration) *Aggregator {
	return &Aggregator{
		sources:  sources,
		samples:  samples,
		songRepo: songRepo,
		timeout:  timeout,
		cacheTTL: cacheTTL,
	}
}

// ListSongs produces one page of songs matching the filter. External source
// failures degrade to empty lists; only a persistence failure is fatal.
func (a *Aggregator) ListSongs(ctx context.Context, filter Filter) (*Result, error) {
	filter = filter.normalized()

	var userSongs []*model.Song
	if filter.Source == SelectAll || filter.Source == SelectUser {
		songs, err := a.songRepo.ListSongs()
		if err != nil {
			return nil, fmt.Errorf("failed to list uploaded songs: %w", err)
		}
		userSongs = songs
	}

	var apiSongs []*model.Song
	if filter.Source == SelectAll || filter.Source == SelectAPI {
		apiSongs = a.fetchExternal(ctx, filter.Genre, filter.Limit)
	}

	all := make([]*model.Song, 0, len(apiSongs)+len(userSongs))
	all = append(all, apiSongs...)
	all = append(all, userSongs...)

	all = applyFilters(all, filter)
	sortSongs(all, filter.SortBy, filter.Order)

	total := len(all)
	totalPages := (total + filter.Limit - 1) / filter.Limit

	return &Result{
		Songs:       paginate(all, filter.Page, filter.Limit),
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
		Sources: map[string]int{
			SelectAPI:  len(apiSongs),
			SelectUser: len(userSongs),
		},
	}, nil
}

// Recommendations returns the most-played songs across all sources.
func (a *Aggregator) Recommendations(ctx context.Context, limit int) ([]*model.Song, error) {
	if limit < 1 {
		limit = 12
	}

	userSongs, err := a.songRepo.ListSongs()
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded songs: %w", err)
	}

	apiSongs := a.fetchExternal(ctx, "", 10)

	all := make([]*model.Song, 0, len(apiSongs)+len(userSongs))
	all = append(all, apiSongs...)
	all = append(all, userSongs...)
	if len(all) == 0 {
		all = a.samples.Songs()
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Plays > all[j].Plays
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ResolveSong finds a song by ID wherever it lives: the songs table for
// uploads, the catalog cache for external songs, the sample list last.
// Returns nil when the ID is unknown.
func (a *Aggregator) ResolveSong(ctx context.Context, id string) (*model.Song, error) {
	if strings.HasPrefix(id, "user_") {
		return a.songRepo.GetSongByID(id)
	}

	song, err := cache.GetSong(ctx, id)
	if err != nil {
		logger.Warn("song cache lookup failed", logger.String("songId", id), logger.ErrorField(err))
	}
	if song != nil {
		return song, nil
	}

	for _, sample := range a.samples.Songs() {
		if sample.ID == id {
			return sample, nil
		}
	}
	return nil, nil
}

// fetchExternal fans out to every external source with a bounded timeout
// each. A failing source contributes an empty list; if all of them fail the
// fixed sample list is substituted so browsing stays non-empty.
func (a *Aggregator) fetchExternal(ctx context.Context, genre string, limit int) []*model.Song {
	if len(a.sources) == 0 {
		return a.samples.Songs()
	}

	results := make([][]*model.Song, len(a.sources))
	failures := make([]bool, len(a.sources))

	var wg sync.WaitGroup
	for i, source := range a.sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()

			if cached, err := cache.GetCatalog(ctx, source.Name(), genre, limit); err == nil && cached != nil {
				results[i] = cached
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			songs, err := source.Fetch(fetchCtx, genre, limit)
			if err != nil {
				logger.Warn("catalog source failed",
					logger.String("source", source.Name()),
					logger.ErrorField(err))
				failures[i] = true
				return
			}
			results[i] = songs

			if err := cache.SetCatalog(ctx, source.Name(), genre, limit, songs, a.cacheTTL); err != nil {
				logger.Debug("catalog cache write skipped", logger.ErrorField(err))
			}
		}(i, source)
	}
	wg.Wait()

	allFailed := true
	var songs []*model.Song
	for i := range a.sources {
		if !failures[i] {
			allFailed = false
		}
		songs = append(songs, results[i]...)
	}
	if allFailed {
		return a.samples.Songs()
	}
	return songs
}

// applyFilters AND-s the search, genre and mood filters.
func applyFilters(songs []*model.Song, filter Filter) []*model.Song {
	out := songs

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		out = filterSongs(out, func(s *model.Song) bool {
			return strings.Contains(strings.ToLower(s.Title), needle) ||
				strings.Contains(strings.ToLower(s.Artist), needle) ||
				strings.Contains(strings.ToLower(s.Album), needle)
		})
	}

	if filter.Genre != "" {
		genre := strings.ToLower(filter.Genre)
		out = filterSongs(out, func(s *model.Song) bool {
			return strings.Contains(strings.ToLower(s.Genre), genre)
		})
	}

	if filter.Mood != "" {
		out = filterSongs(out, func(s *model.Song) bool {
			return strings.EqualFold(s.Mood, filter.Mood)
		})
	}

	return out
}

func filterSongs(songs []*model.Song, keep func(*model.Song) bool) []*model.Song {
	out := make([]*model.Song, 0, len(songs))
	for _, song := range songs {
		if keep(song) {
			out = append(out, song)
		}
	}
	return out
}

// sortSongs orders songs by the given key. Unknown keys fall back to
// creation time.
func sortSongs(songs []*model.Song, sortBy, order string) {
	desc := order != "asc"

	less := func(i, j int) bool {
		var cmp bool
		switch sortBy {
		case "title":
			cmp = songs[i].Title < songs[j].Title
		case "artist":
			cmp = songs[i].Artist < songs[j].Artist
		case "plays":
			cmp = songs[i].Plays < songs[j].Plays
		case "releaseYear":
			cmp = songs[i].ReleaseYear < songs[j].ReleaseYear
		case "duration":
			cmp = songs[i].Duration < songs[j].Duration
		default:
			cmp = songs[i].CreatedAt.Before(songs[j].CreatedAt)
		}
		if desc {
			return !cmp && !songsEqual(songs[i], songs[j], sortBy)
		}
		return cmp
	}
	sort.SliceStable(songs, less)
}

// songsEqual reports key equality so descending sort stays stable.
func songsEqual(a, b *model.Song, sortBy string) bool {
	switch sortBy {
	case "title":
		return a.Title == b.Title
	case "artist":
		return a.Artist == b.Artist
	case "plays":
		return a.Plays == b.Plays
	case "releaseYear":
		return a.ReleaseYear == b.ReleaseYear
	case "duration":
		return a.Duration == b.Duration
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}

// paginate slices one page using (page-1)*limit as the start offset.
func paginate(songs []*model.Song, page, limit int) []*model.Song {
	start := (page - 1) * limit
	if start >= len(songs) {
		return []*model.Song{}
	}
	end := start + limit
	if end > len(songs) {
		end = len(songs)
	}
	return songs[start:end]
}
