package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wavefm/model"
)

// DeezerSource fetches track previews from the Deezer search API.
type DeezerSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewDeezerSource creates a Deezer catalog source.
func NewDeezerSource(baseURL string, timeout time.Duration) *DeezerSource {
	return &DeezerSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the source tag.
func (s *DeezerSource) Name() string {
	return model.SourceDeezer
}

type deezerTrack struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Preview  string `json:"preview"`
	Rank     int64  `json:"rank"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title       string `json:"title"`
		CoverMedium string `json:"cover_medium"`
	} `json:"album"`
}

// Fetch queries Deezer, optionally constrained to a genre.
func (s *DeezerSource) Fetch(ctx context.Context, genre string, limit int) ([]*model.Song, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if genre != "" {
		params.Set("q", fmt.Sprintf("genre:%q", genre))
	} else {
		params.Set("q", "a")
	}

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deezer request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deezer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deezer returned status %d", resp.StatusCode)
	}

	var result struct {
		Data []deezerTrack `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode deezer response: %w", err)
	}

	genreLabel := genre
	if genreLabel == "" {
		genreLabel = "Various"
	}

	songs := make([]*model.Song, 0, len(result.Data))
	for _, track := range result.Data {
		album := track.Album.Title
		if album == "" {
			album = "Single"
		}
		cover := track.Album.CoverMedium
		if cover == "" {
			cover = "/uploads/default-cover.jpg"
		}

		songs = append(songs, &model.Song{
			ID:          fmt.Sprintf("deezer_%d", track.ID),
			Title:       track.Title,
			Artist:      track.Artist.Name,
			Album:       album,
			Genre:       genreLabel,
			Mood:        "energetic",
			Duration:    track.Duration,
			FileURL:     track.Preview,
			CoverArt:    cover,
			Plays:       track.Rank,
			ReleaseYear: time.Now().Year(),
			Source:      model.SourceDeezer,
		})
	}
	return songs, nil
}
