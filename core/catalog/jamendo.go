package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wavefm/model"
)

// JamendoSource fetches tracks from the Jamendo API.
type JamendoSource struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// NewJamendoSource creates a Jamendo catalog source.
func NewJamendoSource(baseURL, clientID string, timeout time.Duration) *JamendoSource {
	return &JamendoSource{
		baseURL:  baseURL,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the source tag.
func (s *JamendoSource) Name() string {
	return model.SourceJamendo
}

type jamendoTrack struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ArtistName      string `json:"artist_name"`
	AlbumName       string `json:"album_name"`
	AlbumImage      string `json:"album_image"`
	Audio           string `json:"audio"`
	Duration        int    `json:"duration"`
	ReleaseDate     string `json:"releasedate"`
	PopularityTotal int64  `json:"popularity_total"`
	MusicInfo       struct {
		Tags struct {
			Genres  []string `json:"genres"`
			Vartags []string `json:"vartags"`
		} `json:"tags"`
	} `json:"musicinfo"`
}

// Fetch queries Jamendo for tracks, optionally constrained to a genre tag.
func (s *JamendoSource) Fetch(ctx context.Context, genre string, limit int) ([]*model.Song, error) {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "popularity_total")
	params.Set("include", "musicinfo")
	if genre != "" {
		params.Set("tags", genre)
	}

	reqURL := fmt.Sprintf("%s/tracks/?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create jamendo request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jamendo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jamendo returned status %d", resp.StatusCode)
	}

	var result struct {
		Results []jamendoTrack `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode jamendo response: %w", err)
	}

	songs := make([]*model.Song, 0, len(result.Results))
	for _, track := range result.Results {
		tags := strings.Join(append(track.MusicInfo.Tags.Genres, track.MusicInfo.Tags.Vartags...), " ")
		genreLabel := "Various"
		if len(track.MusicInfo.Tags.Genres) > 0 {
			genreLabel = strings.Join(track.MusicInfo.Tags.Genres, ", ")
		}

		releaseYear := 0
		if len(track.ReleaseDate) >= 4 {
			releaseYear, _ = strconv.Atoi(track.ReleaseDate[:4])
		}

		cover := track.AlbumImage
		if cover == "" {
			cover = "/uploads/default-cover.jpg"
		}
		album := track.AlbumName
		if album == "" {
			album = "Single"
		}

		songs = append(songs, &model.Song{
			ID:          fmt.Sprintf("jamendo_%d", track.ID),
			Title:       track.Name,
			Artist:      track.ArtistName,
			Album:       album,
			Genre:       genreLabel,
			Mood:        MoodFromTags(tags),
			Duration:    track.Duration,
			FileURL:     track.Audio,
			CoverArt:    cover,
			Plays:       track.PopularityTotal,
			ReleaseYear: releaseYear,
			Source:      model.SourceJamendo,
		})
	}
	return songs, nil
}
