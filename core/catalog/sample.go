package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"wavefm/logger"
	"wavefm/model"

	"github.com/fsnotify/fsnotify"
)

// SampleCatalog is the fixed fallback list served when every external
// source fails, so browsing never comes back empty. The built-in list can
// be overridden by a JSON file which is hot-reloaded on change.
type SampleCatalog struct {
	mu      sync.RWMutex
	songs   []*model.Song
	path    string
	watcher *fsnotify.Watcher
}

// NewSampleCatalog builds the fallback catalog. path may point at a JSON
// file of songs; if it is missing the built-in samples are used.
func NewSampleCatalog(path string) *SampleCatalog {
	c := &SampleCatalog{
		songs: builtinSamples(),
		path:  path,
	}
	if path != "" {
		c.loadFile()
		c.watch()
	}
	return c
}

// Songs returns a copy of the current sample list.
func (c *SampleCatalog) Songs() []*model.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()

	songs := make([]*model.Song, len(c.songs))
	copy(songs, c.songs)
	return songs
}

// Close stops the file watcher.
func (c *SampleCatalog) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *SampleCatalog) loadFile() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read sample catalog file", logger.String("path", c.path), logger.ErrorField(err))
		}
		return
	}

	var songs []*model.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		logger.Warn("failed to parse sample catalog file", logger.String("path", c.path), logger.ErrorField(err))
		return
	}
	for _, song := range songs {
		song.Source = model.SourceSample
	}

	c.mu.Lock()
	c.songs = songs
	c.mu.Unlock()
	logger.Info("sample catalog loaded", logger.String("path", c.path), logger.Int("songs", len(songs)))
}

// watch reloads the sample file whenever it is written. Watching the parent
// directory survives editors that replace the file on save.
func (c *SampleCatalog) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("failed to create sample catalog watcher", logger.ErrorField(err))
		return
	}

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("failed to watch sample catalog dir", logger.String("dir", dir), logger.ErrorField(err))
		watcher.Close()
		return
	}
	c.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != c.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					c.loadFile()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("sample catalog watcher error", logger.ErrorField(err))
			}
		}
	}()
}

func builtinSamples() []*model.Song {
	return []*model.Song{
		{
			ID:          "sample_1",
			Title:       "Summer Vibes",
			Artist:      "Independent Artist",
			Album:       "Demo Tracks",
			Genre:       "Pop",
			Mood:        "happy",
			Duration:    180,
			FileURL:     "/uploads/sample1.mp3",
			CoverArt:    "/uploads/default-cover.jpg",
			Plays:       154,
			ReleaseYear: 2024,
			Source:      model.SourceSample,
		},
		{
			ID:          "sample_2",
			Title:       "Midnight Drive",
			Artist:      "Neon Lights",
			Album:       "Demo Tracks",
			Genre:       "Electronic",
			Mood:        "calm",
			Duration:    212,
			FileURL:     "/uploads/sample2.mp3",
			CoverArt:    "/uploads/default-cover.jpg",
			Plays:       98,
			ReleaseYear: 2024,
			Source:      model.SourceSample,
		},
		{
			ID:          "sample_3",
			Title:       "Paper Boats",
			Artist:      "The Quiet Hours",
			Album:       "Demo Tracks",
			Genre:       "Folk",
			Mood:        "sad",
			Duration:    197,
			FileURL:     "/uploads/sample3.mp3",
			CoverArt:    "/uploads/default-cover.jpg",
			Plays:       61,
			ReleaseYear: 2023,
			Source:      model.SourceSample,
		},
	}
}
