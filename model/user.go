package model

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	DisplayName  string    `json:"displayName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Settings     string    `json:"-"` // JSON blob, decoded on demand
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserStats holds per-user counters. Counters are adjusted with atomic
// store-level increments, never recomputed from scratch.
type UserStats struct {
	SongsPlayed      int64 `json:"songsPlayed"`
	SongsUploaded    int64 `json:"songsUploaded"`
	PlaylistsCreated int64 `json:"playlistsCreated"`
	ListeningTime    int64 `json:"listeningTime"` // minutes
}

// UserSettings is the decoded form of User.Settings.
type UserSettings struct {
	Theme           string  `json:"theme"`
	Volume          float64 `json:"volume"`
	AudioQuality    string  `json:"audioQuality"`
	Crossfade       bool    `json:"crossfade"`
	NormalizeVolume bool    `json:"normalizeVolume"`
	PrivateMode     bool    `json:"privateMode"`
}

// DefaultUserSettings returns the settings assigned to new accounts.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:           "light",
		Volume:          0.7,
		AudioQuality:    "high",
		NormalizeVolume: true,
	}
}

// HistoryEntry is one listening-history record.
type HistoryEntry struct {
	SongID   string    `json:"songId"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Duration int       `json:"duration"` // seconds
	PlayedAt time.Time `json:"playedAt"`
}
