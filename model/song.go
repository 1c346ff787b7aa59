package model

import "time"

// Song sources. Uploaded songs are persisted; external songs come from
// catalog APIs and are only cached.
const (
	SourceUser    = "user"
	SourceJamendo = "jamendo"
	SourceDeezer  = "deezer"
	SourceSample  = "sample"
)

// Song represents a playable track with descriptive metadata.
// IDs are source-prefixed strings, e.g. "jamendo_1234" or "user_<uuid>".
type Song struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	Genre       string    `json:"genre"`
	Mood        string    `json:"mood"`
	Lyrics      string    `json:"lyrics,omitempty"`
	Duration    int       `json:"duration"` // seconds
	FileURL     string    `json:"fileUrl"`
	CoverArt    string    `json:"coverArt"`
	Plays       int64     `json:"plays"`
	ReleaseYear int       `json:"releaseYear"`
	Source      string    `json:"source"`
	UploadedBy  int64     `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
