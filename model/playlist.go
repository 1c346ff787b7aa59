package model

import "time"

// Playlist is a user-owned ordered collection of songs.
type Playlist struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Description string         `json:"description" gorm:"size:500"`
	OwnerID     int64          `json:"ownerId" gorm:"index;not null"`
	IsPublic    bool           `json:"isPublic" gorm:"default:true"`
	CoverArt    string         `json:"coverArt" gorm:"size:512"`
	Plays       int64          `json:"plays" gorm:"default:0"`
	Songs       []PlaylistSong `json:"songs,omitempty" gorm:"foreignKey:PlaylistID"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PlaylistSong is one entry of a playlist. SongID references a Song that
// must exist at insert time (uploaded song row or cached catalog song).
type PlaylistSong struct {
	ID         int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"-" gorm:"index;not null;uniqueIndex:uq_playlist_song,priority:1"`
	SongID     string    `json:"songId" gorm:"size:64;not null;uniqueIndex:uq_playlist_song,priority:2"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"addedAt" gorm:"autoCreateTime"`
}

// PlaylistWithSongs pairs a playlist with its resolved song documents.
type PlaylistWithSongs struct {
	Playlist Playlist `json:"playlist"`
	Songs    []*Song  `json:"songs"`
}
