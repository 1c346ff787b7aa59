package repository

import (
	"database/sql"
	"fmt"

	"wavefm/model"
)

// SongRepository defines the interface for uploaded-song data operations.
type SongRepository interface {
	// CreateSong inserts the song and bumps the uploader's counter in one
	// transaction, so a failed insert never leaves a stray increment.
	CreateSong(song *model.Song) error
	GetSongByID(id string) (*model.Song, error)
	ListSongs() ([]*model.Song, error)
	ListSongsByUser(userID int64) ([]*model.Song, error)
	IncrementPlays(id string) error
	UpdateCoverArt(id, coverArt string) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

const songColumns = `id, title, artist, COALESCE(album, ''), genre, COALESCE(mood, ''), COALESCE(lyrics, ''),
	duration, file_url, COALESCE(cover_art, ''), plays, COALESCE(release_year, 0), uploaded_by, created_at, updated_at`

func scanSong(scanner interface{ Scan(...interface{}) error }) (*model.Song, error) {
	song := &model.Song{Source: model.SourceUser}
	err := scanner.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Genre, &song.Mood, &song.Lyrics,
		&song.Duration, &song.FileURL, &song.CoverArt, &song.Plays, &song.ReleaseYear, &song.UploadedBy,
		&song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return song, nil
}

// CreateSong inserts a song row and increments the uploading user's
// songs_uploaded counter atomically.
func (r *mysqlSongRepository) CreateSong(song *model.Song) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin upload transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO songs (id, title, artist, album, genre, mood, lyrics, duration, file_url, cover_art, plays, release_year, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`
	if _, err := tx.Exec(query, song.ID, song.Title, song.Artist, song.Album, song.Genre, song.Mood, song.Lyrics,
		song.Duration, song.FileURL, song.CoverArt, song.ReleaseYear, song.UploadedBy); err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	if _, err := tx.Exec("UPDATE users SET songs_uploaded = songs_uploaded + 1 WHERE id = ?", song.UploadedBy); err != nil {
		return fmt.Errorf("failed to increment upload counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upload transaction: %w", err)
	}
	return nil
}

// GetSongByID retrieves an uploaded song by its ID.
func (r *mysqlSongRepository) GetSongByID(id string) (*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ?"
	song, err := scanSong(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // song not found
		}
		return nil, fmt.Errorf("failed to scan song row for ID %s: %w", id, err)
	}
	return song, nil
}

// ListSongs returns all uploaded songs, newest first.
func (r *mysqlSongRepository) ListSongs() ([]*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs ORDER BY created_at DESC"
	return r.querySongs(query)
}

// ListSongsByUser returns the songs uploaded by one user, newest first.
func (r *mysqlSongRepository) ListSongsByUser(userID int64) ([]*model.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE uploaded_by = ? ORDER BY created_at DESC"
	return r.querySongs(query, userID)
}

func (r *mysqlSongRepository) querySongs(query string, args ...interface{}) ([]*model.Song, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*model.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("song rows iteration failed: %w", err)
	}
	return songs, nil
}

// UpdateCoverArt sets a song's cover art path.
func (r *mysqlSongRepository) UpdateCoverArt(id, coverArt string) error {
	res, err := r.db.Exec("UPDATE songs SET cover_art = ? WHERE id = ?", coverArt, id)
	if err != nil {
		return fmt.Errorf("failed to update cover art for song %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementPlays atomically bumps a song's play counter.
func (r *mysqlSongRepository) IncrementPlays(id string) error {
	res, err := r.db.Exec("UPDATE songs SET plays = plays + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment plays for song %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
