package repository

import (
	"context"

	"wavefm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines playlist data operations.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	Delete(ctx context.Context, id int64) error

	AddSong(ctx context.Context, playlistID int64, songID string) error
	RemoveSong(ctx context.Context, playlistID int64, songID string) error
}

// gormPlaylistRepository implements PlaylistRepository with GORM.
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// Create persists a new playlist. Songs start empty.
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

// GetByID returns a playlist with its song entries, or nil if absent.
func (r *gormPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&playlist, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// ListByOwner returns a user's playlists, newest first.
func (r *gormPlaylistRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Preload("Songs").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&playlists).Error
	return playlists, err
}

// Update saves playlist metadata changes.
func (r *gormPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Save(playlist).Error
}

// Delete removes a playlist and its entries.
func (r *gormPlaylistRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistSong{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Playlist{}, id).Error
	})
}

// AddSong appends a song to the playlist. Re-adding an existing song is a
// no-op thanks to the (playlist_id, song_id) unique index.
func (r *gormPlaylistRepository) AddSong(ctx context.Context, playlistID int64, songID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.PlaylistSong{}).Where("playlist_id = ?", playlistID).Count(&count).Error; err != nil {
			return err
		}
		entry := model.PlaylistSong{
			PlaylistID: playlistID,
			SongID:     songID,
			Position:   int(count),
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	})
}

// RemoveSong deletes a song entry from the playlist.
func (r *gormPlaylistRepository) RemoveSong(ctx context.Context, playlistID int64, songID string) error {
	return r.db.WithContext(ctx).
		Where("playlist_id = ? AND song_id = ?", playlistID, songID).
		Delete(&model.PlaylistSong{}).Error
}
