package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"wavefm/model"
)

// UserRepository defines the interface for user data operations.
// Counter updates are atomic at the store level (UPDATE ... SET x = x + n),
// never read-then-write, so concurrent requests cannot lose increments.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateProfile(userID int64, displayName, bio, avatar string) error
	UpdateSettings(userID int64, settings string) error
	RecordPlay(userID int64, listeningMinutes int64) error
	IncrementPlaylistsCreated(userID int64) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash,
	COALESCE(display_name, ''), COALESCE(bio, ''), COALESCE(avatar, ''), COALESCE(settings, ''),
	songs_played, songs_uploaded, playlists_created, listening_time,
	created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.DisplayName, &user.Bio, &user.Avatar, &user.Settings,
		&user.Stats.SongsPlayed, &user.Stats.SongsUploaded, &user.Stats.PlaylistsCreated, &user.Stats.ListeningTime,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := "INSERT INTO users (username, email, password_hash, display_name, bio, avatar, settings) VALUES (?, ?, ?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Username, user.Email, user.PasswordHash, user.DisplayName, user.Bio, user.Avatar, user.Settings)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(query, id))
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	return scanUser(r.db.QueryRow(query, username))
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(query, email))
}

// UpdateProfile updates the user's display name, bio and avatar.
func (r *mysqlUserRepository) UpdateProfile(userID int64, displayName, bio, avatar string) error {
	query := "UPDATE users SET display_name = ?, bio = ?, avatar = ?, updated_at = NOW() WHERE id = ?"
	res, err := r.db.Exec(query, displayName, bio, avatar, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing user and for a no-op update,
		// so confirm the row exists before reporting not-found.
		user, err := r.GetUserByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
	}
	return nil
}

// UpdateSettings replaces the user's settings document.
func (r *mysqlUserRepository) UpdateSettings(userID int64, settings string) error {
	query := "UPDATE users SET settings = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.Exec(query, settings, userID); err != nil {
		return fmt.Errorf("failed to update settings for user %d: %w", userID, err)
	}
	return nil
}

// RecordPlay atomically bumps the play counter and listening time.
func (r *mysqlUserRepository) RecordPlay(userID int64, listeningMinutes int64) error {
	query := "UPDATE users SET songs_played = songs_played + 1, listening_time = listening_time + ? WHERE id = ?"
	res, err := r.db.Exec(query, listeningMinutes, userID)
	if err != nil {
		return fmt.Errorf("failed to record play for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementPlaylistsCreated atomically bumps the playlist counter.
func (r *mysqlUserRepository) IncrementPlaylistsCreated(userID int64) error {
	query := "UPDATE users SET playlists_created = playlists_created + 1 WHERE id = ?"
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to increment playlists counter for user %d: %w", userID, err)
	}
	return nil
}
