package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wavefm/logger"
	"wavefm/model"
	"wavefm/storage"

	"github.com/google/uuid"
)

// UploadSongHandler handles audio file uploads with metadata. Validation
// happens before any persistence, so a rejected request leaves no partial
// state — no object, no song row, no counter increment.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if r.ContentLength > h.cfg.MaxUploadSize {
		logger.Warn("[Upload] request too large",
			logger.Int64("contentLength", r.ContentLength),
			logger.Int64("maxSize", h.cfg.MaxUploadSize))
		respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Maximum size is %d MB", h.cfg.MaxUploadSize>>20))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		respondError(w, http.StatusUnsupportedMediaType, "Only audio files are allowed")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	artist := strings.TrimSpace(r.FormValue("artist"))
	genre := strings.TrimSpace(r.FormValue("genre"))
	if title == "" || artist == "" || genre == "" {
		respondError(w, http.StatusBadRequest, "Title, artist, and genre are required")
		return
	}

	mood := r.FormValue("mood")
	if mood == "" {
		mood = "energetic"
	}
	releaseYear := time.Now().Year()
	if v := r.FormValue("releaseYear"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			releaseYear = parsed
		}
	}
	duration := 0
	if v := r.FormValue("duration"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			duration = parsed
		}
	}

	songID := fmt.Sprintf("user_%s", uuid.New().String())
	objectKey := h.cfg.AudioKeyPrefix + songID + strings.ToLower(filepath.Ext(header.Filename))

	if err := storage.PutObject(r.Context(), objectKey, file, header.Size, contentType); err != nil {
		logger.Error("[Upload] object store write failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error uploading song")
		return
	}

	song := &model.Song{
		ID:          songID,
		Title:       title,
		Artist:      artist,
		Album:       r.FormValue("album"),
		Genre:       genre,
		Mood:        mood,
		Lyrics:      r.FormValue("lyrics"),
		Duration:    duration,
		FileURL:     "/files/" + objectKey,
		CoverArt:    "/uploads/default-cover.jpg",
		ReleaseYear: releaseYear,
		Source:      model.SourceUser,
		UploadedBy:  userID,
	}

	if err := h.songRepo.CreateSong(song); err != nil {
		logger.Error("[Upload] song insert failed", logger.String("songId", songID), logger.ErrorField(err))
		// Remove the orphaned object; the transaction already rolled back
		// the row and counter.
		if rmErr := storage.RemoveObject(r.Context(), objectKey); rmErr != nil {
			logger.Warn("[Upload] orphan cleanup failed", logger.String("key", objectKey), logger.ErrorField(rmErr))
		}
		respondError(w, http.StatusInternalServerError, "Error uploading song")
		return
	}

	logger.Info("[Upload] song uploaded",
		logger.String("songId", songID),
		logger.String("title", title),
		logger.Int64("userId", userID))

	respondJSON(w, http.StatusCreated, "Song uploaded successfully", map[string]interface{}{
		"song": song,
	})
}

// UploadCoverHandler replaces the cover art of one of the caller's songs.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No cover file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusUnsupportedMediaType, "Only image files are allowed")
		return
	}

	songID := r.FormValue("songId")
	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating cover")
		return
	}
	if song == nil || song.UploadedBy != userID {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	objectKey := h.cfg.CoverKeyPrefix + songID + strings.ToLower(filepath.Ext(header.Filename))
	if err := storage.PutObject(r.Context(), objectKey, file, header.Size, contentType); err != nil {
		logger.Error("[Upload] cover store write failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error updating cover")
		return
	}

	coverPath := "/files/" + objectKey
	if err := h.songRepo.UpdateCoverArt(songID, coverPath); err != nil {
		logger.Error("[Upload] cover path update failed", logger.String("songId", songID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error updating cover")
		return
	}

	respondJSON(w, http.StatusOK, "Cover uploaded successfully", map[string]interface{}{
		"coverArt": coverPath,
	})
}
