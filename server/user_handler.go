package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"wavefm/cache"
	"wavefm/logger"
	"wavefm/model"
	"wavefm/repository"

	"github.com/gorilla/mux"
)

// pathUserID resolves the {id} path segment and requires it to match the
// authenticated identity, so one user cannot read or edit another's account.
func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	authedID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}

	pathID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	if pathID != authedID {
		respondError(w, http.StatusForbidden, "Forbidden")
		return 0, false
	}
	return authedID, true
}

// GetProfileHandler returns a user's profile together with recent listening
// history, uploaded songs and playback stats.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Error("[User] profile lookup failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching profile")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	history, err := cache.GetHistory(r.Context(), userID, 10)
	if err != nil {
		logger.Warn("[User] history fetch failed", logger.Int64("userId", userID), logger.ErrorField(err))
		history = []model.HistoryEntry{}
	}

	uploads, err := h.songRepo.ListSongsByUser(userID)
	if err != nil {
		logger.Warn("[User] uploads fetch failed", logger.Int64("userId", userID), logger.ErrorField(err))
		uploads = []*model.Song{}
	}
	if uploads == nil {
		uploads = []*model.Song{}
	}

	var settings model.UserSettings
	if err := json.Unmarshal([]byte(user.Settings), &settings); err != nil {
		settings = model.DefaultUserSettings()
	}

	respondJSON(w, http.StatusOK, "Profile fetched successfully", map[string]interface{}{
		"user":           user,
		"settings":       settings,
		"recentlyPlayed": history,
		"uploadedSongs":  uploads,
		"stats":          user.Stats,
	})
}

// UpdateProfileRequest represents the editable profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
}

// UpdateProfileHandler updates display name, bio and avatar.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userRepo.UpdateProfile(userID, req.DisplayName, req.Bio, req.Avatar); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("[User] profile update failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil || user == nil {
		respondError(w, http.StatusInternalServerError, "Error fetching updated profile")
		return
	}

	respondJSON(w, http.StatusOK, "Profile updated successfully", user)
}

// UpdateSettingsHandler replaces the user's playback settings blob.
func (h *APIHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var settings model.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid settings payload")
		return
	}
	if settings.Volume < 0 {
		settings.Volume = 0
	}
	if settings.Volume > 1 {
		settings.Volume = 1
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error encoding settings")
		return
	}

	if err := h.userRepo.UpdateSettings(userID, string(raw)); err != nil {
		logger.Error("[User] settings update failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error updating settings")
		return
	}

	respondJSON(w, http.StatusOK, "Settings updated successfully", settings)
}

// RecordPlayRequest represents a completed (or abandoned) playback report.
type RecordPlayRequest struct {
	SongID   string `json:"songId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

// RecordPlayHandler bumps the user's play counters and pushes the song onto
// the bounded listening history.
func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req RecordPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == "" {
		respondError(w, http.StatusBadRequest, "Song ID is required")
		return
	}

	// Listening time is tracked in whole minutes, rounded up so short
	// tracks still count.
	minutes := int64((req.Duration + 59) / 60)
	if err := h.userRepo.RecordPlay(userID, minutes); err != nil {
		logger.Error("[User] record play failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error recording play")
		return
	}

	entry := model.HistoryEntry{
		SongID:   req.SongID,
		Title:    req.Title,
		Artist:   req.Artist,
		Duration: req.Duration,
		PlayedAt: time.Now(),
	}
	if err := cache.PushHistory(r.Context(), userID, entry, h.cfg.HistoryLimit); err != nil {
		logger.Warn("[User] history push failed", logger.Int64("userId", userID), logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, "Play recorded", nil)
}
