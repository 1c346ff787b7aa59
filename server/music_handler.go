package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"wavefm/cache"
	"wavefm/core/catalog"
	"wavefm/logger"
	"wavefm/model"

	"github.com/gorilla/mux"
)

// GetSongsHandler searches and browses the aggregated catalog.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	filter := catalog.Filter{
		Search: query.Get("search"),
		Genre:  query.Get("genre"),
		Mood:   query.Get("mood"),
		Source: query.Get("source"),
		SortBy: query.Get("sortBy"),
		Order:  query.Get("order"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.aggregator.ListSongs(r.Context(), filter)
	if err != nil {
		logger.Error("[Songs] listing failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching songs")
		return
	}

	respondJSON(w, http.StatusOK, "Songs fetched successfully", result)
}

// GetSongHandler fetches one song and increments its play count.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["id"]

	song, err := h.aggregator.ResolveSong(r.Context(), songID)
	if err != nil {
		logger.Error("[Songs] lookup failed", logger.String("songId", songID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching song")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	// Uploaded songs track plays in the store; external songs keep a
	// counter on their cache entry until it expires.
	if strings.HasPrefix(songID, "user_") {
		if err := h.songRepo.IncrementPlays(songID); err != nil {
			logger.Warn("[Songs] play increment failed", logger.String("songId", songID), logger.ErrorField(err))
		} else {
			song.Plays++
		}
	} else {
		switch err := cache.IncrementSongPlays(r.Context(), songID); {
		case err == nil:
			song.Plays++
		case errors.Is(err, cache.ErrNotCached):
			// Nothing was bumped, so the response keeps the source count.
			logger.Debug("[Songs] song not cached, play count unchanged", logger.String("songId", songID))
		default:
			logger.Debug("[Songs] cached play increment skipped", logger.ErrorField(err))
		}
	}

	respondJSON(w, http.StatusOK, "Song fetched successfully", map[string]interface{}{
		"song": song,
	})
}

// GetRecommendationsHandler returns a ranked suggestion list.
func (h *APIHandler) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.aggregator.Recommendations(r.Context(), 12)
	if err != nil {
		logger.Error("[Recommendations] failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching recommendations")
		return
	}

	respondJSON(w, http.StatusOK, "Recommendations fetched successfully", songs)
}

// GetUserUploadsHandler lists the caller's uploaded songs.
func (h *APIHandler) GetUserUploadsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	songs, err := h.songRepo.ListSongsByUser(userID)
	if err != nil {
		logger.Error("[Uploads] listing failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching user uploads")
		return
	}
	if songs == nil {
		songs = []*model.Song{}
	}

	respondJSON(w, http.StatusOK, "User uploads fetched successfully", songs)
}
