package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wavefm/logger"
	"wavefm/model"

	"github.com/gorilla/mux"
)

// CreatePlaylistRequest represents the playlist creation body.
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"isPublic"`
}

// CreatePlaylistHandler creates a playlist owned by the caller. The song
// list starts empty and the owner's playlist counter is bumped.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	playlist := &model.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
		IsPublic:    isPublic,
	}

	if err := h.playlistRepo.Create(r.Context(), playlist); err != nil {
		logger.Error("[Playlist] create failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error creating playlist")
		return
	}

	if err := h.userRepo.IncrementPlaylistsCreated(userID); err != nil {
		logger.Warn("[Playlist] counter increment failed", logger.Int64("userId", userID), logger.ErrorField(err))
	}

	logger.Info("[Playlist] created",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", userID))

	respondJSON(w, http.StatusCreated, "Playlist created successfully", playlist)
}

// GetUserPlaylistsHandler lists the caller's playlists.
func (h *APIHandler) GetUserPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlists, err := h.playlistRepo.ListByOwner(r.Context(), userID)
	if err != nil {
		logger.Error("[Playlist] listing failed", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching playlists")
		return
	}
	if playlists == nil {
		playlists = []*model.Playlist{}
	}

	respondJSON(w, http.StatusOK, "Playlists fetched successfully", playlists)
}

// GetPlaylistHandler fetches a playlist with its songs resolved to full
// documents.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("[Playlist] lookup failed", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error fetching playlist")
		return
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	songs := make([]*model.Song, 0, len(playlist.Songs))
	for _, entry := range playlist.Songs {
		song, err := h.aggregator.ResolveSong(r.Context(), entry.SongID)
		if err != nil {
			logger.Warn("[Playlist] song resolution failed", logger.String("songId", entry.SongID), logger.ErrorField(err))
			continue
		}
		if song != nil {
			songs = append(songs, song)
		}
	}

	respondJSON(w, http.StatusOK, "Playlist fetched successfully", model.PlaylistWithSongs{
		Playlist: *playlist,
		Songs:    songs,
	})
}

// AddSongRequest represents the playlist add-song body.
type AddSongRequest struct {
	SongID string `json:"songId"`
}

// AddSongToPlaylistHandler appends a song to one of the caller's playlists.
// The song identity must resolve somewhere (uploaded song or cached catalog
// song); unknown IDs are rejected so a playlist never references a song
// that does not exist.
func (h *APIHandler) AddSongToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	var req AddSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == "" {
		respondError(w, http.StatusBadRequest, "Song ID is required")
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching playlist")
		return
	}
	if playlist == nil || playlist.OwnerID != userID {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	song, err := h.aggregator.ResolveSong(r.Context(), req.SongID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error resolving song")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.playlistRepo.AddSong(r.Context(), playlistID, req.SongID); err != nil {
		logger.Error("[Playlist] add song failed",
			logger.Int64("playlistId", playlistID),
			logger.String("songId", req.SongID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error adding song to playlist")
		return
	}

	respondJSON(w, http.StatusOK, "Song added to playlist", nil)
}

// RemoveSongFromPlaylistHandler removes a song from one of the caller's
// playlists.
func (h *APIHandler) RemoveSongFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	playlistID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}
	songID := vars["song_id"]

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching playlist")
		return
	}
	if playlist == nil || playlist.OwnerID != userID {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	if err := h.playlistRepo.RemoveSong(r.Context(), playlistID, songID); err != nil {
		logger.Error("[Playlist] remove song failed",
			logger.Int64("playlistId", playlistID),
			logger.String("songId", songID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error removing song from playlist")
		return
	}

	respondJSON(w, http.StatusOK, "Song removed from playlist", nil)
}

// DeletePlaylistHandler deletes one of the caller's playlists.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), playlistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching playlist")
		return
	}
	if playlist == nil || playlist.OwnerID != userID {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	if err := h.playlistRepo.Delete(r.Context(), playlistID); err != nil {
		logger.Error("[Playlist] delete failed", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Error deleting playlist")
		return
	}

	respondJSON(w, http.StatusOK, "Playlist deleted successfully", nil)
}
