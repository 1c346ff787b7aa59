package server

import (
	"encoding/json"
	"net/http"

	"wavefm/config"
	"wavefm/core/catalog"
	"wavefm/db"
	"wavefm/repository"
	"wavefm/storage"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo     repository.UserRepository
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	aggregator   *catalog.Aggregator
	cfg          *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	aggregator *catalog.Aggregator,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		songRepo:     songRepo,
		playlistRepo: playlistRepo,
		aggregator:   aggregator,
		cfg:          cfg,
	}
}

// apiResponse is the JSON envelope every endpoint answers with.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Message: message,
	})
}

// HealthHandler reports liveness plus the state of each backing service.
// The endpoint itself always answers 200; a degraded dependency shows up
// in the per-service fields.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	database := "unavailable"
	if db.DB != nil && db.DB.PingContext(r.Context()) == nil {
		database = "ok"
	}

	redisStatus := "unavailable"
	if db.RedisClient != nil && db.RedisClient.Ping(r.Context()).Err() == nil {
		redisStatus = "ok"
	}

	storageStatus := "unavailable"
	if storage.GetMinioClient() != nil {
		storageStatus = "ok"
	}

	respondJSON(w, http.StatusOK, "Server is running", map[string]interface{}{
		"version":  "1.0.0",
		"database": database,
		"redis":    redisStatus,
		"storage":  storageStatus,
	})
}
