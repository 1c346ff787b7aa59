package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wavefm/config"
	"wavefm/core/auth"
	"wavefm/core/catalog"
	"wavefm/db"
	"wavefm/logger"
	"wavefm/model"
	"wavefm/repository"
	"wavefm/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until an
// interrupt arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(getLogLevel()),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.Init(cfg.JWTSecret, cfg.JWTExpiration)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.Playlist{}, &model.PlaylistSong{}); err != nil {
		logger.Fatal("Failed to migrate playlist tables", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	userRepo := repository.NewMySQLUserRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)

	samples := catalog.NewSampleCatalog(cfg.SampleCatalogPath)
	defer samples.Close()

	sources := []catalog.Source{
		catalog.NewJamendoSource(cfg.JamendoAPIURL, cfg.JamendoClientID, cfg.CatalogTimeout),
		catalog.NewDeezerSource(cfg.DeezerAPIURL, cfg.CatalogTimeout),
	}
	aggregator := catalog.NewAggregator(sources, samples, songRepo, cfg.CatalogTimeout, cfg.CatalogCacheTTL)

	apiHandler := NewAPIHandler(userRepo, songRepo, playlistRepo, aggregator, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Catalog
	router.HandleFunc("/api/music/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/songs/{id}", apiHandler.GetSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/recommendations", apiHandler.GetRecommendationsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/upload", apiHandler.AuthMiddleware(apiHandler.UploadSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/upload/cover", apiHandler.AuthMiddleware(apiHandler.UploadCoverHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/user-uploads", apiHandler.AuthMiddleware(apiHandler.GetUserUploadsHandler)).Methods(http.MethodGet)

	// Playlists. The literal /user route must come before /{id}.
	router.HandleFunc("/api/music/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/playlists/user", apiHandler.AuthMiddleware(apiHandler.GetUserPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/music/playlists/{id}", apiHandler.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/music/playlists/{id}/songs", apiHandler.AuthMiddleware(apiHandler.AddSongToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/playlists/{id}/songs/{song_id}", apiHandler.AuthMiddleware(apiHandler.RemoveSongFromPlaylistHandler)).Methods(http.MethodDelete)

	// User profile
	router.HandleFunc("/api/users/{id}/profile", apiHandler.AuthMiddleware(apiHandler.GetProfileHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}/profile", apiHandler.AuthMiddleware(apiHandler.UpdateProfileHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}/settings", apiHandler.AuthMiddleware(apiHandler.UpdateSettingsHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}/record-play", apiHandler.AuthMiddleware(apiHandler.RecordPlayHandler)).Methods(http.MethodPost)

	// Player session
	router.HandleFunc("/api/player/ws", apiHandler.PlayerSessionHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	// Uploaded audio and cover art are served straight from MinIO.
	router.PathPrefix("/files/").HandlerFunc(serveMinioFile)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

func getLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// corsMiddleware opens the API to the browser frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// serveMinioFile streams an object from the bucket. The URL path after
// /files/ is the object key.
func serveMinioFile(w http.ResponseWriter, r *http.Request) {
	objectKey := strings.TrimPrefix(r.URL.Path, "/files/")
	if objectKey == "" {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	object, err := storage.GetObject(ctx, objectKey)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasPrefix(objectKey, "covers/"):
		contentType = "image/jpeg"
	case strings.HasPrefix(objectKey, "audio/"):
		contentType = "audio/mpeg"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("Error serving file", logger.String("key", objectKey), logger.ErrorField(err))
	}
}
