package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	JWTSecret     string
	JWTExpiration time.Duration

	// External catalog sources
	JamendoAPIURL     string
	JamendoClientID   string
	DeezerAPIURL      string
	CatalogTimeout    time.Duration // per-source fetch budget
	CatalogCacheTTL   time.Duration
	SampleCatalogPath string // optional JSON file overriding the built-in fallback list

	// Upload limits
	MaxUploadSize  int64 // bytes
	AudioKeyPrefix string
	CoverKeyPrefix string

	// Listening history retention (entries per user)
	HistoryLimit int64

	LogPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration in seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "wavefm"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "wavefm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret:     getEnv("JWT_SECRET", "wavefm-dev-secret"),
		JWTExpiration: getEnvDuration("JWT_EXPIRATION", 72*time.Hour),

		JamendoAPIURL:     getEnv("JAMENDO_API_URL", "https://api.jamendo.com/v3.0"),
		JamendoClientID:   os.Getenv("JAMENDO_CLIENT_ID"),
		DeezerAPIURL:      getEnv("DEEZER_API_URL", "https://api.deezer.com"),
		CatalogTimeout:    getEnvDuration("CATALOG_TIMEOUT", 5*time.Second),
		CatalogCacheTTL:   getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		SampleCatalogPath: getEnv("SAMPLE_CATALOG_PATH", filepath.Join("data", "samples.json")),

		MaxUploadSize:  int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 50)) << 20,
		AudioKeyPrefix: "audio/",
		CoverKeyPrefix: "covers/",

		HistoryLimit: int64(getEnvInt("HISTORY_LIMIT", 500)),

		LogPath: getEnv("LOG_PATH", filepath.Join("logs", "wavefm.log")),
	}
}
