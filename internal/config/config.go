package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// MongoDB
	MongoURL string
	MongoDB  string

	// Blob store (line audio)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	PublicBaseURL  string // base URL listeners use to fetch stored audio

	// Gemini
	GeminiAPIURL     string
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiVoiceModel string

	// Player behavior
	FallbackDelay time.Duration // wait before skipping a line with no audio
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("PORT", 8080),

		MongoURL: envStr("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:  envStr("MONGO_DB", "podcastmafya"),

		MinioEndpoint:  envStr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: envStr("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: envStr("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    envStr("MINIO_BUCKET", "episode-audio"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		PublicBaseURL:  envStr("PUBLIC_BASE_URL", "http://localhost:9000"),

		GeminiAPIURL:     envStr("GEMINI_API_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIKey:     envStr("GEMINI_API_KEY", ""),
		GeminiTextModel:  envStr("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiVoiceModel: envStr("GEMINI_VOICE_MODEL", "gemini-2.5-flash-preview-tts"),

		FallbackDelay: time.Duration(envInt("PLAYER_FALLBACK_DELAY_MS", 2000)) * time.Millisecond,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
