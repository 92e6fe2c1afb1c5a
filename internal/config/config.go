package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	BodyLimitMB        int
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret       string
	ChunkIndexTopic string // watermill topic for chunk indexing jobs
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "none"
	LLMModel          string
	OllamaBaseURL     string
	EmbeddingModel    string
	EnableEmbeddings  bool
	EmbeddingProvider string
}

type SessionConfig struct {
	AutosaveInterval time.Duration
	StateCacheTTL    time.Duration
	AutosaveLogPath  string
}

type TracingConfig struct {
	Enabled      bool
	OtlpEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 12),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret:       getEnv("JWT_SECRET", ""),
			ChunkIndexTopic: getEnv("CHUNK_INDEX_TOPIC_NAME", "INDEX_DOCUMENT_CHUNKS"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "none"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EnableEmbeddings:  getEnvAsBool("ENABLE_EMBEDDINGS", false),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
		},
		Session: SessionConfig{
			AutosaveInterval: getEnvAsDuration("SESSION_AUTOSAVE_INTERVAL", 30*time.Second),
			StateCacheTTL:    getEnvAsDuration("SESSION_STATE_TTL", 24*time.Hour),
			AutosaveLogPath:  getEnv("SESSION_AUTOSAVE_LOG_PATH", "autosave.log"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "ai-tutoring-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
