package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	VectorSearchURL     string
	VectorSearchTimeout int
	SearchTopK          int

	GenAIURL       string
	GenAIModel     string
	GenAITimeout   int
	InsightTimeout int
	InsightRPS     float64
	InsightBurst   int

	EmbeddingModel string
	EmbeddingDim   int

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	WorkerEnabled      bool
	WorkerPollInterval int
	WorkerBatchSize    int

	OTelEnabled bool
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "match-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "match_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "match_password"),
		DBName:     getEnv("DB_NAME", "match_db"),

		VectorSearchURL:     getEnv("VECTOR_SEARCH_URL", "http://vector-search:9030"),
		VectorSearchTimeout: getEnvInt("VECTOR_SEARCH_TIMEOUT", 10),
		SearchTopK:          getEnvInt("SEARCH_TOP_K", 6),

		GenAIURL:       getEnv("GENAI_URL", "http://genai-gateway:11434"),
		GenAIModel:     getEnv("GENAI_MODEL", "gemini-2.0-flash"),
		GenAITimeout:   getEnvInt("GENAI_TIMEOUT", 60),
		InsightTimeout: getEnvInt("INSIGHT_TIMEOUT", 20),
		InsightRPS:     getEnvFloat("INSIGHT_RPS", 8),
		InsightBurst:   getEnvInt("INSIGHT_BURST", 16),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "all-mpnet-base-v2"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 768),

		JWTSecret:   getSecret("JWT_SECRET", "JWT_SECRET_FILE", "dev-secret"),
		JWTIssuer:   getEnv("JWT_ISSUER", "elinity-auth"),
		JWTAudience: getEnv("JWT_AUDIENCE", "match-orchestrator"),

		WorkerEnabled:      getEnvBool("INDEX_WORKER_ENABLED", true),
		WorkerPollInterval: getEnvInt("INDEX_WORKER_POLL_SECONDS", 30),
		WorkerBatchSize:    getEnvInt("INDEX_WORKER_BATCH_SIZE", 10),

		OTelEnabled: getEnvBool("OTEL_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret reads envKey directly, then falls back to the file named by
// fileEnvKey (container secret mounts), then to the default.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
