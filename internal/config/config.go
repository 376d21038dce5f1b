package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for readiness-engine
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Catalog    CatalogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	GenAI      GenAIConfig
	Ingestion  IngestionConfig
	Assessment AssessmentConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	MaxUploadBytes int64
	DebugEndpoints bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
}

// CatalogConfig points at the YAML seed catalog
type CatalogConfig struct {
	Dir string
}

// DatabaseConfig holds PostgreSQL search index configuration
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
}

// RedisConfig holds issued-scenario cache configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds result event configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GenAIConfig holds generation collaborator configuration
type GenAIConfig struct {
	APIKey string
	Model  string
}

// IngestionConfig holds scheduled ingestion sources
type IngestionConfig struct {
	SQLDSN         string
	S3Bucket       string
	S3ScenariosKey string
	S3ResourcesKey string
	Interval       time.Duration
}

// AssessmentConfig holds gap thresholds per scoring path
type AssessmentConfig struct {
	HeuristicThreshold int
	AssistedThreshold  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8000),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			DebugEndpoints: getEnvAsBool("DEBUG_ENDPOINTS", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Dir: getEnv("CATALOG_DIR", "./catalog"),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", "./migrations"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("ISSUED_SCENARIO_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "simulation-results"),
		},
		GenAI: GenAIConfig{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
			Model:  getEnv("GENAI_MODEL", "gemini-1.5-flash"),
		},
		Ingestion: IngestionConfig{
			SQLDSN:         getEnv("INGEST_SQL_DSN", ""),
			S3Bucket:       getEnv("INGEST_S3_BUCKET", ""),
			S3ScenariosKey: getEnv("INGEST_S3_SCENARIOS_KEY", ""),
			S3ResourcesKey: getEnv("INGEST_S3_RESOURCES_KEY", ""),
			Interval:       getEnvAsDuration("INGEST_INTERVAL", 5*time.Minute),
		},
		Assessment: AssessmentConfig{
			HeuristicThreshold: getEnvAsInt("HEURISTIC_GAP_THRESHOLD", 20),
			AssistedThreshold:  getEnvAsInt("ASSISTED_GAP_THRESHOLD", 18),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload bytes: %d", c.Server.MaxUploadBytes)
	}

	for name, v := range map[string]int{
		"heuristic": c.Assessment.HeuristicThreshold,
		"assisted":  c.Assessment.AssistedThreshold,
	} {
		if v < 1 || v > 25 {
			return fmt.Errorf("invalid %s gap threshold: %d (must be 1-25)", name, v)
		}
	}

	if c.Ingestion.S3Bucket != "" && c.Ingestion.S3ScenariosKey == "" && c.Ingestion.S3ResourcesKey == "" {
		return fmt.Errorf("S3 ingestion bucket set without any object key")
	}

	if c.Ingestion.Interval <= 0 {
		return fmt.Errorf("invalid ingestion interval: %s", c.Ingestion.Interval)
	}

	return nil
}

// SlogLevel maps the configured level name to a slog level
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
