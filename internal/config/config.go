package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	MinIO    MinIOConfig
	LLM      LLMConfig
	Bedrock  BedrockConfig
	Query    QueryConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int

	DialTimeout time.Duration

	// CacheTTL is how long a generated envelope is reused for the same
	// dataset and prompt. Zero disables the cache.
	CacheTTL time.Duration

	DiagnosticsStream string
	DiagnosticsMaxLen int64
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type BedrockConfig struct {
	Enabled bool
	Region  string
	ModelID string
}

type QueryConfig struct {
	RowLimit         int
	SampleRows       int
	BlockConcurrency int
	Timeout          time.Duration
}

// Load reads configuration from the environment. Values in a .env file in
// the working directory are applied first without overriding real env vars.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 120)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "datasage"),
			Password: getEnv("DB_PASSWORD", "datasage"),
			Name:     getEnv("DB_NAME", "datasage"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Valkey: ValkeyConfig{
			Addr:              getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:          getEnv("VALKEY_PASSWORD", ""),
			DB:                getEnvInt("VALKEY_DB", 0),
			DialTimeout:       getEnvDuration("VALKEY_DIAL_TIMEOUT", 5*time.Second),
			CacheTTL:          getEnvDuration("VALKEY_CACHE_TTL", 10*time.Minute),
			DiagnosticsStream: getEnv("VALKEY_DIAGNOSTICS_STREAM", "datasage:render:diagnostics"),
			DiagnosticsMaxLen: int64(getEnvInt("VALKEY_DIAGNOSTICS_MAXLEN", 1000)),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "datasage"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "datasage123"),
			Bucket:    getEnv("MINIO_BUCKET", "datasage"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://router.huggingface.co/v1"),
			APIKey:      getEnv("LLM_API_KEY", os.Getenv("HUGGINGFACE_API_KEY")),
			Model:       getEnv("LLM_MODEL", "meta-llama/Llama-3.1-8B-Instruct:cerebras"),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1500),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Bedrock: BedrockConfig{
			Enabled: getEnvBool("BEDROCK_ENABLED", false),
			Region:  getEnv("BEDROCK_REGION", "us-east-1"),
			ModelID: getEnv("BEDROCK_MODEL_ID", "meta.llama3-1-8b-instruct-v1:0"),
		},
		Query: QueryConfig{
			RowLimit:         getEnvInt("QUERY_ROW_LIMIT", 500),
			SampleRows:       getEnvInt("QUERY_SAMPLE_ROWS", 5),
			BlockConcurrency: getEnvInt("QUERY_BLOCK_CONCURRENCY", 4),
			Timeout:          getEnvDuration("QUERY_TIMEOUT", 15*time.Second),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
