package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	LLM     LLMConfig
	PdfText PdfTextConfig
	Seed    SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// StorageConfig holds record/blob store settings. Backend is "redis" or
// "memory"; memory is for local development and tests only.
type StorageConfig struct {
	Backend  string
	RedisURL string
}

// LLMConfig holds completion collaborator settings.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// PdfTextConfig holds PDF text extraction settings.
type PdfTextConfig struct {
	PdftotextBin string
	Timeout      time.Duration
}

// SeedConfig points at an optional YAML file of templates loaded at startup.
type SeedConfig struct {
	TemplatePath string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "redis"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		PdfText: PdfTextConfig{
			PdftotextBin: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Timeout:      getEnvAsDuration("PDFTOTEXT_TIMEOUT", 30*time.Second),
		},
		Seed: SeedConfig{
			TemplatePath: getEnv("TEMPLATE_SEED_PATH", ""),
		},
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return WrapError(ErrInvalidInput, "OPENAI_API_KEY is required")
	}
	if c.Storage.Backend == "redis" && c.Storage.RedisURL == "" {
		return WrapError(ErrInvalidInput, "REDIS_URL is required")
	}
	if c.Server.Addr == "" {
		return WrapError(ErrInvalidInput, "HTTP_ADDR is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
