package common

import (
	"os"
	"strconv"
	"time"

	"github.com/reamshq/statement-parser/constants"
)

// Config holds all application configuration. It is constructed once in main
// and injected everywhere; there is no package-level singleton.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Upload   UploadConfig
	PDF      PDFConfig
	LLM      LLMConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string
}

// UploadConfig bounds statement file uploads.
type UploadConfig struct {
	MaxFileSizeMB int
}

// PDFConfig configures the external PDF tooling.
type PDFConfig struct {
	Pdftotext string
	Pdftoppm  string
	DPI       int
	MaxPages  int
}

// LLMConfig holds provider credentials and tuning shared by the adapters.
type LLMConfig struct {
	Provider     constants.Provider
	Model        string
	Temperature  float32
	MaxFollowUps int
	Timeout      time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	provider, _ := constants.ParseProvider(getEnv("LLM_PROVIDER", "openai"))
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8000"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", constants.MaxFileSizeMBDefault),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:       getEnvAsInt("PDF_DPI", 200),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 20),
		},
		LLM: LLMConfig{
			Provider:      provider,
			Model:         getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			MaxFollowUps:  getEnvAsInt("LLM_MAX_FOLLOWUPS", 3),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		},
	}
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return &ValidationError{Field: "DB_URL", Message: "is required"}
	}
	if c.Server.Addr == "" {
		return &ValidationError{Field: "HTTP_ADDR", Message: "is required"}
	}
	if c.LLM.Provider == constants.ProviderOpenAI && c.LLM.OpenAIAPIKey == "" {
		return &ValidationError{Field: "OPENAI_API_KEY", Message: "is required"}
	}
	if c.LLM.Provider == constants.ProviderGemini && c.LLM.GeminiAPIKey == "" {
		return &ValidationError{Field: "GEMINI_API_KEY", Message: "is required"}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
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
