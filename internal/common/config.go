package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Gemini    ProviderConfig
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Raster    RasterConfig
	History   HistoryConfig
	Output    OutputConfig
	Prompt    string
	LogLevel  string
}

// ProviderConfig holds per-provider credentials and call parameters.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	PopplerPath string // directory containing pdftoppm; empty means use PATH
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	DPI         int
	MaxPages    int // 0 = no limit
}

// HistoryConfig holds the run-history store settings.
type HistoryConfig struct {
	Path     string
	Disabled bool
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Dir string
}

// DefaultPrompt is the extraction prompt used when --prompt is not given.
const DefaultPrompt = "Extract all text content from this document. " +
	"Preserve formatting like line breaks where possible. Provide only the extracted text."

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Gemini: ProviderConfig{
			APIKey:      getEnv("GOOGLE_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature: getEnvAsFloat32("MTEXT_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("MTEXT_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("MTEXT_PROVIDER_TIMEOUT", 90*time.Second),
		},
		OpenAI: ProviderConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			Temperature: getEnvAsFloat32("MTEXT_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("MTEXT_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("MTEXT_PROVIDER_TIMEOUT", 90*time.Second),
		},
		Anthropic: ProviderConfig{
			APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:     getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:       getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			Temperature: getEnvAsFloat32("MTEXT_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("MTEXT_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("MTEXT_PROVIDER_TIMEOUT", 90*time.Second),
		},
		Raster: RasterConfig{
			PopplerPath: getEnv("POPPLER_PATH", ""),
			DPI:         getEnvAsInt("MTEXT_DPI", 150),
			MaxPages:    getEnvAsInt("MTEXT_MAX_PAGES", 0),
		},
		History: HistoryConfig{
			Path: getEnv("MTEXT_HISTORY_DB", defaultHistoryPath()),
		},
		Output: OutputConfig{
			Dir: getEnv("MTEXT_OUTPUT_DIR", "."),
		},
		Prompt:   getEnv("MTEXT_PROMPT", DefaultPrompt),
		LogLevel: getEnv("MTEXT_LOG_LEVEL", "info"),
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mtext", "history.db")
	}
	return filepath.Join(home, ".mtext", "history.db")
}

// Helper functions for environment variable parsing
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
