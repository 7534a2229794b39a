package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// RelayConfig holds configuration for the relay service.
type RelayConfig struct {
	// Server
	Port string

	// Upstream (OpenRouter)
	APIKey         string
	APIMethod      string // "direct" or "wrapped" ("openai" is accepted as an alias)
	BaseURL        string
	DefaultModel   string
	TimeoutSeconds int

	// Attribution headers sent upstream
	AppURL   string
	AppTitle string
}

// BotConfig holds configuration for the Telegram front-end.
type BotConfig struct {
	Token        string
	APIURL       string
	DefaultModel string
	PollTimeout  int // long-poll timeout in seconds
}

// LoadRelay reads relay configuration from environment variables. The API key
// is deliberately not required here: its absence is surfaced per request as a
// misconfiguration error without touching the network.
func LoadRelay() *RelayConfig {
	// Load .env file if it exists
	godotenv.Load()

	return &RelayConfig{
		Port:           getEnvOrDefault("PORT", "8000"),
		APIKey:         os.Getenv("OPENROUTER_API_KEY"),
		APIMethod:      getEnvOrDefault("OPENROUTER_API_METHOD", "direct"),
		BaseURL:        getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		DefaultModel:   getEnvOrDefault("DEFAULT_MODEL", "openai/gpt-3.5-turbo"),
		TimeoutSeconds: getEnvAsIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 120),
		AppURL:         getEnvOrDefault("APP_URL", "http://localhost:8000"),
		AppTitle:       getEnvOrDefault("APP_TITLE", "Personal Companion Bot"),
	}
}

// LoadBot reads Telegram front-end configuration. A missing bot token is a
// fatal startup condition.
func LoadBot() (*BotConfig, error) {
	godotenv.Load()

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	return &BotConfig{
		Token:        token,
		APIURL:       getEnvOrDefault("API_URL", "http://localhost:8000"),
		DefaultModel: getEnvOrDefault("DEFAULT_MODEL", "qwen/qwen-2.5-coder-32b-instruct:free"),
		PollTimeout:  getEnvAsIntOrDefault("TG_TIMEOUT", 30),
	}, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
