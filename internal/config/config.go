package config

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// LLM provider: "llama", "anthropic" or "ollama".
	Provider        string
	LlamaAPIKey     string
	AnthropicAPIKey string
	OllamaBaseURL   string
	ModelName       string

	// DataDir holds the knowledge graph, world document, history archive
	// and uploaded books.
	DataDir string

	// RedisAddr enables the Redis session store; empty means in-memory.
	RedisAddr string

	// AnalyzeActions enables keyword consequence analysis of user input.
	AnalyzeActions bool

	// GraphBuilderCommand is run against uploaded books; empty disables
	// graph builds.
	GraphBuilderCommand string
}

func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Provider:            strings.ToLower(getEnv("LLM_PROVIDER", "llama")),
		LlamaAPIKey:         getEnv("LLAMA_API_KEY", ""),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		ModelName:           getEnv("MODEL_NAME", ""),
		DataDir:             getEnv("DATA_DIR", "./knowledge_base"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		AnalyzeActions:      parseBool(getEnv("ANALYZE_ACTIONS", "false")),
		GraphBuilderCommand: getEnv("GRAPH_BUILDER_CMD", ""),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
