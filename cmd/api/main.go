package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storyloom/storyloom/internal/config"
	"github.com/storyloom/storyloom/internal/handlers"
	"github.com/storyloom/storyloom/internal/logger"
	"github.com/storyloom/storyloom/internal/middleware"
	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/internal/worker"
)

func main() {
	// A missing .env is fine; the environment itself may be configured.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Storyloom API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.Provider,
		"data_dir", cfg.DataDir)

	var llmService services.LLMService
	switch cfg.Provider {
	case "llama":
		if cfg.LlamaAPIKey == "" {
			log.Error("Llama API key is required when using llama provider")
			os.Exit(1)
		}
		llmService = services.NewLlamaService(cfg.LlamaAPIKey, cfg.ModelName, log)
		log.Info("Using Llama API provider")
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case "ollama":
		llmService = services.NewOllamaService(cfg.OllamaBaseURL, cfg.ModelName, log)
		log.Info("Using Ollama LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.Provider, "supported", []string{"llama", "anthropic", "ollama"})
		os.Exit(1)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	store := storage.NewFileStorage(cfg.DataDir, log)
	if err := store.Ping(initCtx); err != nil {
		log.Error("Failed to open data directory", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	var sessions storage.SessionStore
	if cfg.RedisAddr != "" {
		redisSessions := storage.NewRedisSessionStore(cfg.RedisAddr, log)
		if err := redisSessions.WaitForConnection(initCtx); err != nil {
			log.Error("Failed to connect to Redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		sessions = redisSessions
		log.Info("Using Redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = storage.NewMemorySessionStore()
		log.Info("Using in-memory session store")
	}

	processor := worker.NewTurnProcessor(store, sessions, llmService, cfg.AnalyzeActions, log)
	builder := services.NewCommandGraphBuilder(cfg.GraphBuilderCommand, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, sessions, log))
	mux.Handle("/v1/chat", handlers.NewChatHandler(processor, log))
	mux.Handle("/v1/world", handlers.NewWorldHandler(store, log))
	mux.Handle("/v1/history", handlers.NewHistoryHandler(store, sessions, log))

	charactersHandler := handlers.NewCharactersHandler(store, log)
	mux.Handle("/v1/characters", charactersHandler)
	mux.Handle("/v1/characters/", charactersHandler)

	mux.Handle("/v1/setup", handlers.NewSetupHandler(store, log))
	mux.Handle("/v1/book", handlers.NewBookHandler(cfg.DataDir, builderOrNil(builder), log))
	mux.Handle("/v1/progress", handlers.NewProgressHandler(store, log))
	mux.Handle("/v1/endings", handlers.NewEndingsHandler(store, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := sessions.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// builderOrNil keeps the untyped nil out of the handler's interface field.
func builderOrNil(b *services.CommandGraphBuilder) services.GraphBuilder {
	if b == nil {
		return nil
	}
	return b
}
