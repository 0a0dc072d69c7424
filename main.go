package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	api "onebox-backend/cmd/api"
	emaildomain "onebox-backend/internal/email/domain"
	emailRepo "onebox-backend/internal/email/repository"
	emailUsecase "onebox-backend/internal/email/usecase"
	"onebox-backend/internal/imap"
	"onebox-backend/internal/notification"
	"onebox-backend/pkg/ai"
	"onebox-backend/pkg/chroma"
	"onebox-backend/pkg/config"
	"onebox-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&emaildomain.Email{}); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize repositories (dependency injection)
	emailRepository := emailRepo.NewEmailRepository(db)

	// Initialize AI gateway
	gateway, err := ai.NewGateway(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize AI gateway", "error", err)
		os.Exit(1)
	}
	logger.Info("AI gateway initialized", "provider", cfg.AIProvider)

	// Initialize Chroma vector store for reply context (optional)
	var vectorStore emailUsecase.VectorStore
	var contextWriter emailUsecase.ContextWriter
	if cfg.ChromaAPIKey != "" {
		chromaClient, err := chroma.NewClient(cfg, logger)
		if err != nil {
			logger.Warn("failed to initialize Chroma client, reply suggestions run without context", "error", err)
		} else {
			if err := chromaClient.SeedContext(context.Background(), cfg.RAGContext); err != nil {
				logger.Warn("failed to seed reply context", "error", err)
			}
			vectorStore = chromaClient
			contextWriter = chromaClient
		}
	} else {
		logger.Warn("CHROMA_API_KEY not set, reply suggestions run without context")
	}

	// Initialize notification fan-out
	notifier := notification.NewService(cfg.SlackWebhookURL, cfg.WebhookURL, logger)

	// Initialize use cases (dependency injection)
	suggester := emailUsecase.NewReplySuggester(vectorStore, gateway, logger)
	ingestUc := emailUsecase.NewIngestUsecase(emailRepository, gateway, suggester, notifier, logger)
	emailUc := emailUsecase.NewEmailUsecase(emailRepository, suggester, contextWriter, logger)

	// Start the IMAP connection manager
	manager := imap.NewManager(imap.ManagerConfig{
		Accounts:   cfg.IMAPAccounts(),
		Transport:  imap.NewDialer(cfg.DialTimeout, logger),
		Ingestor:   ingestUc,
		Retry:      imap.RetryPolicy{Delay: cfg.ReconnectDelay},
		SyncWindow: cfg.SyncWindow(),
	}, logger)
	manager.Initialize(context.Background())

	// Initialize HTTP handler
	handler := api.NewHandler(emailUc, manager)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		errCh <- handler.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", "error", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	manager.Disconnect()
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}
