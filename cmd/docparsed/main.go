package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/export"
	"github.com/digitool/docparse/internal/llm"
	"github.com/digitool/docparse/internal/llm/openai"
	"github.com/digitool/docparse/internal/mail"
	"github.com/digitool/docparse/internal/pdftext"
	"github.com/digitool/docparse/internal/pipeline"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/seed"
	"github.com/digitool/docparse/internal/server"
	"github.com/digitool/docparse/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	templates := repository.NewTemplateRepository(store, logger)
	emailTemplates := repository.NewEmailTemplateRepository(store, logger)
	documents := repository.NewDocumentRepository(store, logger)
	emailDocs := repository.NewEmailDocumentRepository(store, logger)

	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	extractor := llm.NewExtractor(completer, logger)

	textExtractor := pdftext.NewExtractor(pdftext.Config{
		Pdftotext: cfg.PdfText.PdftotextBin,
		Timeout:   cfg.PdfText.Timeout,
	}, logger)

	dialer := mail.NewImapDialer(logger)
	processor := pipeline.NewProcessor(documents, emailDocs, templates, emailTemplates, extractor, textExtractor, store, logger)
	scanner := pipeline.NewScanner(dialer, emailDocs, emailTemplates, templates, processor, extractor, textExtractor, store, logger)
	exporter := export.NewService(documents, templates, store, logger)

	if cfg.Seed.TemplatePath != "" {
		if err := seed.Load(ctx, cfg.Seed.TemplatePath, templates, emailTemplates, logger); err != nil {
			logger.Error("template seeding failed", "path", cfg.Seed.TemplatePath, "error", err)
			os.Exit(1)
		}
	}

	router := server.NewRouter(server.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		Templates:      templates,
		EmailTemplates: emailTemplates,
		Documents:      documents,
		EmailDocs:      emailDocs,
		Scanner:        scanner,
		Processor:      processor,
		Exporter:       exporter,
		Dialer:         dialer,
		Store:          store,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (storage.Store, error) {
	var inner storage.Store
	switch cfg.Storage.Backend {
	case "memory":
		inner = storage.NewMemoryStore()
	default:
		redisStore, err := storage.OpenRedis(ctx, cfg.Storage.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		inner = redisStore
	}
	return storage.NewValidated(inner)
}
