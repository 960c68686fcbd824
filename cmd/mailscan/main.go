// mailscan runs one mailbox scan for a single user and exits. Useful from
// cron or for debugging a user's IMAP configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/llm"
	"github.com/digitool/docparse/internal/llm/openai"
	"github.com/digitool/docparse/internal/mail"
	"github.com/digitool/docparse/internal/pdftext"
	"github.com/digitool/docparse/internal/pipeline"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id whose mailbox to scan")
	userEmail := flag.String("email", "", "user email recorded on processed documents")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall scan timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *userID == "" {
		logger.Error("missing -user flag")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var store storage.Store
	if cfg.Storage.Backend == "memory" {
		store = storage.NewMemoryStore()
	} else {
		redisStore, err := storage.OpenRedis(ctx, cfg.Storage.RedisURL, logger)
		if err != nil {
			logger.Error("failed to open redis", "error", err)
			os.Exit(1)
		}
		store = redisStore
	}
	validated, err := storage.NewValidated(store)
	if err != nil {
		logger.Error("failed to compile record schemas", "error", err)
		os.Exit(1)
	}

	templates := repository.NewTemplateRepository(validated, logger)
	emailTemplates := repository.NewEmailTemplateRepository(validated, logger)
	documents := repository.NewDocumentRepository(validated, logger)
	emailDocs := repository.NewEmailDocumentRepository(validated, logger)

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
	processor := pipeline.NewProcessor(documents, emailDocs, templates, emailTemplates, extractor, textExtractor, validated, logger)
	scanner := pipeline.NewScanner(dialer, emailDocs, emailTemplates, templates, processor, extractor, textExtractor, validated, logger)

	result, err := scanner.Scan(ctx, *userID, *userEmail)
	if err != nil {
		logger.Error("scan failed", "user_id", *userID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", result.Message)
	fmt.Printf("new: %d, processed: %d, errors: %d\n", result.NewEmails, result.Processed, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
