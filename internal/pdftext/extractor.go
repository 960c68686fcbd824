// Package pdftext extracts plain text from PDF bytes using the poppler
// pdftotext binary. Extraction is best effort; an empty result is not an
// error.
package pdftext

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Extractor is the text extraction collaborator.
type Extractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// Config for the pdftotext extractor.
type Config struct {
	Pdftotext string        // binary name or path, default "pdftotext"
	Timeout   time.Duration // per-document bound, default 30s
}

type pdftotextExtractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) Extractor {
	return newExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

func newExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) Extractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &pdftotextExtractor{cfg: cfg, runner: runner, logger: logger}
}

// ExtractText writes the bytes to a temp file and runs
// pdftotext -layout -enc UTF-8 -eol unix <path> -
func (e *pdftotextExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docparse-*.pdf")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("pdftext.tmp_remove_failed", "path", filepath.Base(path), "error", err)
		}
	}()
	if _, err := tmp.Write(pdf); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		e.logger.Error("pdftext.extract_failed", "error", err, "stderr_bytes", len(errb))
		return "", err
	}
	e.logger.Debug("pdftext.extract_ok", "pdf_bytes", len(pdf), "text_len", len(out))
	return string(out), nil
}
