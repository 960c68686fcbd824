package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
)

// Extractor drives one prompt/response cycle per document and maps the
// model's JSON back onto the requested fields.
type Extractor struct {
	completer Completer
	logger    *slog.Logger
}

func NewExtractor(completer Completer, logger *slog.Logger) *Extractor {
	return &Extractor{
		completer: completer,
		logger:    logger,
	}
}

// Extract sends the document text to the model, with tpl optionally pinning
// the output keys. Returns ErrModelUnavailable when the collaborator fails
// and ErrMalformedModelOutput when the response is not a JSON object; the
// caller decides whether either aborts the batch.
func (e *Extractor) Extract(ctx context.Context, tpl *entity.PdfTemplate, rawText string) (map[string]any, error) {
	rid := uuid.New().String()
	start := time.Now()

	templateID := ""
	if tpl != nil {
		templateID = tpl.ID
	}
	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"template_id", templateID,
		"text_len", len(rawText),
	)

	prompt := BuildExtractionPrompt(tpl, rawText)
	content, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		e.logger.Error("llm.extract.complete_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if errors.Is(err, common.ErrModelUnavailable) {
			return nil, err
		}
		return nil, common.WrapError(common.ErrModelUnavailable, err.Error())
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		e.logger.Error("llm.extract.parse_error",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.WrapError(common.ErrMalformedModelOutput, err.Error())
	}

	var result map[string]any
	if tpl != nil && len(tpl.TargetFields) > 0 {
		result = MapTemplateFields(tpl, parsed)
	} else {
		result = FlattenGeneric(parsed)
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"template_id", templateID,
		"fields", len(result),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
