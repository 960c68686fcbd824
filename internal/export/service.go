// Package export renders selected processed documents into XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

const noTemplateName = "No template"

// Metadata columns preceding the per-field columns in every export.
var metadataColumns = []string{"Document ID", "Filename", "Processed Date", "Export Count", "Last Exported"}

// Service produces XLSX bytes for batches of documents sharing one template
// and stores each workbook for later download.
type Service struct {
	docs      repository.DocumentRepository
	templates repository.TemplateRepository
	store     storage.Store
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(docs repository.DocumentRepository, templates repository.TemplateRepository, store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		docs:      docs,
		templates: templates,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Result describes one finished export.
type Result struct {
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	DocumentCount int    `json:"document_count"`
	TemplateName  string `json:"template_name"`
}

// ExportBatch renders the selected documents into one workbook. All selected
// documents must share a template id; the check runs before any record is
// touched. Columns: fixed metadata, then the template's field names in
// alphabetical order, falling back to the sorted union of keys across the
// documents' effective data when the template declares no fields.
func (s *Service) ExportBatch(ctx context.Context, ids []string) (*Result, []byte, error) {
	start := time.Now()

	var selected []*entity.ProcessedDocument
	for _, id := range ids {
		doc, err := s.docs.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		selected = append(selected, doc)
	}
	if len(selected) == 0 {
		return nil, nil, common.WrapError(common.ErrNotFound, "no documents selected")
	}

	templateID := selected[0].TemplateID
	templateName := selected[0].TemplateName
	for _, doc := range selected[1:] {
		if doc.TemplateID != templateID {
			return nil, nil, common.WrapError(common.ErrMixedTemplates,
				fmt.Sprintf("documents mix templates %q and %q", templateID, doc.TemplateID))
		}
	}
	if templateName == "" {
		templateName = noTemplateName
	}

	fields := s.templateFields(ctx, templateID)
	if len(fields) == 0 {
		fields = unionOfKeys(selected)
	}
	sort.Strings(fields)

	data, err := renderWorkbook(templateName, fields, selected)
	if err != nil {
		return nil, nil, err
	}

	timestamp := s.now().Format("20060102_150405")
	safeName := sanitizeTemplateName(templateName)
	filename := fmt.Sprintf("export_%s_%s.xlsx", safeName, timestamp)
	if err := s.store.PutBlob(ctx, "exports."+filename, data); err != nil {
		return nil, nil, err
	}

	if err := s.docs.RecordExport(ctx, ids, s.now()); err != nil {
		return nil, nil, err
	}

	s.logger.Info("export.batch",
		"documents", len(selected), "template", templateName,
		"filename", filename, "bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds())
	return &Result{
		Message:       fmt.Sprintf("Successfully exported %d documents using template '%s'", len(selected), templateName),
		Filename:      filename,
		DocumentCount: len(selected),
		TemplateName:  templateName,
	}, data, nil
}

// GetExport returns a previously rendered workbook by filename.
func (s *Service) GetExport(ctx context.Context, filename string) ([]byte, error) {
	if !strings.HasPrefix(filename, "export_") || !strings.HasSuffix(filename, ".xlsx") {
		return nil, common.WrapError(common.ErrInvalidInput, "invalid export filename")
	}
	data, ok, err := s.store.GetBlob(ctx, "exports."+filename)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "export "+filename)
	}
	return data, nil
}

func (s *Service) templateFields(ctx context.Context, templateID string) []string {
	if templateID == "" {
		return nil
	}
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		s.logger.Warn("export.template_load_failed", "template_id", templateID, "error", err)
		return nil
	}
	var fields []string
	for _, f := range tpl.TargetFields {
		if f.FieldName != "" {
			fields = append(fields, f.FieldName)
		}
	}
	return fields
}

func unionOfKeys(docs []*entity.ProcessedDocument) []string {
	seen := make(map[string]bool)
	for _, doc := range docs {
		for key := range doc.EffectiveData() {
			seen[key] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for key := range seen {
		fields = append(fields, key)
	}
	return fields
}

func renderWorkbook(templateName string, fields []string, docs []*entity.ProcessedDocument) ([]byte, error) {
	f := excelize.NewFile()
	sheet := templateName
	if len(sheet) > 31 {
		sheet = sheet[:31] // xlsx sheet name limit
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := append(append([]string{}, metadataColumns...), fields...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, doc := range docs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, doc.ID)
		write(2, doc.OriginalFilename)
		write(3, doc.ProcessedDate.UTC().Format(time.RFC3339))
		write(4, doc.ExportCount)
		if doc.LastExportedDate != nil {
			write(5, doc.LastExportedDate.UTC().Format(time.RFC3339))
		} else {
			write(5, "")
		}

		data := doc.EffectiveData()
		for i, field := range fields {
			v, ok := data[field]
			if !ok || v == nil {
				write(6+i, "")
				continue
			}
			write(6+i, fmt.Sprintf("%v", v))
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeTemplateName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}
