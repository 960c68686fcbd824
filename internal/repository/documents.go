package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/storage"
)

const processedDocumentsKey = "processed_documents"

type DocumentRepository interface {
	Append(ctx context.Context, doc entity.ProcessedDocument) (*entity.ProcessedDocument, error)
	List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.ProcessedDocument, error)
	Get(ctx context.Context, id string) (*entity.ProcessedDocument, error)
	ApplyCorrections(ctx context.Context, id string, corrections map[string]any) (*entity.ProcessedDocument, error)
	ReplaceExtraction(ctx context.Context, id string, data map[string]any, rawText string) (*entity.ProcessedDocument, error)
	RecordExport(ctx context.Context, ids []string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) (int, error)
}

type documentRepository struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentRepository(store storage.Store, logger *slog.Logger) DocumentRepository {
	return &documentRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (r *documentRepository) load(ctx context.Context) ([]entity.ProcessedDocument, error) {
	var docs []entity.ProcessedDocument
	if _, err := storage.GetJSON(ctx, r.store, processedDocumentsKey, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) save(ctx context.Context, docs []entity.ProcessedDocument) error {
	if docs == nil {
		docs = []entity.ProcessedDocument{}
	}
	return storage.PutJSON(ctx, r.store, processedDocumentsKey, docs)
}

func (r *documentRepository) Append(ctx context.Context, doc entity.ProcessedDocument) (*entity.ProcessedDocument, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.ProcessedDate.IsZero() {
		doc.ProcessedDate = r.now().UTC()
	}
	if doc.Status == "" {
		doc.Status = constants.DocStatusProcessed
	}
	docs = append(docs, doc)
	if err := r.save(ctx, docs); err != nil {
		return nil, err
	}
	r.logger.Info("documents.append",
		"document_id", doc.ID, "source", doc.Source, "template_id", doc.TemplateID, "user_id", doc.UserID)
	return &doc, nil
}

// List returns documents matching every set predicate, newest first.
func (r *documentRepository) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.ProcessedDocument, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.ProcessedDocument, 0, len(docs))
	for i := range docs {
		if matchesFilter(&docs[i], filter) {
			result = append(result, &docs[i])
		}
	}
	// The record is append-ordered; newest last. Reverse for display order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func matchesFilter(d *entity.ProcessedDocument, f entity.DocumentFilter) bool {
	if f.Source != "" && d.Source != f.Source {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.TemplateID != "" && d.TemplateID != f.TemplateID {
		return false
	}
	if f.UserID != "" && d.UserID != f.UserID {
		return false
	}
	// Date bounds compare lexically against the RFC 3339 form, so a bare
	// "2026-01-15" prefix bound behaves like a day bound.
	processed := d.ProcessedDate.UTC().Format(time.RFC3339)
	if f.StartDate != "" && processed < f.StartDate {
		return false
	}
	if f.EndDate != "" && processed > f.EndDate {
		return false
	}
	return true
}

func (r *documentRepository) Get(ctx context.Context, id string) (*entity.ProcessedDocument, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, common.WrapError(common.ErrNotFound, "document "+id)
}

// ApplyCorrections stores a user-supplied overlay. The original extraction is
// kept untouched underneath it.
func (r *documentRepository) ApplyCorrections(ctx context.Context, id string, corrections map[string]any) (*entity.ProcessedDocument, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID != id {
			continue
		}
		docs[i].Corrections = corrections
		docs[i].Status = constants.DocStatusCorrected
		if err := r.save(ctx, docs); err != nil {
			return nil, err
		}
		r.logger.Info("documents.correct", "document_id", id, "fields", len(corrections))
		return &docs[i], nil
	}
	return nil, common.WrapError(common.ErrNotFound, "document "+id)
}

// ReplaceExtraction overwrites the machine-extracted data after a re-run.
// Corrections survive; a corrected document stays corrected.
func (r *documentRepository) ReplaceExtraction(ctx context.Context, id string, data map[string]any, rawText string) (*entity.ProcessedDocument, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID != id {
			continue
		}
		docs[i].ExtractedData = data
		if rawText != "" {
			docs[i].RawText = rawText
		}
		docs[i].ProcessedDate = r.now().UTC()
		if docs[i].Corrections == nil {
			docs[i].Status = constants.DocStatusProcessed
		}
		if err := r.save(ctx, docs); err != nil {
			return nil, err
		}
		r.logger.Info("documents.reextract", "document_id", id)
		return &docs[i], nil
	}
	return nil, common.WrapError(common.ErrNotFound, "document "+id)
}

// RecordExport marks the given documents exported. Unknown ids are skipped;
// the export itself already succeeded by the time this runs.
func (r *documentRepository) RecordExport(ctx context.Context, ids []string, at time.Time) error {
	docs, err := r.load(ctx)
	if err != nil {
		return err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	at = at.UTC()
	for i := range docs {
		if !wanted[docs[i].ID] {
			continue
		}
		// Corrected documents keep their status; only plain processed ones
		// flip to exported.
		if docs[i].Status == constants.DocStatusProcessed {
			docs[i].Status = constants.DocStatusExported
		}
		docs[i].ExportCount++
		t := at
		docs[i].LastExportedDate = &t
	}
	if err := r.save(ctx, docs); err != nil {
		return err
	}
	r.logger.Info("documents.record_export", "count", len(ids))
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteBatch(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return common.WrapError(common.ErrNotFound, "document "+id)
	}
	return nil
}

// DeleteBatch removes matching records and reports how many were removed.
// Stored PDF blobs are left behind; the store has no delete primitive.
func (r *documentRepository) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	docs, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := docs[:0]
	deleted := 0
	for _, d := range docs {
		if wanted[d.ID] {
			deleted++
			if d.PdfStorageKey != "" {
				r.logger.Info("documents.delete.orphan_blob", "document_id", d.ID, "storage_key", d.PdfStorageKey)
			}
			continue
		}
		kept = append(kept, d)
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := r.save(ctx, kept); err != nil {
		return 0, err
	}
	r.logger.Info("documents.delete", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}
