package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/storage"
)

func newDocRepo(t *testing.T) DocumentRepository {
	t.Helper()
	return NewDocumentRepository(storage.NewMemoryStore(), slog.New(slog.DiscardHandler))
}

func seedDoc(t *testing.T, repo DocumentRepository, doc entity.ProcessedDocument) *entity.ProcessedDocument {
	t.Helper()
	saved, err := repo.Append(context.Background(), doc)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return saved
}

func TestDocumentAppendDefaults(t *testing.T) {
	repo := newDocRepo(t)
	doc := seedDoc(t, repo, entity.ProcessedDocument{
		Source:           constants.SourceFileUpload,
		OriginalFilename: "order.pdf",
		UserID:           "u1",
	})

	if doc.ID == "" {
		t.Error("id must be assigned")
	}
	if doc.Status != constants.DocStatusProcessed {
		t.Errorf("default status: got %q", doc.Status)
	}
	if doc.ProcessedDate.IsZero() {
		t.Error("processed date must be set")
	}
}

func TestDocumentListNewestFirst(t *testing.T) {
	repo := newDocRepo(t)
	first := seedDoc(t, repo, entity.ProcessedDocument{OriginalFilename: "a.pdf", UserID: "u1"})
	second := seedDoc(t, repo, entity.ProcessedDocument{OriginalFilename: "b.pdf", UserID: "u1"})

	list, err := repo.List(context.Background(), entity.DocumentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d documents", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestDocumentListFiltersAreAnded(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()
	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	match := seedDoc(t, repo, entity.ProcessedDocument{
		Source: constants.SourceImapEmail, TemplateID: "t1", UserID: "u1", ProcessedDate: jan,
	})
	seedDoc(t, repo, entity.ProcessedDocument{
		Source: constants.SourceFileUpload, TemplateID: "t1", UserID: "u1", ProcessedDate: jan,
	})
	seedDoc(t, repo, entity.ProcessedDocument{
		Source: constants.SourceImapEmail, TemplateID: "t2", UserID: "u1", ProcessedDate: jan,
	})
	seedDoc(t, repo, entity.ProcessedDocument{
		Source: constants.SourceImapEmail, TemplateID: "t1", UserID: "u1", ProcessedDate: feb,
	})

	list, err := repo.List(ctx, entity.DocumentFilter{
		Source:     constants.SourceImapEmail,
		TemplateID: "t1",
		StartDate:  "2026-01-01",
		EndDate:    "2026-02-01",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != match.ID {
		t.Errorf("expected only the january imap t1 document, got %d", len(list))
	}
}

func TestDocumentDateFilterIsLexical(t *testing.T) {
	repo := newDocRepo(t)
	day := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	doc := seedDoc(t, repo, entity.ProcessedDocument{UserID: "u1", ProcessedDate: day})

	// A bare day prefix bounds the whole day from below.
	list, err := repo.List(context.Background(), entity.DocumentFilter{StartDate: "2026-03-10"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != doc.ID {
		t.Errorf("start-of-day bound should include the document")
	}

	list, err = repo.List(context.Background(), entity.DocumentFilter{EndDate: "2026-03-10"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("a bare day prefix as end bound excludes that day's timestamps")
	}
}

func TestDocumentCorrectionsSurviveReExtraction(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()
	doc := seedDoc(t, repo, entity.ProcessedDocument{
		UserID:        "u1",
		ExtractedData: map[string]any{"OrderNumber": "41"},
	})

	corrected, err := repo.ApplyCorrections(ctx, doc.ID, map[string]any{"OrderNumber": "42"})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corrected.Status != constants.DocStatusCorrected {
		t.Errorf("status after correction: %q", corrected.Status)
	}
	if corrected.ExtractedData["OrderNumber"] != "41" {
		t.Error("original extraction must stay untouched under the overlay")
	}
	if corrected.EffectiveData()["OrderNumber"] != "42" {
		t.Error("effective data must prefer the correction")
	}

	rerun, err := repo.ReplaceExtraction(ctx, doc.ID, map[string]any{"OrderNumber": "43"}, "new text")
	if err != nil {
		t.Fatalf("reextract: %v", err)
	}
	if rerun.Status != constants.DocStatusCorrected {
		t.Errorf("corrected status must survive re-extraction, got %q", rerun.Status)
	}
	if rerun.EffectiveData()["OrderNumber"] != "42" {
		t.Error("corrections must survive re-extraction")
	}
	if rerun.ExtractedData["OrderNumber"] != "43" {
		t.Error("machine extraction must be replaced")
	}
}

func TestDocumentRecordExport(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()
	processed := seedDoc(t, repo, entity.ProcessedDocument{UserID: "u1"})
	corrected := seedDoc(t, repo, entity.ProcessedDocument{UserID: "u1"})
	if _, err := repo.ApplyCorrections(ctx, corrected.ID, map[string]any{"A": "1"}); err != nil {
		t.Fatalf("correct: %v", err)
	}

	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.RecordExport(ctx, []string{processed.ID, corrected.ID, "missing"}, at); err != nil {
		t.Fatalf("record export: %v", err)
	}

	got, _ := repo.Get(ctx, processed.ID)
	if got.Status != constants.DocStatusExported {
		t.Errorf("processed document should flip to exported, got %q", got.Status)
	}
	if got.ExportCount != 1 || got.LastExportedDate == nil || !got.LastExportedDate.Equal(at) {
		t.Errorf("export bookkeeping: count=%d last=%v", got.ExportCount, got.LastExportedDate)
	}

	got, _ = repo.Get(ctx, corrected.ID)
	if got.Status != constants.DocStatusCorrected {
		t.Errorf("corrected document keeps its status, got %q", got.Status)
	}
	if got.ExportCount != 1 {
		t.Errorf("corrected document still counts the export, got %d", got.ExportCount)
	}
}

func TestDocumentDeleteBatch(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()
	a := seedDoc(t, repo, entity.ProcessedDocument{UserID: "u1", PdfStorageKey: "processed_pdfs.u1.a.pdf"})
	b := seedDoc(t, repo, entity.ProcessedDocument{UserID: "u1"})

	n, err := repo.DeleteBatch(ctx, []string{a.ID, "missing"})
	if err != nil {
		t.Fatalf("delete batch: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d", n)
	}
	if _, err := repo.Get(ctx, a.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("deleted document still readable: %v", err)
	}
	if _, err := repo.Get(ctx, b.ID); err != nil {
		t.Errorf("unrelated document lost: %v", err)
	}

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("delete missing: want ErrNotFound, got %v", err)
	}
}
