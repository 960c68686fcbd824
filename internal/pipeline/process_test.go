package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

type processFixture struct {
	store     storage.Store
	emailDocs repository.EmailDocumentRepository
	templates repository.TemplateRepository
	documents repository.DocumentRepository
	extractor *fakeExtractor
	processor *Processor
}

func newProcessFixture(t *testing.T, extractor *fakeExtractor) *processFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := storage.NewMemoryStore()
	emailDocs := repository.NewEmailDocumentRepository(store, logger)
	emailTemplates := repository.NewEmailTemplateRepository(store, logger)
	templates := repository.NewTemplateRepository(store, logger)
	documents := repository.NewDocumentRepository(store, logger)
	text := &fakeTextExtractor{text: "order 42 total 100"}
	processor := NewProcessor(documents, emailDocs, templates, emailTemplates, extractor, text, store, logger)
	return &processFixture{
		store:     store,
		emailDocs: emailDocs,
		templates: templates,
		documents: documents,
		extractor: extractor,
		processor: processor,
	}
}

func (fx *processFixture) seedEmailDoc(t *testing.T, ctx context.Context) *entity.EmailDocument {
	t.Helper()
	require.NoError(t, fx.store.PutBlob(ctx, "email_pdfs.doc1.0.order.pdf", []byte("%PDF-1.4")))
	doc := entity.EmailDocument{
		ID:       "doc1",
		UserID:   "u1",
		Source:   constants.SourceImapEmail,
		Sender:   "orders@acme.com",
		Subject:  "Order 42",
		PdfCount: 1,
		Status:   constants.EmailDocStatusSuggested,
		PDFs: []entity.AttachmentRef{
			{Index: 0, Filename: "order.pdf", StorageKey: "email_pdfs.doc1.0.order.pdf", Size: 8},
		},
	}
	require.NoError(t, fx.emailDocs.Put(ctx, doc))
	return &doc
}

func TestProcessEmailDocumentWithPdfTemplate(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(tpl *entity.PdfTemplate, _ string) (map[string]any, error) {
		require.NotNil(t, tpl)
		return map[string]any{"OrderNumber": "42"}, nil
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)

	tpl, err := fx.templates.Create(ctx, "Invoice", "", []entity.TargetField{{FieldName: "OrderNumber"}})
	require.NoError(t, err)

	doc, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{
		EmailDocID: "doc1",
		UserID:     "u1",
		UserEmail:  "user@example.com",
		TemplateID: tpl.ID,
	})
	require.NoError(t, err)
	require.Equal(t, constants.EmailDocStatusCompleted, doc.Status)
	require.NotNil(t, doc.ProcessedAt)
	require.NotEmpty(t, doc.UnifiedID)

	unified, err := fx.documents.Get(ctx, doc.UnifiedID)
	require.NoError(t, err)
	require.Equal(t, tpl.ID, unified.TemplateID)
	require.Equal(t, "Invoice", unified.TemplateName)
	require.Equal(t, "user@example.com", unified.UserEmail)
}

func TestProcessPreservesCorrectionsOnReRun(t *testing.T) {
	ctx := context.Background()
	run := 0
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		run++
		if run == 1 {
			return map[string]any{"OrderNumber": "42"}, nil
		}
		return map[string]any{"OrderNumber": "43"}, nil
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)

	doc, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "u1"})
	require.NoError(t, err)

	corrected, err := fx.documents.ApplyCorrections(ctx, doc.UnifiedID, map[string]any{"OrderNumber": "42-fixed"})
	require.NoError(t, err)
	require.Equal(t, constants.DocStatusCorrected, corrected.Status)

	// Re-run: extraction data updates, the overlay and status survive.
	doc, err = fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "u1"})
	require.NoError(t, err)

	unified, err := fx.documents.Get(ctx, doc.UnifiedID)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"OrderNumber": "43"}, unified.ExtractedData)
	require.Equal(t, map[string]any{"OrderNumber": "42-fixed"}, unified.Corrections)
	require.Equal(t, constants.DocStatusCorrected, unified.Status)
	require.Equal(t, map[string]any{"OrderNumber": "42-fixed"}, unified.EffectiveData())

	// Both runs updated the same record.
	all, err := fx.documents.List(ctx, entity.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestProcessMalformedOutputDegrades(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		return nil, common.WrapError(common.ErrMalformedModelOutput, "not json")
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)

	doc, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, constants.EmailDocStatusCompleted, doc.Status)

	unified, err := fx.documents.Get(ctx, doc.UnifiedID)
	require.NoError(t, err)
	require.Contains(t, unified.ExtractedData, "AI_Extraction_Error")
}

func TestProcessModelUnavailableFailsDocument(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		return nil, common.WrapError(common.ErrModelUnavailable, "down")
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)

	doc, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "u1"})
	require.ErrorIs(t, err, common.ErrModelUnavailable)
	require.NotNil(t, doc)
	require.Equal(t, constants.EmailDocStatusError, doc.Status)
	require.NotEmpty(t, doc.ErrorMessage)

	// Nothing reached the unified repository.
	all, listErr := fx.documents.List(ctx, entity.DocumentFilter{})
	require.NoError(t, listErr)
	require.Empty(t, all)
}

func TestProcessTextExtractionFailureFailsDocument(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		t.Fatal("extraction must not run when text extraction fails")
		return nil, nil
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)
	fx.processor.textExtractor = &fakeTextExtractor{err: errors.New("pdftotext crashed")}

	doc, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "u1"})
	require.Error(t, err)
	require.NotNil(t, doc)
	require.Equal(t, constants.EmailDocStatusError, doc.Status)
	require.Contains(t, doc.ErrorMessage, "pdftotext crashed")

	all, listErr := fx.documents.List(ctx, entity.DocumentFilter{})
	require.NoError(t, listErr)
	require.Empty(t, all)
}

func TestProcessRejectsForeignUser(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		return map[string]any{}, nil
	}}
	fx := newProcessFixture(t, extractor)
	fx.seedEmailDoc(t, ctx)

	_, err := fx.processor.ProcessEmailDocument(ctx, ProcessRequest{EmailDocID: "doc1", UserID: "someone-else"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestProcessUpload(t *testing.T) {
	ctx := context.Background()
	extractor := &fakeExtractor{fn: func(tpl *entity.PdfTemplate, _ string) (map[string]any, error) {
		return map[string]any{"TotalAmount": "100"}, nil
	}}
	fx := newProcessFixture(t, extractor)

	doc, err := fx.processor.ProcessUpload(ctx, UploadRequest{
		Filename:  "upload.pdf",
		Content:   []byte("%PDF-1.4"),
		UserID:    "u1",
		UserEmail: "user@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, constants.SourceFileUpload, doc.Source)
	require.Equal(t, constants.DocStatusProcessed, doc.Status)
	require.Equal(t, "processed_pdfs.u1.upload.pdf", doc.PdfStorageKey)

	data, ok, err := fx.store.GetBlob(ctx, doc.PdfStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, data)
}

func TestProcessUploadRejectsNonPdf(t *testing.T) {
	extractor := &fakeExtractor{fn: func(_ *entity.PdfTemplate, _ string) (map[string]any, error) {
		return nil, nil
	}}
	fx := newProcessFixture(t, extractor)

	_, err := fx.processor.ProcessUpload(context.Background(), UploadRequest{
		Filename: "notes.txt",
		Content:  []byte("hello"),
		UserID:   "u1",
	})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
