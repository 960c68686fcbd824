package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/llm"
	"github.com/digitool/docparse/internal/pdftext"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

// FieldExtractor is the AI extraction collaborator; llm.Extractor is the
// production implementation.
type FieldExtractor interface {
	Extract(ctx context.Context, tpl *entity.PdfTemplate, rawText string) (map[string]any, error)
}

// Processor runs targeted extraction: it turns a stored PDF plus an optional
// template into a finished record in the unified repository, driving the
// scanned document's lifecycle along the way.
type Processor struct {
	docs           repository.DocumentRepository
	emailDocs      repository.EmailDocumentRepository
	pdfTemplates   repository.TemplateRepository
	emailTemplates repository.EmailTemplateRepository
	extractor      FieldExtractor
	textExtractor  pdftext.Extractor
	store          storage.Store
	logger         *slog.Logger
	now            func() time.Time
}

func NewProcessor(
	docs repository.DocumentRepository,
	emailDocs repository.EmailDocumentRepository,
	pdfTemplates repository.TemplateRepository,
	emailTemplates repository.EmailTemplateRepository,
	extractor FieldExtractor,
	textExtractor pdftext.Extractor,
	store storage.Store,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		docs:           docs,
		emailDocs:      emailDocs,
		pdfTemplates:   pdfTemplates,
		emailTemplates: emailTemplates,
		extractor:      extractor,
		textExtractor:  textExtractor,
		store:          store,
		logger:         logger,
		now:            time.Now,
	}
}

// ProcessRequest names the scanned document to extract and, optionally, the
// template driving the prompt. EmailTemplateID records template usage but
// does not shape the prompt; prompts are template-specific only for PDF
// templates.
type ProcessRequest struct {
	EmailDocID      string
	UserID          string
	UserEmail       string
	TemplateID      string
	EmailTemplateID string
}

// ProcessEmailDocument extracts the first PDF of a scanned email document,
// transitioning it processing -> completed or processing -> error. A
// re-run updates the linked unified record in place; user corrections
// survive.
func (p *Processor) ProcessEmailDocument(ctx context.Context, req ProcessRequest) (*entity.EmailDocument, error) {
	doc, err := p.emailDocs.Get(ctx, req.EmailDocID)
	if err != nil {
		return nil, err
	}
	if req.UserID != "" && doc.UserID != req.UserID {
		return nil, common.WrapError(common.ErrNotFound, "email document "+req.EmailDocID)
	}
	if len(doc.PDFs) == 0 {
		return nil, common.WrapError(common.ErrInvalidInput, "email document has no PDF attachments")
	}

	if _, err := p.emailDocs.SetStatus(ctx, doc.ID, constants.EmailDocStatusProcessing, ""); err != nil {
		return nil, err
	}

	var tpl *entity.PdfTemplate
	if req.TemplateID != "" {
		tpl, err = p.pdfTemplates.Get(ctx, req.TemplateID)
		if err != nil {
			return p.failProcessing(ctx, doc, err)
		}
	}

	// Only the first attachment participates in extraction; the rest stay
	// stored and enumerable.
	first := doc.PDFs[0]
	pdf, ok, err := p.store.GetBlob(ctx, first.StorageKey)
	if err != nil {
		return p.failProcessing(ctx, doc, err)
	}
	if !ok {
		return p.failProcessing(ctx, doc, common.WrapError(common.ErrNotFound, "blob "+first.StorageKey))
	}

	rawText, err := p.textExtractor.ExtractText(ctx, pdf)
	if err != nil {
		return p.failProcessing(ctx, doc, common.WrapError(err, "extract text"))
	}

	extracted, err := p.extractor.Extract(ctx, tpl, rawText)
	if err != nil {
		if !errors.Is(err, common.ErrMalformedModelOutput) {
			return p.failProcessing(ctx, doc, err)
		}
		// Degrade rather than failing the document outright.
		extracted = llm.ErrorPlaceholder()
	}

	templateName := ""
	templateID := req.TemplateID
	if tpl != nil {
		templateName = tpl.Name
	}
	if req.EmailTemplateID != "" {
		if err := p.emailTemplates.IncrementUsage(ctx, req.EmailTemplateID); err != nil {
			p.logger.Warn("process.usage_increment_failed", "template_id", req.EmailTemplateID, "error", err)
		}
		if templateID == "" {
			if emailTpl, err := p.emailTemplates.Get(ctx, req.EmailTemplateID); err == nil {
				templateID = emailTpl.ID
				templateName = emailTpl.Name
			}
		}
	}

	if doc.UnifiedID != "" {
		if _, err := p.docs.ReplaceExtraction(ctx, doc.UnifiedID, extracted, rawText); err != nil {
			return p.failProcessing(ctx, doc, err)
		}
	} else {
		stored, err := p.docs.Append(ctx, entity.ProcessedDocument{
			Source:            doc.Source,
			OriginalFilename:  first.Filename,
			TemplateID:        templateID,
			TemplateName:      templateName,
			ExtractedData:     extracted,
			RawText:           rawText,
			UserID:            doc.UserID,
			UserEmail:         req.UserEmail,
			EmailSender:       doc.Sender,
			EmailSubject:      doc.Subject,
			EmailReceivedDate: doc.OriginalDate,
			EmailAddress:      doc.EmailAddress,
			PdfStorageKey:     first.StorageKey,
		})
		if err != nil {
			return p.failProcessing(ctx, doc, err)
		}
		doc.UnifiedID = stored.ID
	}

	now := p.now().UTC()
	doc.Status = constants.EmailDocStatusCompleted
	doc.ErrorMessage = ""
	doc.ProcessedAt = &now
	if err := p.emailDocs.Put(ctx, *doc); err != nil {
		return nil, err
	}
	p.logger.Info("process.completed",
		"email_doc_id", doc.ID, "unified_id", doc.UnifiedID, "template_id", templateID)
	return doc, nil
}

func (p *Processor) failProcessing(ctx context.Context, doc *entity.EmailDocument, cause error) (*entity.EmailDocument, error) {
	p.logger.Error("process.failed", "email_doc_id", doc.ID, "error", cause)
	updated, err := p.emailDocs.SetStatus(ctx, doc.ID, constants.EmailDocStatusError, cause.Error())
	if err != nil {
		return nil, err
	}
	return updated, cause
}

// UploadRequest is a direct PDF upload processed immediately.
type UploadRequest struct {
	Filename   string
	Content    []byte
	TemplateID string
	UserID     string
	UserEmail  string
}

// ProcessUpload extracts an uploaded PDF and appends the result to the
// unified repository under the file_upload source.
func (p *Processor) ProcessUpload(ctx context.Context, req UploadRequest) (*entity.ProcessedDocument, error) {
	if len(req.Content) == 0 {
		return nil, common.WrapError(common.ErrInvalidInput, "empty file")
	}
	if !constants.IsPdfFilename(req.Filename) {
		return nil, common.WrapError(common.ErrInvalidInput, "only PDF files are supported")
	}

	var tpl *entity.PdfTemplate
	var err error
	if req.TemplateID != "" {
		tpl, err = p.pdfTemplates.Get(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	rawText, err := p.textExtractor.ExtractText(ctx, req.Content)
	if err != nil {
		return nil, common.WrapError(err, "extract text")
	}

	extracted, err := p.extractor.Extract(ctx, tpl, rawText)
	if err != nil {
		if !errors.Is(err, common.ErrMalformedModelOutput) {
			return nil, err
		}
		extracted = llm.ErrorPlaceholder()
	}

	storageKey := fmt.Sprintf("processed_pdfs.%s.%s",
		storage.SanitizeKeyPart(req.UserID), storage.SanitizeKeyPart(req.Filename))
	if err := p.store.PutBlob(ctx, storageKey, req.Content); err != nil {
		return nil, err
	}

	templateName := ""
	if tpl != nil {
		templateName = tpl.Name
	}
	stored, err := p.docs.Append(ctx, entity.ProcessedDocument{
		Source:           constants.SourceFileUpload,
		OriginalFilename: req.Filename,
		TemplateID:       req.TemplateID,
		TemplateName:     templateName,
		ExtractedData:    extracted,
		RawText:          rawText,
		UserID:           req.UserID,
		UserEmail:        req.UserEmail,
		PdfStorageKey:    storageKey,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("upload.processed",
		"document_id", stored.ID, "filename", req.Filename, "template_id", req.TemplateID)
	return stored, nil
}
