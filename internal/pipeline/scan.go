package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/mail"
	"github.com/digitool/docparse/internal/match"
	"github.com/digitool/docparse/internal/pdftext"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

// ScanResult reports one mailbox scan. Partial success is normal: NewEmails
// counts messages with PDF attachments found, Processed counts those whose
// pipeline finished without error.
type ScanResult struct {
	Message   string                  `json:"message"`
	NewEmails int                     `json:"new_emails_count"`
	Processed int                     `json:"processed_count"`
	Errors    []string                `json:"errors,omitempty"`
	Documents []*entity.EmailDocument `json:"documents,omitempty"`
}

// Scanner checks a user's mailbox for unread messages with PDF attachments
// and drives each through matching, reconciliation and, when confident
// enough, immediate extraction. Messages are handled strictly one at a time;
// a message is marked read only once its outcome is stored.
type Scanner struct {
	dialer         mail.Dialer
	emailDocs      repository.EmailDocumentRepository
	emailTemplates repository.EmailTemplateRepository
	pdfTemplates   repository.TemplateRepository
	processor      *Processor
	extractor      FieldExtractor
	textExtractor  pdftext.Extractor
	store          storage.Store
	logger         *slog.Logger
	now            func() time.Time
}

func NewScanner(
	dialer mail.Dialer,
	emailDocs repository.EmailDocumentRepository,
	emailTemplates repository.EmailTemplateRepository,
	pdfTemplates repository.TemplateRepository,
	processor *Processor,
	extractor FieldExtractor,
	textExtractor pdftext.Extractor,
	store storage.Store,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		dialer:         dialer,
		emailDocs:      emailDocs,
		emailTemplates: emailTemplates,
		pdfTemplates:   pdfTemplates,
		processor:      processor,
		extractor:      extractor,
		textExtractor:  textExtractor,
		store:          store,
		logger:         logger,
		now:            time.Now,
	}
}

// Scan connects to the user's configured mailbox and processes every unread
// message sequentially. Connection-level failures abort the scan; a failure
// on one message is recorded against that message only.
func (s *Scanner) Scan(ctx context.Context, userID, userEmail string) (*ScanResult, error) {
	cfg, err := s.emailDocs.GetMailboxConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	mbox, err := s.dialer.Dial(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Folder)
	if err != nil {
		s.recordScanStatus(ctx, userID, 0, err)
		return nil, err
	}
	defer func() {
		if err := mbox.Close(); err != nil {
			s.logger.Warn("scan.close_failed", "user_id", userID, "error", err)
		}
	}()

	ids, err := mbox.ListUnread()
	if err != nil {
		s.recordScanStatus(ctx, userID, 0, err)
		return nil, err
	}

	result := &ScanResult{}
	for _, id := range ids {
		doc, err := s.scanMessage(ctx, mbox, id, cfg, userID, userEmail)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("message %d: %v", id, err))
			s.logger.Error("scan.message_failed", "user_id", userID, "message_id", id, "error", err)
			continue
		}
		if doc == nil {
			continue // no PDF attachments
		}
		result.NewEmails++
		if doc.Status != constants.EmailDocStatusError {
			result.Processed++
		}
		result.Documents = append(result.Documents, doc)
	}

	s.recordScanStatus(ctx, userID, result.NewEmails, nil)
	result.Message = fmt.Sprintf("Processed %d emails with PDF attachments", result.NewEmails)
	s.logger.Info("scan.done",
		"user_id", userID, "unread", len(ids),
		"new_emails", result.NewEmails, "processed", result.Processed,
		"errors", len(result.Errors))
	return result, nil
}

// scanMessage fully handles one message: store attachments, record the
// document, match, reconcile, optionally auto-process, then mark read. A nil
// document with nil error means the message carried no PDFs.
func (s *Scanner) scanMessage(ctx context.Context, mbox mail.Mailbox, id uint32, cfg *entity.MailboxConfig, userID, userEmail string) (*entity.EmailDocument, error) {
	msg, err := mbox.Fetch(id)
	if err != nil {
		return nil, err
	}

	var pdfs []mail.Attachment
	for _, att := range msg.Attachments {
		if constants.IsPdfFilename(att.Filename) && len(att.Data) > 0 {
			pdfs = append(pdfs, att)
		}
	}
	if len(pdfs) == 0 {
		if err := mbox.MarkRead(id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	doc := &entity.EmailDocument{
		ID:           uuid.NewString(),
		UserID:       userID,
		Source:       constants.SourceImapEmail,
		Sender:       msg.Sender,
		Subject:      msg.Subject,
		ReceivedDate: s.now().UTC(),
		OriginalDate: msg.Date.Format(time.RFC3339),
		PdfCount:     len(pdfs),
		Status:       constants.EmailDocStatusNew,
		EmailAddress: cfg.Username,
		BodySnippet:  snippet(msg.BodyText, 500),
	}

	for i, att := range pdfs {
		key := fmt.Sprintf("email_pdfs.%s.%d.%s", doc.ID, i, storage.SanitizeKeyPart(att.Filename))
		if err := s.store.PutBlob(ctx, key, att.Data); err != nil {
			return nil, err
		}
		doc.PDFs = append(doc.PDFs, entity.AttachmentRef{
			Index:      i,
			Filename:   att.Filename,
			StorageKey: key,
			Size:       len(att.Data),
		})
	}
	if err := s.emailDocs.Put(ctx, *doc); err != nil {
		return nil, err
	}

	decision, decideErr := s.decide(ctx, doc, msg)
	if decideErr != nil {
		failed, err := s.emailDocs.SetStatus(ctx, doc.ID, constants.EmailDocStatusError, decideErr.Error())
		if err != nil {
			return nil, err
		}
		if err := mbox.MarkRead(id); err != nil {
			return nil, err
		}
		return failed, nil
	}

	doc.ProcessingType = decision.ProcessingType
	doc.SuggestedTemplateID = decision.TemplateID
	doc.ConfidenceScore = decision.Confidence
	doc.Reasoning = decision.Reasoning
	doc.AutoProcessable = decision.AutoProcessable
	doc.Status = decision.InitialStatus()
	if err := s.emailDocs.Put(ctx, *doc); err != nil {
		return nil, err
	}

	if decision.AutoProcessable {
		req := ProcessRequest{EmailDocID: doc.ID, UserID: userID, UserEmail: userEmail}
		switch decision.ProcessingType {
		case constants.ProcessingEmailTemplate:
			req.EmailTemplateID = decision.TemplateID
		case constants.ProcessingPdfTemplate:
			req.TemplateID = decision.TemplateID
		}
		processed, err := s.processor.ProcessEmailDocument(ctx, req)
		if processed != nil {
			doc = processed
		}
		if err != nil {
			s.logger.Error("scan.auto_process_failed", "email_doc_id", doc.ID, "error", err)
		}
	}

	if err := mbox.MarkRead(id); err != nil {
		return nil, err
	}
	return doc, nil
}

// decide runs the email matcher and, unless email evidence already clears
// the auto-process bar, spends one generic extraction to score PDF content
// against the stored templates.
func (s *Scanner) decide(ctx context.Context, doc *entity.EmailDocument, msg *mail.Message) (Decision, error) {
	activeTemplates, err := s.emailTemplates.ListActive(ctx)
	if err != nil {
		return Decision{}, err
	}
	emailMatch := match.FindBest(activeTemplates, match.EmailInput{
		Sender:  msg.Sender,
		Subject: msg.Subject,
		Body:    msg.BodyText,
	})
	if emailMatch != nil && emailMatch.ConfidenceScore >= constants.EmailAutoProcessThreshold {
		// Confident email evidence wins outright; skip the extraction spend.
		return Reconcile(emailMatch, nil), nil
	}

	pdf, ok, err := s.store.GetBlob(ctx, doc.PDFs[0].StorageKey)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{}, common.WrapError(common.ErrNotFound, "blob "+doc.PDFs[0].StorageKey)
	}
	rawText, err := s.textExtractor.ExtractText(ctx, pdf)
	if err != nil {
		return Decision{}, common.WrapError(err, "extract text")
	}

	extracted, err := s.extractor.Extract(ctx, nil, rawText)
	if err != nil {
		if !errors.Is(err, common.ErrMalformedModelOutput) {
			return Decision{}, err
		}
		extracted = nil
	}

	var pdfMatch *entity.PdfMatchResult
	if len(extracted) > 0 {
		pdfTemplates, err := s.pdfTemplates.List(ctx)
		if err != nil {
			return Decision{}, err
		}
		pdfMatch = match.SuggestPdfTemplate(pdfTemplates, extracted)
	}
	return Reconcile(emailMatch, pdfMatch), nil
}

func (s *Scanner) recordScanStatus(ctx context.Context, userID string, newEmails int, scanErr error) {
	status, err := s.emailDocs.GetScanStatus(ctx, userID)
	if err != nil {
		s.logger.Warn("scan.status_load_failed", "user_id", userID, "error", err)
		status = &entity.EmailScanStatus{UserID: userID}
	}
	status.LastChecked = s.now().UTC()
	status.NewEmailCount = newEmails
	status.TotalScanned += newEmails
	status.LastError = ""
	if scanErr != nil {
		status.LastError = scanErr.Error()
	}
	if err := s.emailDocs.PutScanStatus(ctx, *status); err != nil {
		s.logger.Warn("scan.status_save_failed", "user_id", userID, "error", err)
	}
}

// snippet keeps the first max characters, never splitting a multi-byte rune.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
