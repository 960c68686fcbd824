package repository

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/storage"
)

const (
	emailDocumentPrefix = "email_documents."
	emailStatusPrefix   = "email_status."
	emailConfigPrefix   = "email_config."
)

type EmailDocumentRepository interface {
	Put(ctx context.Context, doc entity.EmailDocument) error
	Get(ctx context.Context, id string) (*entity.EmailDocument, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.EmailDocument, error)
	SetStatus(ctx context.Context, id string, status constants.EmailDocStatus, errorMessage string) (*entity.EmailDocument, error)
	PutScanStatus(ctx context.Context, status entity.EmailScanStatus) error
	GetScanStatus(ctx context.Context, userID string) (*entity.EmailScanStatus, error)
	PutMailboxConfig(ctx context.Context, cfg entity.MailboxConfig) error
	GetMailboxConfig(ctx context.Context, userID string) (*entity.MailboxConfig, error)
	DeleteMailboxConfig(ctx context.Context, userID string) error
}

type emailDocumentRepository struct {
	store  storage.Store
	logger *slog.Logger
}

func NewEmailDocumentRepository(store storage.Store, logger *slog.Logger) EmailDocumentRepository {
	return &emailDocumentRepository{
		store:  store,
		logger: logger,
	}
}

func (r *emailDocumentRepository) Put(ctx context.Context, doc entity.EmailDocument) error {
	if doc.ID == "" {
		return common.WrapError(common.ErrInvalidInput, "email document id is required")
	}
	return storage.PutJSON(ctx, r.store, emailDocumentPrefix+doc.ID, doc)
}

func (r *emailDocumentRepository) Get(ctx context.Context, id string) (*entity.EmailDocument, error) {
	var doc entity.EmailDocument
	ok, err := storage.GetJSON(ctx, r.store, emailDocumentPrefix+id, &doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "email document "+id)
	}
	return &doc, nil
}

// ListByUser returns the user's scanned documents, most recently received
// first. One key per document keeps scans from rewriting a shared record.
func (r *emailDocumentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.EmailDocument, error) {
	keys, err := r.store.ListKeys(ctx, emailDocumentPrefix)
	if err != nil {
		return nil, err
	}
	var result []*entity.EmailDocument
	for _, key := range keys {
		var doc entity.EmailDocument
		ok, err := storage.GetJSON(ctx, r.store, key, &doc)
		if err != nil {
			return nil, err
		}
		if !ok || doc.UserID != userID {
			continue
		}
		d := doc
		result = append(result, &d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReceivedDate.After(result[j].ReceivedDate)
	})
	return result, nil
}

func (r *emailDocumentRepository) SetStatus(ctx context.Context, id string, status constants.EmailDocStatus, errorMessage string) (*entity.EmailDocument, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	if status == constants.EmailDocStatusCompleted {
		now := time.Now().UTC()
		doc.ProcessedAt = &now
	}
	if err := r.Put(ctx, *doc); err != nil {
		return nil, err
	}
	r.logger.Info("email_documents.status", "email_doc_id", id, "status", status)
	return doc, nil
}

func (r *emailDocumentRepository) PutScanStatus(ctx context.Context, status entity.EmailScanStatus) error {
	if status.UserID == "" {
		return common.WrapError(common.ErrInvalidInput, "scan status user id is required")
	}
	return storage.PutJSON(ctx, r.store, emailStatusPrefix+status.UserID, status)
}

func (r *emailDocumentRepository) GetScanStatus(ctx context.Context, userID string) (*entity.EmailScanStatus, error) {
	var status entity.EmailScanStatus
	ok, err := storage.GetJSON(ctx, r.store, emailStatusPrefix+userID, &status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &entity.EmailScanStatus{UserID: userID}, nil
	}
	return &status, nil
}

func (r *emailDocumentRepository) PutMailboxConfig(ctx context.Context, cfg entity.MailboxConfig) error {
	if cfg.UserID == "" {
		return common.WrapError(common.ErrInvalidInput, "mailbox config user id is required")
	}
	if cfg.Host == "" || cfg.Username == "" {
		return common.WrapError(common.ErrInvalidInput, "mailbox host and username are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	r.logger.Info("email_config.save", "user_id", cfg.UserID, "host", cfg.Host)
	return storage.PutJSON(ctx, r.store, emailConfigPrefix+cfg.UserID, cfg)
}

func (r *emailDocumentRepository) GetMailboxConfig(ctx context.Context, userID string) (*entity.MailboxConfig, error) {
	var cfg entity.MailboxConfig
	ok, err := storage.GetJSON(ctx, r.store, emailConfigPrefix+userID, &cfg)
	if err != nil {
		return nil, err
	}
	if !ok || cfg.Host == "" {
		return nil, common.WrapError(common.ErrNotFound, "mailbox config for user "+userID)
	}
	return &cfg, nil
}

// DeleteMailboxConfig clears the stored credentials. The store has no delete
// primitive, so the record is overwritten with an empty config, which Get
// reports as absent.
func (r *emailDocumentRepository) DeleteMailboxConfig(ctx context.Context, userID string) error {
	if _, err := r.GetMailboxConfig(ctx, userID); err != nil {
		return err
	}
	r.logger.Info("email_config.delete", "user_id", userID)
	return storage.PutJSON(ctx, r.store, emailConfigPrefix+userID, entity.MailboxConfig{UserID: userID})
}
