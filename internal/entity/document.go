package entity

import (
	"time"

	"github.com/digitool/docparse/constants"
)

// ProcessedDocument is the canonical record in the unified document
// repository. The repository exclusively owns it; other components append and
// update only through the repository.
type ProcessedDocument struct {
	ID               string                   `json:"id"`
	Source           constants.Source         `json:"source"`
	OriginalFilename string                   `json:"original_filename"`
	TemplateID       string                   `json:"template_id,omitempty"`
	TemplateName     string                   `json:"template_name,omitempty"`
	ExtractedData    map[string]any           `json:"extracted_data"`
	RawText          string                   `json:"raw_text,omitempty"`
	ProcessedDate    time.Time                `json:"processed_date"`
	Status           constants.DocumentStatus `json:"status"`
	UserID           string                   `json:"user_id"`
	UserEmail        string                   `json:"user_email"`

	// Email-origin fields, set only for email sources.
	EmailSender       string `json:"email_sender,omitempty"`
	EmailSubject      string `json:"email_subject,omitempty"`
	EmailReceivedDate string `json:"email_received_date,omitempty"`
	EmailAddress      string `json:"email_address,omitempty"`

	// PdfStorageKey references the original PDF in the blob store. The blob
	// is owned by the store; deleting the record leaves the blob in place.
	PdfStorageKey string `json:"pdf_storage_key,omitempty"`

	// Corrections is a user-supplied overlay. When present it supersedes
	// ExtractedData for export and display, and survives re-extraction.
	Corrections map[string]any `json:"corrections,omitempty"`

	ExportCount      int        `json:"export_count"`
	LastExportedDate *time.Time `json:"last_exported_date,omitempty"`
}

// EffectiveData returns the corrections overlay when present, otherwise the
// extracted data.
func (d *ProcessedDocument) EffectiveData() map[string]any {
	if d.Corrections != nil {
		return d.Corrections
	}
	return d.ExtractedData
}

// DocumentFilter holds optional list predicates; set predicates are ANDed.
// Date bounds are compared as strings against the RFC 3339 processed date.
type DocumentFilter struct {
	Source     constants.Source         `json:"source,omitempty"`
	Status     constants.DocumentStatus `json:"status,omitempty"`
	TemplateID string                   `json:"template_id,omitempty"`
	StartDate  string                   `json:"start_date,omitempty"`
	EndDate    string                   `json:"end_date,omitempty"`
	UserID     string                   `json:"user_id,omitempty"`
}

// AttachmentRef points at one stored PDF attachment of a scanned email.
type AttachmentRef struct {
	Index      int    `json:"index"`
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`
	Size       int    `json:"size"`
}

// EmailDocument is the pre-extraction record produced while scanning a
// mailbox. It carries the reconciliation outcome so a later explicit
// extraction can reuse the decided template.
type EmailDocument struct {
	ID           string                   `json:"id"`
	UserID       string                   `json:"user_id"`
	Source       constants.Source         `json:"source"`
	Sender       string                   `json:"sender"`
	Subject      string                   `json:"subject"`
	ReceivedDate time.Time                `json:"received_date"`
	OriginalDate string                   `json:"original_date,omitempty"`
	PdfCount     int                      `json:"pdf_count"`
	Status       constants.EmailDocStatus `json:"status"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	EmailAddress string                   `json:"email_address,omitempty"`
	BodySnippet  string                   `json:"body_snippet,omitempty"`

	ProcessingType      constants.ProcessingType `json:"processing_type"`
	SuggestedTemplateID string                   `json:"suggested_template_id,omitempty"`
	ConfidenceScore     float64                  `json:"confidence_score"`
	Reasoning           string                   `json:"reasoning,omitempty"`
	AutoProcessable     bool                     `json:"auto_processable"`

	PDFs []AttachmentRef `json:"pdfs,omitempty"`

	// UnifiedID links to the ProcessedDocument created by extraction, so a
	// re-run updates the same record instead of appending a duplicate.
	UnifiedID   string     `json:"unified_id,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
