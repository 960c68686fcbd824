package constants

// DocumentStatus is the canonical status for records in the unified
// processed-documents repository.
type DocumentStatus string

// Stable values (store these exact strings).
const (
	DocStatusProcessed DocumentStatus = "processed"
	DocStatusCorrected DocumentStatus = "corrected"
	DocStatusExported  DocumentStatus = "exported"
)

// EmailDocStatus is the lifecycle status of a mailbox-scan document before
// (and while) it is extracted into the unified repository.
type EmailDocStatus string

const (
	EmailDocStatusNew          EmailDocStatus = "new"
	EmailDocStatusSuggested    EmailDocStatus = "template_suggested"
	EmailDocStatusReadyForAuto EmailDocStatus = "ready_for_auto_processing"
	EmailDocStatusProcessing   EmailDocStatus = "processing"
	EmailDocStatusCompleted    EmailDocStatus = "completed"
	EmailDocStatusError        EmailDocStatus = "error"
)

// ProcessingType identifies which match signal, if any, drove the processing
// decision for a scanned document.
type ProcessingType string

const (
	ProcessingEmailTemplate           ProcessingType = "email_template"
	ProcessingPdfTemplate             ProcessingType = "pdf_template"
	ProcessingEmailTemplateSuggestion ProcessingType = "email_template_suggestion"
	ProcessingPdfTemplateSuggestion   ProcessingType = "pdf_template_suggestion"
	ProcessingUnknown                 ProcessingType = "unknown"
)

// Source identifies where a processed document came from.
type Source string

const (
	SourceFileUpload Source = "file_upload"
	SourceEmail      Source = "email"
	SourceImapEmail  Source = "imap_email"
)
