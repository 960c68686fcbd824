package entity

import "time"

// EmailMatchingCriteria holds the rule-based criteria for recognizing that an
// incoming email belongs to a template.
type EmailMatchingCriteria struct {
	SenderDomains   []string `json:"sender_domains"`
	SenderEmails    []string `json:"sender_emails"`
	SubjectKeywords []string `json:"subject_keywords"`
	RequiredWords   []string `json:"required_words"`
	ExcludedWords   []string `json:"excluded_words"`
}

// EmailExtractionField is a field to extract from matched email orders.
type EmailExtractionField struct {
	ID                string `json:"id"`
	FieldName         string `json:"field_name"`
	AIHint            string `json:"ai_hint,omitempty"`
	Required          bool   `json:"required"`
	ValidationPattern string `json:"validation_pattern,omitempty"`
}

// EmailTemplate is a template for processing email orders. Inactive templates
// are never matched.
type EmailTemplate struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description,omitempty"`
	MatchingCriteria EmailMatchingCriteria  `json:"matching_criteria"`
	ExtractionFields []EmailExtractionField `json:"extraction_fields"`
	IsActive         bool                   `json:"is_active"`
	UsageCount       int                    `json:"usage_count"`
	CreatedBy        string                 `json:"created_by,omitempty"`
	CreatedDate      time.Time              `json:"created_date"`
	UpdatedDate      time.Time              `json:"updated_date"`
}

// EmailTemplateUpdate carries a partial update; nil means "leave unchanged".
type EmailTemplateUpdate struct {
	Name             *string                 `json:"name,omitempty"`
	Description      *string                 `json:"description,omitempty"`
	MatchingCriteria *EmailMatchingCriteria  `json:"matching_criteria,omitempty"`
	ExtractionFields *[]EmailExtractionField `json:"extraction_fields,omitempty"`
	IsActive         *bool                   `json:"is_active,omitempty"`
}
