package entity

// TargetField is a single field a PDF template asks the model to extract.
type TargetField struct {
	ID        string `json:"id"`
	FieldName string `json:"field_name"`
	AIHint    string `json:"ai_hint,omitempty"`
}

// PdfTemplate describes how to extract structured data from one kind of PDF.
// Field ids are assigned at creation time and stable thereafter.
type PdfTemplate struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	TargetFields []TargetField `json:"target_fields"`
}

// PdfTemplateUpdate carries a partial update; nil means "leave unchanged".
// TargetFields, when supplied, replaces the whole list.
type PdfTemplateUpdate struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	TargetFields *[]TargetField `json:"target_fields,omitempty"`
}
