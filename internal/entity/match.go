package entity

// EmailMatchResult is the outcome of scoring one email against one email
// template. ConfidenceScore is clamped to [0,1].
type EmailMatchResult struct {
	TemplateID      string   `json:"template_id"`
	TemplateName    string   `json:"template_name"`
	ConfidenceScore float64  `json:"confidence_score"`
	MatchReasons    []string `json:"match_reasons"`
	AutoProcessable bool     `json:"auto_processable"`
}

// PdfMatchResult is the outcome of the heuristic PDF template suggestion.
// Confidence is on a 0..100 scale.
type PdfMatchResult struct {
	TemplateID   string  `json:"template_id"`
	TemplateName string  `json:"template_name"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}
