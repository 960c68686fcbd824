package pipeline

import (
	"testing"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/entity"
)

func emailResult(confidence float64) *entity.EmailMatchResult {
	return &entity.EmailMatchResult{
		TemplateID:      "etpl",
		TemplateName:    "Email Template",
		ConfidenceScore: confidence,
		AutoProcessable: confidence >= constants.EmailAutoProcessThreshold,
	}
}

func pdfResult(confidence float64) *entity.PdfMatchResult {
	return &entity.PdfMatchResult{
		TemplateID:   "ptpl",
		TemplateName: "Pdf Template",
		Confidence:   confidence,
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		email    *entity.EmailMatchResult
		pdf      *entity.PdfMatchResult
		wantType constants.ProcessingType
		wantTpl  string
		wantAuto bool
	}{
		{
			name:     "confident email beats confident pdf",
			email:    emailResult(0.8),
			pdf:      pdfResult(95),
			wantType: constants.ProcessingEmailTemplate,
			wantTpl:  "etpl",
			wantAuto: true,
		},
		{
			name:     "confident pdf beats email suggestion",
			email:    emailResult(0.6),
			pdf:      pdfResult(75),
			wantType: constants.ProcessingPdfTemplate,
			wantTpl:  "ptpl",
			wantAuto: true,
		},
		{
			name:     "email suggestion beats pdf suggestion",
			email:    emailResult(0.55),
			pdf:      pdfResult(60),
			wantType: constants.ProcessingEmailTemplateSuggestion,
			wantTpl:  "etpl",
			wantAuto: false,
		},
		{
			name:     "pdf suggestion when email too weak",
			email:    emailResult(0.4),
			pdf:      pdfResult(55),
			wantType: constants.ProcessingPdfTemplateSuggestion,
			wantTpl:  "ptpl",
			wantAuto: false,
		},
		{
			name:     "both too weak is unknown",
			email:    emailResult(0.4),
			pdf:      pdfResult(40),
			wantType: constants.ProcessingUnknown,
			wantTpl:  "",
			wantAuto: false,
		},
		{
			name:     "nil matches are unknown",
			email:    nil,
			pdf:      nil,
			wantType: constants.ProcessingUnknown,
		},
		{
			name:     "email exactly at auto threshold",
			email:    emailResult(0.7),
			pdf:      nil,
			wantType: constants.ProcessingEmailTemplate,
			wantTpl:  "etpl",
			wantAuto: true,
		},
		{
			name:     "email exactly at suggestion threshold",
			email:    emailResult(0.5),
			pdf:      nil,
			wantType: constants.ProcessingEmailTemplateSuggestion,
			wantTpl:  "etpl",
		},
		{
			name:     "pdf exactly at thresholds",
			email:    nil,
			pdf:      pdfResult(50),
			wantType: constants.ProcessingPdfTemplateSuggestion,
			wantTpl:  "ptpl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.email, tt.pdf)
			if got.ProcessingType != tt.wantType {
				t.Errorf("processing_type: got %v, want %v", got.ProcessingType, tt.wantType)
			}
			if got.TemplateID != tt.wantTpl {
				t.Errorf("template_id: got %q, want %q", got.TemplateID, tt.wantTpl)
			}
			if got.AutoProcessable != tt.wantAuto {
				t.Errorf("auto_processable: got %v, want %v", got.AutoProcessable, tt.wantAuto)
			}
		})
	}
}

func TestReconcileConfidenceScale(t *testing.T) {
	got := Reconcile(emailResult(0.75), nil)
	if got.Confidence != 75 {
		t.Errorf("confidence: got %v, want 75 (0-100 scale)", got.Confidence)
	}
	got = Reconcile(nil, pdfResult(80))
	if got.Confidence != 80 {
		t.Errorf("confidence: got %v, want 80", got.Confidence)
	}
}

func TestDecisionInitialStatus(t *testing.T) {
	tests := []struct {
		name string
		d    Decision
		want constants.EmailDocStatus
	}{
		{"auto-processable", Decision{TemplateID: "t", AutoProcessable: true}, constants.EmailDocStatusReadyForAuto},
		{"suggestion", Decision{TemplateID: "t"}, constants.EmailDocStatusSuggested},
		{"unknown", Decision{}, constants.EmailDocStatusNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.InitialStatus(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
