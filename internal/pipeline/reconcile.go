// Package pipeline orchestrates document processing: mailbox scanning,
// match reconciliation, AI extraction and record lifecycle.
package pipeline

import (
	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/match"
)

// Decision is the single processing decision reconciled from the email-level
// and content-level match signals. Confidence is reported on the 0-100
// scale regardless of which matcher produced it.
type Decision struct {
	ProcessingType  constants.ProcessingType
	TemplateID      string
	TemplateName    string
	Confidence      float64
	Reasoning       string
	AutoProcessable bool
}

// Reconcile combines the two independent match results. Priority order:
// confident email match, confident PDF match, email suggestion, PDF
// suggestion, unknown. Email evidence wins at equal tiers because sender and
// subject are stronger provenance signals than document content.
// Deterministic: the outcome depends only on the two confidences.
func Reconcile(email *entity.EmailMatchResult, pdf *entity.PdfMatchResult) Decision {
	if email != nil && email.ConfidenceScore >= constants.EmailAutoProcessThreshold {
		return Decision{
			ProcessingType:  constants.ProcessingEmailTemplate,
			TemplateID:      email.TemplateID,
			TemplateName:    email.TemplateName,
			Confidence:      email.ConfidenceScore * 100,
			Reasoning:       joinReasons(email.MatchReasons),
			AutoProcessable: email.AutoProcessable,
		}
	}
	if pdf != nil && pdf.Confidence >= constants.PdfAutoProcessThreshold {
		return Decision{
			ProcessingType:  constants.ProcessingPdfTemplate,
			TemplateID:      pdf.TemplateID,
			TemplateName:    pdf.TemplateName,
			Confidence:      pdf.Confidence,
			Reasoning:       pdf.Reasoning,
			AutoProcessable: match.ShouldAutoProcess(pdf.Confidence),
		}
	}
	if email != nil && email.ConfidenceScore >= constants.EmailSuggestionThreshold {
		return Decision{
			ProcessingType:  constants.ProcessingEmailTemplateSuggestion,
			TemplateID:      email.TemplateID,
			TemplateName:    email.TemplateName,
			Confidence:      email.ConfidenceScore * 100,
			Reasoning:       joinReasons(email.MatchReasons),
			AutoProcessable: false,
		}
	}
	if pdf != nil && pdf.Confidence >= constants.PdfSuggestionThreshold {
		return Decision{
			ProcessingType:  constants.ProcessingPdfTemplateSuggestion,
			TemplateID:      pdf.TemplateID,
			TemplateName:    pdf.TemplateName,
			Confidence:      pdf.Confidence,
			Reasoning:       pdf.Reasoning,
			AutoProcessable: false,
		}
	}
	return Decision{ProcessingType: constants.ProcessingUnknown}
}

// InitialStatus maps a decision onto the first lifecycle state of the
// scanned document.
func (d Decision) InitialStatus() constants.EmailDocStatus {
	switch {
	case d.AutoProcessable:
		return constants.EmailDocStatusReadyForAuto
	case d.TemplateID != "":
		return constants.EmailDocStatusSuggested
	default:
		return constants.EmailDocStatusNew
	}
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
