package match

import (
	"fmt"
	"strings"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/entity"
)

// SuggestPdfTemplate scores already-extracted field/value pairs against the
// stored PDF templates. A template earns points when its name shows up in
// the extracted values and when its declared fields appear as keys. The
// highest scorer above 0 wins; ties keep the first encountered.
func SuggestPdfTemplate(templates []*entity.PdfTemplate, extracted map[string]any) *entity.PdfMatchResult {
	var valueParts []string
	for _, v := range extracted {
		valueParts = append(valueParts, strings.ToLower(fmt.Sprintf("%v", v)))
	}
	valueText := strings.Join(valueParts, " ")

	keys := make(map[string]bool, len(extracted))
	for k := range extracted {
		keys[strings.ToLower(k)] = true
	}

	var best *entity.PdfMatchResult
	for _, tpl := range templates {
		score := 0.0
		var reasons []string
		if tpl.Name != "" && strings.Contains(valueText, strings.ToLower(tpl.Name)) {
			score += constants.SuggestNameHitScore
			reasons = append(reasons, fmt.Sprintf("template name %q found in document", tpl.Name))
		}
		fieldHits := 0
		for _, f := range tpl.TargetFields {
			if keys[strings.ToLower(f.FieldName)] {
				fieldHits++
			}
		}
		if fieldHits > 0 {
			score += float64(fieldHits) * constants.SuggestFieldHitScore
			reasons = append(reasons, fmt.Sprintf("%d of %d template fields present", fieldHits, len(tpl.TargetFields)))
		}
		if score <= 0 {
			continue
		}
		if score > 100 {
			score = 100
		}
		if best == nil || score > best.Confidence {
			best = &entity.PdfMatchResult{
				TemplateID:   tpl.ID,
				TemplateName: tpl.Name,
				Confidence:   score,
				Reasoning:    strings.Join(reasons, "; "),
			}
		}
	}
	return best
}

// ShouldAutoProcess reports whether a PDF-match confidence on the 0-100
// scale clears the auto-process bar.
func ShouldAutoProcess(confidence float64) bool {
	return confidence >= constants.PdfAutoProcessThreshold
}
