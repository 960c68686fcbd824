package llm

import (
	"fmt"
	"strings"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/entity"
)

const (
	beginTextMarker = "--- BEGIN TEXT ---"
	endTextMarker   = "--- END TEXT ---"
)

// BuildExtractionPrompt assembles the user prompt for one document. With a
// template carrying target fields the model is told the exact output keys;
// otherwise it is asked for a generic business-document extraction. The text
// is truncated before embedding to bound cost and latency.
func BuildExtractionPrompt(tpl *entity.PdfTemplate, rawText string) string {
	parts := []string{
		"You are an expert data extraction assistant. Your task is to extract structured information from the provided text, which originates from a PDF document.",
		fmt.Sprintf("The text to parse is delimited by '%s' and '%s'.", beginTextMarker, endTextMarker),
		"Respond with a valid JSON object.",
	}

	if tpl != nil && len(tpl.TargetFields) > 0 {
		parts = append(parts, fmt.Sprintf("A specific extraction template named '%s' has been selected. Focus on extracting the following fields:", tpl.Name))
		var descriptions []string
		var schema strings.Builder
		schema.WriteString("{")
		for i, f := range tpl.TargetFields {
			desc := fmt.Sprintf("  - '%s'", f.FieldName)
			if f.AIHint != "" {
				desc += fmt.Sprintf(" (Hint: %s)", f.AIHint)
			}
			descriptions = append(descriptions, desc)
			schema.WriteString(fmt.Sprintf("%q: %q", f.FieldName, "string or number or array or null"))
			if i < len(tpl.TargetFields)-1 {
				schema.WriteString(", ")
			}
		}
		schema.WriteString("}")
		parts = append(parts,
			strings.Join(descriptions, "\n"),
			fmt.Sprintf("The JSON output should strictly follow this structure: %s.", schema.String()),
			"If a field is not found or not applicable, use a JSON 'null' value for it.",
		)
	} else {
		parts = append(parts,
			"No specific template was selected, or the selected template has no target fields. Perform a generic extraction.",
			"Identify and extract common business document fields such as: OrderNumber, OrderDate, CustomerName, DeliveryAddress, Items (with ProductName, Quantity, UnitPrice, TotalPrice), TotalAmount, Currency, etc.",
			"The JSON output should be a flat object where keys are descriptive names for the data points and values are the extracted information. For lists like 'Items', use an array of objects.",
			"If a commonly expected field is not found, you may omit it or use a JSON 'null' value.",
		)
	}

	parts = append(parts, "\nText to parse:", beginTextMarker, truncateRunes(rawText, constants.PromptTextLimit), endTextMarker)
	return strings.Join(parts, "\n")
}

// truncateRunes keeps the first max characters without splitting a
// multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
