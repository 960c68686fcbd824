package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/digitool/docparse/internal/entity"
)

// ErrorPlaceholderField is the single field stored when the model's output
// could not be parsed, so a batch run records the failure without aborting.
const ErrorPlaceholderField = "AI_Extraction_Error"

// ErrorPlaceholder builds the degraded extraction result for a document
// whose model response was unusable.
func ErrorPlaceholder() map[string]any {
	return map[string]any{ErrorPlaceholderField: "Failed to parse AI response"}
}

// MapTemplateFields copies each declared target field out of the parsed
// model response. Values are stringified; fields the model omitted come back
// nil. Keys the model invented are dropped.
func MapTemplateFields(tpl *entity.PdfTemplate, parsed map[string]any) map[string]any {
	out := make(map[string]any, len(tpl.TargetFields))
	for _, f := range tpl.TargetFields {
		v, ok := parsed[f.FieldName]
		if !ok || v == nil {
			out[f.FieldName] = nil
			continue
		}
		out[f.FieldName] = stringify(v)
	}
	return out
}

// FlattenGeneric flattens a generic-mode response into field/value pairs. A
// top-level array named "items" (any case) expands into Item_{n}_{subkey}
// entries; other nested values keep their JSON text form.
func FlattenGeneric(parsed map[string]any) map[string]any {
	out := make(map[string]any, len(parsed))
	for key, value := range parsed {
		list, isList := value.([]any)
		if isList && strings.EqualFold(key, "items") {
			for i, item := range list {
				obj, isObj := item.(map[string]any)
				if !isObj {
					out[fmt.Sprintf("Item_%d", i+1)] = stringifyOrNil(item)
					continue
				}
				for subKey, subValue := range obj {
					out[fmt.Sprintf("Item_%d_%s", i+1, subKey)] = stringifyOrNil(subValue)
				}
			}
			continue
		}
		switch value.(type) {
		case map[string]any, []any:
			b, err := json.Marshal(value)
			if err != nil {
				out[key] = stringify(value)
				continue
			}
			out[key] = string(b)
		default:
			out[key] = stringifyOrNil(value)
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

func stringifyOrNil(v any) any {
	if v == nil {
		return nil
	}
	return stringify(v)
}
