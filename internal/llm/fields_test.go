package llm

import (
	"reflect"
	"testing"

	"github.com/digitool/docparse/internal/entity"
)

func TestMapTemplateFields(t *testing.T) {
	tpl := &entity.PdfTemplate{
		TargetFields: []entity.TargetField{
			{FieldName: "OrderNumber"},
			{FieldName: "TotalAmount"},
			{FieldName: "Missing"},
			{FieldName: "Explicit"},
		},
	}
	parsed := map[string]any{
		"OrderNumber": "ORD-17",
		"TotalAmount": 129.5,
		"Explicit":    nil,
		"Invented":    "dropped",
	}

	got := MapTemplateFields(tpl, parsed)
	want := map[string]any{
		"OrderNumber": "ORD-17",
		"TotalAmount": "129.5",
		"Missing":     nil,
		"Explicit":    nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := got["Invented"]; ok {
		t.Error("keys outside the template must be dropped")
	}
}

func TestFlattenGenericItems(t *testing.T) {
	parsed := map[string]any{
		"OrderNumber": "ORD-9",
		"Items": []any{
			map[string]any{"ProductName": "Widget", "Quantity": float64(3)},
			"loose entry",
		},
	}

	got := FlattenGeneric(parsed)
	want := map[string]any{
		"OrderNumber":         "ORD-9",
		"Item_1_ProductName":  "Widget",
		"Item_1_Quantity":     "3",
		"Item_2":              "loose entry",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlattenGenericItemsCaseInsensitive(t *testing.T) {
	got := FlattenGeneric(map[string]any{
		"items": []any{map[string]any{"Name": "A"}},
	})
	if got["Item_1_Name"] != "A" {
		t.Errorf("lowercase items key not expanded: %v", got)
	}
}

func TestFlattenGenericNestedValues(t *testing.T) {
	got := FlattenGeneric(map[string]any{
		"Shipping": map[string]any{"City": "Berlin"},
		"Tags":     []any{"a", "b"},
		"Note":     nil,
	})
	if got["Shipping"] != `{"City":"Berlin"}` {
		t.Errorf("nested object should keep JSON text form, got %v", got["Shipping"])
	}
	if got["Tags"] != `["a","b"]` {
		t.Errorf("non-items array should keep JSON text form, got %v", got["Tags"])
	}
	if got["Note"] != nil {
		t.Errorf("nil value should stay nil, got %v", got["Note"])
	}
}

func TestErrorPlaceholder(t *testing.T) {
	got := ErrorPlaceholder()
	if got[ErrorPlaceholderField] != "Failed to parse AI response" {
		t.Errorf("unexpected placeholder: %v", got)
	}
}
