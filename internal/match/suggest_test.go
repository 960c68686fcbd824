package match

import (
	"testing"

	"github.com/digitool/docparse/internal/entity"
)

func pdfTemplate(id, name string, fields ...string) *entity.PdfTemplate {
	tpl := &entity.PdfTemplate{ID: id, Name: name}
	for _, f := range fields {
		tpl.TargetFields = append(tpl.TargetFields, entity.TargetField{ID: "f-" + f, FieldName: f})
	}
	return tpl
}

func TestSuggestPdfTemplate(t *testing.T) {
	invoice := pdfTemplate("t1", "Invoice", "OrderNumber", "TotalAmount")
	shipping := pdfTemplate("t2", "Shipping Note", "TrackingNumber")

	t.Run("name hit plus field hits", func(t *testing.T) {
		extracted := map[string]any{
			"DocumentType": "Invoice #42",
			"OrderNumber":  "42",
			"TotalAmount":  "199.00",
		}
		got := SuggestPdfTemplate([]*entity.PdfTemplate{shipping, invoice}, extracted)
		if got == nil || got.TemplateID != "t1" {
			t.Fatalf("got %+v, want t1", got)
		}
		// 10 for the name plus 2 per matching field
		if got.Confidence != 14 {
			t.Errorf("confidence: got %v, want 14", got.Confidence)
		}
	})

	t.Run("field hits alone score", func(t *testing.T) {
		got := SuggestPdfTemplate([]*entity.PdfTemplate{invoice}, map[string]any{"OrderNumber": "7"})
		if got == nil || got.Confidence != 2 {
			t.Fatalf("got %+v, want confidence 2", got)
		}
	})

	t.Run("field name match is case-insensitive", func(t *testing.T) {
		got := SuggestPdfTemplate([]*entity.PdfTemplate{invoice}, map[string]any{"ordernumber": "7"})
		if got == nil || got.Confidence != 2 {
			t.Fatalf("got %+v, want confidence 2", got)
		}
	})

	t.Run("no evidence means no suggestion", func(t *testing.T) {
		got := SuggestPdfTemplate([]*entity.PdfTemplate{invoice, shipping}, map[string]any{"Unrelated": "x"})
		if got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})

	t.Run("ties keep the first encountered", func(t *testing.T) {
		a := pdfTemplate("a", "Alpha", "Shared")
		b := pdfTemplate("b", "Beta", "Shared")
		got := SuggestPdfTemplate([]*entity.PdfTemplate{a, b}, map[string]any{"Shared": "1"})
		if got == nil || got.TemplateID != "a" {
			t.Fatalf("got %+v, want a", got)
		}
	})
}

func TestShouldAutoProcess(t *testing.T) {
	tests := []struct {
		confidence float64
		want       bool
	}{
		{69.9, false},
		{70, true},
		{100, true},
		{0, false},
	}
	for _, tt := range tests {
		if got := ShouldAutoProcess(tt.confidence); got != tt.want {
			t.Errorf("ShouldAutoProcess(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}
