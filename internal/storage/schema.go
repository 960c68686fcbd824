package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/digitool/docparse/internal/common"
)

// Record schemas keyed by the record key prefix they guard. Validation
// happens on write so a malformed document never reaches the store.
var recordSchemas = map[string]string{
	"pdf_templates": `{
		"type": "object",
		"additionalProperties": {
			"type": "object",
			"required": ["id", "name", "target_fields"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"name": {"type": "string", "minLength": 1},
				"description": {"type": "string"},
				"target_fields": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "field_name"],
						"properties": {
							"id": {"type": "string", "minLength": 1},
							"field_name": {"type": "string", "minLength": 1},
							"ai_hint": {"type": "string"}
						}
					}
				}
			}
		}
	}`,
	"email_templates": `{
		"type": "object",
		"additionalProperties": {
			"type": "object",
			"required": ["id", "name", "matching_criteria", "extraction_fields"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"name": {"type": "string", "minLength": 1},
				"matching_criteria": {"type": "object"},
				"extraction_fields": {"type": "array"},
				"is_active": {"type": "boolean"},
				"usage_count": {"type": "integer", "minimum": 0}
			}
		}
	}`,
	"processed_documents": `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "original_filename", "status"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"original_filename": {"type": "string", "minLength": 1},
				"status": {"type": "string", "enum": ["processed", "corrected", "exported"]},
				"export_count": {"type": "integer", "minimum": 0}
			}
		}
	}`,
	"email_documents.": `{
		"type": "object",
		"required": ["id", "user_id", "status"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"user_id": {"type": "string", "minLength": 1},
			"status": {
				"type": "string",
				"enum": ["new", "template_suggested", "ready_for_auto_processing", "processing", "completed", "error"]
			},
			"pdf_count": {"type": "integer", "minimum": 0}
		}
	}`,
}

// ValidatedStore wraps a Store and checks well-known record shapes on
// write. Keys without a registered schema pass through untouched.
type ValidatedStore struct {
	inner   Store
	schemas map[string]*jsonschema.Schema
}

func NewValidated(inner Store) (*ValidatedStore, error) {
	compiled := make(map[string]*jsonschema.Schema, len(recordSchemas))
	for prefix, src := range recordSchemas {
		compiler := jsonschema.NewCompiler()
		name := strings.TrimSuffix(prefix, ".") + ".schema.json"
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", prefix, err)
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", prefix, err)
		}
		compiled[prefix] = schema
	}
	return &ValidatedStore{inner: inner, schemas: compiled}, nil
}

func (s *ValidatedStore) schemaFor(key string) *jsonschema.Schema {
	if schema, ok := s.schemas[key]; ok {
		return schema
	}
	for prefix, schema := range s.schemas {
		if strings.HasSuffix(prefix, ".") && strings.HasPrefix(key, prefix) {
			return schema
		}
	}
	return nil
}

func (s *ValidatedStore) PutRecord(ctx context.Context, key string, data []byte) error {
	if schema := s.schemaFor(key); schema != nil {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return common.WrapError(common.ErrInvalidInput, fmt.Sprintf("record %s is not valid JSON", key))
		}
		if err := schema.Validate(v); err != nil {
			return common.WrapError(common.ErrInvalidInput, fmt.Sprintf("record %s does not match schema: %v", key, err))
		}
	}
	return s.inner.PutRecord(ctx, key, data)
}

func (s *ValidatedStore) GetRecord(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.GetRecord(ctx, key)
}

func (s *ValidatedStore) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.GetBlob(ctx, key)
}

func (s *ValidatedStore) PutBlob(ctx context.Context, key string, data []byte) error {
	return s.inner.PutBlob(ctx, key, data)
}

func (s *ValidatedStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.ListKeys(ctx, prefix)
}

func (s *ValidatedStore) ListBlobKeys(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.ListBlobKeys(ctx, prefix)
}
