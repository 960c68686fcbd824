// Package seed loads an optional YAML file of templates at startup,
// creating only the ones whose names are not yet taken.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/repository"
)

type seedFile struct {
	PdfTemplates []struct {
		Name         string `yaml:"name"`
		Description  string `yaml:"description"`
		TargetFields []struct {
			FieldName string `yaml:"field_name"`
			AIHint    string `yaml:"ai_hint"`
		} `yaml:"target_fields"`
	} `yaml:"pdf_templates"`
	EmailTemplates []struct {
		Name             string                        `yaml:"name"`
		Description      string                        `yaml:"description"`
		SenderDomains    []string                      `yaml:"sender_domains"`
		SenderEmails     []string                      `yaml:"sender_emails"`
		SubjectKeywords  []string                      `yaml:"subject_keywords"`
		RequiredWords    []string                      `yaml:"required_words"`
		ExcludedWords    []string                      `yaml:"excluded_words"`
		ExtractionFields []struct {
			FieldName string `yaml:"field_name"`
			AIHint    string `yaml:"ai_hint"`
		} `yaml:"extraction_fields"`
		IsActive *bool `yaml:"is_active"`
	} `yaml:"email_templates"`
}

// Load reads the seed file and creates any templates that do not exist yet.
// Name collisions are skipped silently; they mean the template was already
// seeded or created by hand.
func Load(ctx context.Context, path string, templates repository.TemplateRepository, emailTemplates repository.EmailTemplateRepository, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	created := 0
	for _, t := range file.PdfTemplates {
		fields := make([]entity.TargetField, len(t.TargetFields))
		for i, f := range t.TargetFields {
			fields[i] = entity.TargetField{FieldName: f.FieldName, AIHint: f.AIHint}
		}
		_, err := templates.Create(ctx, t.Name, t.Description, fields)
		if err != nil {
			if errors.Is(err, common.ErrDuplicateName) {
				continue
			}
			return err
		}
		created++
	}
	for _, t := range file.EmailTemplates {
		active := true
		if t.IsActive != nil {
			active = *t.IsActive
		}
		fields := make([]entity.EmailExtractionField, len(t.ExtractionFields))
		for i, f := range t.ExtractionFields {
			fields[i] = entity.EmailExtractionField{FieldName: f.FieldName, AIHint: f.AIHint}
		}
		_, err := emailTemplates.Create(ctx, entity.EmailTemplate{
			Name:        t.Name,
			Description: t.Description,
			MatchingCriteria: entity.EmailMatchingCriteria{
				SenderDomains:   t.SenderDomains,
				SenderEmails:    t.SenderEmails,
				SubjectKeywords: t.SubjectKeywords,
				RequiredWords:   t.RequiredWords,
				ExcludedWords:   t.ExcludedWords,
			},
			ExtractionFields: fields,
			IsActive:         active,
			CreatedBy:        "seed",
		})
		if err != nil {
			if errors.Is(err, common.ErrDuplicateName) {
				continue
			}
			return err
		}
		created++
	}
	logger.Info("seed.loaded", "path", path, "created", created)
	return nil
}
