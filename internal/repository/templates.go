// Package repository maps the domain entities onto the record store. Each
// repository owns one record (or key family) and serializes every mutation as
// a read-modify-write of that record.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/storage"
)

const pdfTemplatesKey = "pdf_templates"

type TemplateRepository interface {
	Create(ctx context.Context, name, description string, fields []entity.TargetField) (*entity.PdfTemplate, error)
	List(ctx context.Context) ([]*entity.PdfTemplate, error)
	Get(ctx context.Context, id string) (*entity.PdfTemplate, error)
	Update(ctx context.Context, id string, upd entity.PdfTemplateUpdate) (*entity.PdfTemplate, error)
	Delete(ctx context.Context, id string) error
}

type templateRepository struct {
	store  storage.Store
	logger *slog.Logger
}

func NewTemplateRepository(store storage.Store, logger *slog.Logger) TemplateRepository {
	return &templateRepository{
		store:  store,
		logger: logger,
	}
}

func (r *templateRepository) load(ctx context.Context) (map[string]entity.PdfTemplate, error) {
	templates := make(map[string]entity.PdfTemplate)
	if _, err := storage.GetJSON(ctx, r.store, pdfTemplatesKey, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, name, description string, fields []entity.TargetField) (*entity.PdfTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.WrapError(common.ErrInvalidInput, "template name is required")
	}

	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if strings.EqualFold(t.Name, name) {
			return nil, common.WrapError(common.ErrDuplicateName, name)
		}
	}

	tpl := entity.PdfTemplate{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		TargetFields: withFieldIDs(fields),
	}
	templates[tpl.ID] = tpl
	if err := storage.PutJSON(ctx, r.store, pdfTemplatesKey, templates); err != nil {
		return nil, err
	}
	r.logger.Info("template.create", "template_id", tpl.ID, "name", tpl.Name, "fields", len(tpl.TargetFields))
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context) ([]*entity.PdfTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.PdfTemplate, 0, len(templates))
	for id := range templates {
		t := templates[id]
		result = append(result, &t)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

func (r *templateRepository) Get(ctx context.Context, id string) (*entity.PdfTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	tpl, ok := templates[id]
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "template "+id)
	}
	return &tpl, nil
}

func (r *templateRepository) Update(ctx context.Context, id string, upd entity.PdfTemplateUpdate) (*entity.PdfTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	tpl, ok := templates[id]
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "template "+id)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, common.WrapError(common.ErrInvalidInput, "template name is required")
		}
		for otherID, other := range templates {
			if otherID != id && strings.EqualFold(other.Name, name) {
				return nil, common.WrapError(common.ErrDuplicateName, name)
			}
		}
		tpl.Name = name
	}
	if upd.Description != nil {
		tpl.Description = *upd.Description
	}
	if upd.TargetFields != nil {
		tpl.TargetFields = withFieldIDs(*upd.TargetFields)
	}

	templates[id] = tpl
	if err := storage.PutJSON(ctx, r.store, pdfTemplatesKey, templates); err != nil {
		return nil, err
	}
	r.logger.Info("template.update", "template_id", id)
	return &tpl, nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	templates, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := templates[id]; !ok {
		return common.WrapError(common.ErrNotFound, "template "+id)
	}
	delete(templates, id)
	if err := storage.PutJSON(ctx, r.store, pdfTemplatesKey, templates); err != nil {
		return err
	}
	r.logger.Info("template.delete", "template_id", id)
	return nil
}

// withFieldIDs assigns ids to fields that arrive without one, so clients may
// send either brand-new fields or previously returned ones.
func withFieldIDs(fields []entity.TargetField) []entity.TargetField {
	out := make([]entity.TargetField, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		out[i] = f
	}
	return out
}
