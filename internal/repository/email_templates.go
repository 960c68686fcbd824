package repository

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/storage"
)

const emailTemplatesKey = "email_templates"

type EmailTemplateRepository interface {
	Create(ctx context.Context, tpl entity.EmailTemplate) (*entity.EmailTemplate, error)
	List(ctx context.Context) ([]*entity.EmailTemplate, error)
	ListActive(ctx context.Context) ([]*entity.EmailTemplate, error)
	Get(ctx context.Context, id string) (*entity.EmailTemplate, error)
	Update(ctx context.Context, id string, upd entity.EmailTemplateUpdate) (*entity.EmailTemplate, error)
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string) error
}

type emailTemplateRepository struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewEmailTemplateRepository(store storage.Store, logger *slog.Logger) EmailTemplateRepository {
	return &emailTemplateRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (r *emailTemplateRepository) load(ctx context.Context) (map[string]entity.EmailTemplate, error) {
	templates := make(map[string]entity.EmailTemplate)
	if _, err := storage.GetJSON(ctx, r.store, emailTemplatesKey, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *emailTemplateRepository) save(ctx context.Context, templates map[string]entity.EmailTemplate) error {
	return storage.PutJSON(ctx, r.store, emailTemplatesKey, templates)
}

func (r *emailTemplateRepository) Create(ctx context.Context, tpl entity.EmailTemplate) (*entity.EmailTemplate, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		return nil, common.WrapError(common.ErrInvalidInput, "template name is required")
	}

	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range templates {
		if strings.EqualFold(existing.Name, tpl.Name) {
			return nil, common.WrapError(common.ErrDuplicateName, tpl.Name)
		}
	}

	now := r.now().UTC()
	tpl.ID = uuid.NewString()
	tpl.UsageCount = 0
	tpl.CreatedDate = now
	tpl.UpdatedDate = now
	tpl.ExtractionFields = withExtractionFieldIDs(tpl.ExtractionFields)

	templates[tpl.ID] = tpl
	if err := r.save(ctx, templates); err != nil {
		return nil, err
	}
	r.logger.Info("email_template.create", "template_id", tpl.ID, "name", tpl.Name, "active", tpl.IsActive)
	return &tpl, nil
}

func (r *emailTemplateRepository) List(ctx context.Context) ([]*entity.EmailTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.EmailTemplate, 0, len(templates))
	for id := range templates {
		t := templates[id]
		result = append(result, &t)
	}
	sortEmailTemplates(result)
	return result, nil
}

func (r *emailTemplateRepository) ListActive(ctx context.Context) ([]*entity.EmailTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.EmailTemplate, 0, len(templates))
	for id := range templates {
		t := templates[id]
		if t.IsActive {
			result = append(result, &t)
		}
	}
	sortEmailTemplates(result)
	return result, nil
}

func (r *emailTemplateRepository) Get(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	tpl, ok := templates[id]
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "email template "+id)
	}
	return &tpl, nil
}

func (r *emailTemplateRepository) Update(ctx context.Context, id string, upd entity.EmailTemplateUpdate) (*entity.EmailTemplate, error) {
	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	tpl, ok := templates[id]
	if !ok {
		return nil, common.WrapError(common.ErrNotFound, "email template "+id)
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
	if upd.MatchingCriteria != nil {
		tpl.MatchingCriteria = *upd.MatchingCriteria
	}
	if upd.ExtractionFields != nil {
		tpl.ExtractionFields = withExtractionFieldIDs(*upd.ExtractionFields)
	}
	if upd.IsActive != nil {
		tpl.IsActive = *upd.IsActive
	}
	tpl.UpdatedDate = r.now().UTC()

	templates[id] = tpl
	if err := r.save(ctx, templates); err != nil {
		return nil, err
	}
	r.logger.Info("email_template.update", "template_id", id)
	return &tpl, nil
}

func (r *emailTemplateRepository) Delete(ctx context.Context, id string) error {
	templates, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := templates[id]; !ok {
		return common.WrapError(common.ErrNotFound, "email template "+id)
	}
	delete(templates, id)
	if err := r.save(ctx, templates); err != nil {
		return err
	}
	r.logger.Info("email_template.delete", "template_id", id)
	return nil
}

func (r *emailTemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	templates, err := r.load(ctx)
	if err != nil {
		return err
	}
	tpl, ok := templates[id]
	if !ok {
		return common.WrapError(common.ErrNotFound, "email template "+id)
	}
	tpl.UsageCount++
	tpl.UpdatedDate = r.now().UTC()
	templates[id] = tpl
	return r.save(ctx, templates)
}

func sortEmailTemplates(templates []*entity.EmailTemplate) {
	sort.Slice(templates, func(i, j int) bool {
		return strings.ToLower(templates[i].Name) < strings.ToLower(templates[j].Name)
	})
}

func withExtractionFieldIDs(fields []entity.EmailExtractionField) []entity.EmailExtractionField {
	out := make([]entity.EmailExtractionField, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		out[i] = f
	}
	return out
}
