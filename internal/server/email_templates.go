package server

import (
	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/match"
)

type createEmailTemplateRequest struct {
	Name             string                        `json:"name" binding:"required"`
	Description      string                        `json:"description"`
	MatchingCriteria entity.EmailMatchingCriteria  `json:"matching_criteria"`
	ExtractionFields []entity.EmailExtractionField `json:"extraction_fields"`
	IsActive         *bool                         `json:"is_active"`
	CreatedBy        string                        `json:"created_by"`
}

func (h *handlers) createEmailTemplate(c *gin.Context) {
	var req createEmailTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	tpl, err := h.cfg.EmailTemplates.Create(c.Request.Context(), entity.EmailTemplate{
		Name:             req.Name,
		Description:      req.Description,
		MatchingCriteria: req.MatchingCriteria,
		ExtractionFields: req.ExtractionFields,
		IsActive:         active,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) listEmailTemplates(c *gin.Context) {
	templates, err := h.cfg.EmailTemplates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}

func (h *handlers) getEmailTemplate(c *gin.Context) {
	tpl, err := h.cfg.EmailTemplates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) updateEmailTemplate(c *gin.Context) {
	var upd entity.EmailTemplateUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	tpl, err := h.cfg.EmailTemplates.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) deleteEmailTemplate(c *gin.Context) {
	if err := h.cfg.EmailTemplates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": c.Param("id")})
}

type testMatchRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// testMatchEmailTemplate runs the matcher for one template in isolation,
// returning reasons even at confidence 0.
func (h *handlers) testMatchEmailTemplate(c *gin.Context) {
	var req testMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	tpl, err := h.cfg.EmailTemplates.Get(c.Request.Context(), req.TemplateID)
	if err != nil {
		respondError(c, err)
		return
	}
	result := match.ScoreTemplate(tpl, match.EmailInput{
		Sender:  req.Sender,
		Subject: req.Subject,
		Body:    req.Body,
	})
	respondOK(c, result)
}
