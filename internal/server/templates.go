package server

import (
	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
)

type createTemplateRequest struct {
	Name         string               `json:"name" binding:"required"`
	Description  string               `json:"description"`
	TargetFields []entity.TargetField `json:"target_fields"`
}

func (h *handlers) createTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	tpl, err := h.cfg.Templates.Create(c.Request.Context(), req.Name, req.Description, req.TargetFields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) listTemplates(c *gin.Context) {
	templates, err := h.cfg.Templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}

func (h *handlers) getTemplate(c *gin.Context) {
	tpl, err := h.cfg.Templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) updateTemplate(c *gin.Context) {
	var upd entity.PdfTemplateUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	tpl, err := h.cfg.Templates.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

func (h *handlers) deleteTemplate(c *gin.Context) {
	if err := h.cfg.Templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": c.Param("id")})
}
