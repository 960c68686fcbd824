package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
)

func (h *handlers) listDocuments(c *gin.Context) {
	filter := entity.DocumentFilter{
		Source:     constants.Source(c.Query("source")),
		Status:     constants.DocumentStatus(c.Query("status")),
		TemplateID: c.Query("template_id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		UserID:     userID(c),
	}
	docs, err := h.cfg.Documents.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"documents": docs, "count": len(docs)})
}

func (h *handlers) getDocument(c *gin.Context) {
	doc, err := h.cfg.Documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

type correctDocumentRequest struct {
	Corrections map[string]any `json:"corrections" binding:"required"`
}

// correctDocument stores a user overlay; the machine extraction underneath
// is preserved.
func (h *handlers) correctDocument(c *gin.Context) {
	var req correctDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	doc, err := h.cfg.Documents.ApplyCorrections(c.Request.Context(), c.Param("id"), req.Corrections)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h *handlers) deleteDocument(c *gin.Context) {
	if err := h.cfg.Documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": c.Param("id")})
}

type deleteBatchRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required"`
}

func (h *handlers) deleteDocumentBatch(c *gin.Context) {
	var req deleteBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	deleted, err := h.cfg.Documents.DeleteBatch(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted_count": deleted})
}

type exportBatchRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required"`
}

func (h *handlers) exportBatch(c *gin.Context) {
	var req exportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	result, _, err := h.cfg.Exporter.ExportBatch(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *handlers) downloadDocumentPdf(c *gin.Context) {
	doc, err := h.cfg.Documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if doc.PdfStorageKey == "" {
		respondError(c, common.WrapError(common.ErrNotFound, "document has no stored PDF"))
		return
	}
	data, ok, err := h.cfg.Store.GetBlob(c.Request.Context(), doc.PdfStorageKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, common.WrapError(common.ErrNotFound, "blob "+doc.PdfStorageKey))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+doc.OriginalFilename)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *handlers) downloadExport(c *gin.Context) {
	filename := c.Param("filename")
	data, err := h.cfg.Exporter.GetExport(c.Request.Context(), filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
