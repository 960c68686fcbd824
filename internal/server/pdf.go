package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/pipeline"
)

// 25 MB upload cap, matching typical mail attachment limits.
const maxUploadBytes = 25 << 20

// extractUpload accepts a multipart PDF upload and runs extraction
// immediately, optionally with a template named in the form field.
func (h *handlers) extractUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, "missing file field"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondError(c, common.WrapError(common.ErrInvalidInput, "file too large"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.cfg.Processor.ProcessUpload(c.Request.Context(), pipeline.UploadRequest{
		Filename:   fileHeader.Filename,
		Content:    content,
		TemplateID: c.PostForm("template_id"),
		UserID:     userID(c),
		UserEmail:  userEmail(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"message":        "File processed and data extracted by AI.",
		"file_name":      doc.OriginalFilename,
		"document_id":    doc.ID,
		"extracted_data": doc.ExtractedData,
	})
}
