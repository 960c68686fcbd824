package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/common"
	"github.com/digitool/docparse/internal/entity"
	"github.com/digitool/docparse/internal/pipeline"
)

// checkEmail scans the caller's mailbox for unread messages with PDF
// attachments.
func (h *handlers) checkEmail(c *gin.Context) {
	result, err := h.cfg.Scanner.Scan(c.Request.Context(), userID(c), userEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *handlers) emailStatus(c *gin.Context) {
	status, err := h.cfg.EmailDocs.GetScanStatus(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, status)
}

func (h *handlers) listEmailDocuments(c *gin.Context) {
	docs, err := h.cfg.EmailDocs.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"documents": docs, "count": len(docs)})
}

func (h *handlers) listEmailDocumentPdfs(c *gin.Context) {
	doc, err := h.cfg.EmailDocs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if doc.UserID != userID(c) {
		respondError(c, common.WrapError(common.ErrNotFound, "email document "+c.Param("id")))
		return
	}
	respondOK(c, gin.H{"pdfs": doc.PDFs, "count": len(doc.PDFs)})
}

type processDocumentRequest struct {
	TemplateID      string `json:"template_id"`
	EmailTemplateID string `json:"email_template_id"`
}

// processEmailDocument triggers targeted extraction for one scanned
// document, optionally naming the template to drive the prompt.
func (h *handlers) processEmailDocument(c *gin.Context) {
	var req processDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	doc, err := h.cfg.Processor.ProcessEmailDocument(c.Request.Context(), pipeline.ProcessRequest{
		EmailDocID:      c.Param("id"),
		UserID:          userID(c),
		UserEmail:       userEmail(c),
		TemplateID:      req.TemplateID,
		EmailTemplateID: req.EmailTemplateID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

type emailConfigRequest struct {
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Folder   string `json:"folder"`
}

func (h *handlers) putEmailConfig(c *gin.Context) {
	var req emailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.WrapError(common.ErrInvalidInput, err.Error()))
		return
	}
	cfg := entity.MailboxConfig{
		UserID:   userID(c),
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
		Folder:   req.Folder,
	}
	if err := h.cfg.EmailDocs.PutMailboxConfig(c.Request.Context(), cfg); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"saved": true})
}

func (h *handlers) getEmailConfig(c *gin.Context) {
	cfg, err := h.cfg.EmailDocs.GetMailboxConfig(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	// Never echo the password back.
	cfg.Password = ""
	respondOK(c, cfg)
}

func (h *handlers) deleteEmailConfig(c *gin.Context) {
	if err := h.cfg.EmailDocs.DeleteMailboxConfig(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// testEmailConfig dials the configured mailbox and reports success without
// scanning anything. The outcome is recorded on the stored config.
func (h *handlers) testEmailConfig(c *gin.Context) {
	ctx := c.Request.Context()
	cfg, err := h.cfg.EmailDocs.GetMailboxConfig(ctx, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now().UTC()
	cfg.LastTest = &now
	mbox, dialErr := h.cfg.Dialer.Dial(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Folder)
	if dialErr != nil {
		cfg.TestStatus = "failed"
	} else {
		cfg.TestStatus = "ok"
		if err := mbox.Close(); err != nil {
			h.cfg.Logger.Warn("email.config_test.close_failed", "user_id", userID(c), "error", err)
		}
	}
	if err := h.cfg.EmailDocs.PutMailboxConfig(ctx, *cfg); err != nil {
		h.cfg.Logger.Warn("email.config_test.save_failed", "user_id", userID(c), "error", err)
	}
	if dialErr != nil {
		respondError(c, dialErr)
		return
	}
	respondOK(c, gin.H{"status": "ok", "host": cfg.Host})
}
