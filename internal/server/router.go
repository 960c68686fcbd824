package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/export"
	"github.com/digitool/docparse/internal/mail"
	"github.com/digitool/docparse/internal/pipeline"
	"github.com/digitool/docparse/internal/repository"
	"github.com/digitool/docparse/internal/storage"
)

type RouterConfig struct {
	CORSOrigins []string

	Templates      repository.TemplateRepository
	EmailTemplates repository.EmailTemplateRepository
	Documents      repository.DocumentRepository
	EmailDocs      repository.EmailDocumentRepository
	Scanner        *pipeline.Scanner
	Processor      *pipeline.Processor
	Exporter       *export.Service
	Dialer         mail.Dialer
	Store          storage.Store
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", headerUserID, headerUserEmail},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{cfg: cfg}

	api := router.Group("/api")
	api.Use(identity())
	{
		templates := api.Group("/templates")
		{
			templates.POST("", h.createTemplate)
			templates.GET("", h.listTemplates)
			templates.GET("/:id", h.getTemplate)
			templates.PUT("/:id", h.updateTemplate)
			templates.DELETE("/:id", h.deleteTemplate)
		}

		emailTemplates := api.Group("/email-templates")
		{
			emailTemplates.POST("", h.createEmailTemplate)
			emailTemplates.GET("", h.listEmailTemplates)
			emailTemplates.GET("/:id", h.getEmailTemplate)
			emailTemplates.PUT("/:id", h.updateEmailTemplate)
			emailTemplates.DELETE("/:id", h.deleteEmailTemplate)
			emailTemplates.POST("/test-match", h.testMatchEmailTemplate)
		}

		documents := api.Group("/documents")
		{
			documents.GET("", h.listDocuments)
			documents.GET("/:id", h.getDocument)
			documents.PUT("/:id", h.correctDocument)
			documents.DELETE("/:id", h.deleteDocument)
			documents.POST("/delete-batch", h.deleteDocumentBatch)
			documents.POST("/export-batch", h.exportBatch)
			documents.GET("/:id/pdf", h.downloadDocumentPdf)
		}

		// Registered outside /documents: a static "exports" segment cannot
		// share that level with the ":id" wildcard.
		api.GET("/exports/:filename", h.downloadExport)

		email := api.Group("/email")
		{
			email.POST("/check", h.checkEmail)
			email.GET("/status", h.emailStatus)
			email.GET("/documents", h.listEmailDocuments)
			email.GET("/documents/:id/pdfs", h.listEmailDocumentPdfs)
			email.POST("/documents/:id/process", h.processEmailDocument)
			email.GET("/config", h.getEmailConfig)
			email.PUT("/config", h.putEmailConfig)
			email.DELETE("/config", h.deleteEmailConfig)
			email.POST("/config/test", h.testEmailConfig)
		}

		api.POST("/pdf/extract", h.extractUpload)
	}

	return router
}

type handlers struct {
	cfg RouterConfig
}
