// Package server exposes the HTTP API over gin. Authentication is delegated
// to a fronting proxy; handlers trust the identity headers it sets.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/digitool/docparse/internal/common"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// respondError maps the application error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, common.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrDuplicateName):
		status, code = http.StatusConflict, "duplicate_name"
	case errors.Is(err, common.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, common.ErrMixedTemplates):
		status, code = http.StatusBadRequest, "mixed_templates"
	case errors.Is(err, common.ErrModelUnavailable):
		status, code = http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, common.ErrTransportFailure):
		status, code = http.StatusBadGateway, "transport_failure"
	}
	c.JSON(status, errorEnvelope{Error: apiError{Message: err.Error(), Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
