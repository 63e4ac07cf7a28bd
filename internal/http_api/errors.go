package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInvalidSignature),
		errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// errorMessage is the client-facing text. Upstream and internal failures
// are reported generically.
func errorMessage(status int, err error) string {
	switch {
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return "Upstream service unavailable"
	case status == http.StatusInternalServerError:
		return "Internal server error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Access denied"
	}
	return err.Error()
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
			"error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   errorMessage(status, err),
	})
}

func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	s.respondError(c, err)
	c.Abort()
}

// respondBindError reports a request that failed binding or validation.
func (s *HTTPServer) respondBindError(c *gin.Context, err error) {
	s.logger.Debug("Invalid request", "path", c.Request.URL.Path, "error", err)
	body := gin.H{
		"success": false,
		"error":   "Invalid request: " + err.Error(),
	}
	if fields := validation.FieldErrors(err); fields != nil {
		body["fields"] = fields
	}
	c.JSON(http.StatusBadRequest, body)
}
