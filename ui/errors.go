package ui

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"goeda/internal/errors"
)

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound, errors.CodeColumnNotFound:
		return http.StatusNotFound
	case errors.CodeDuplicateColumnName:
		return http.StatusConflict
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeUnknownType, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeLoadError, errors.CodeStrategyNotApplicable, errors.CodeInvalidCustomValue, errors.CodeImputationFailed:
		return http.StatusUnprocessableEntity
	case errors.CodeCancelled:
		return http.StatusRequestTimeout
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error(), "code": errors.GetCode(err)}
	if col := errors.GetColumn(err); col != "" {
		body["column"] = col
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(err, "request failed", "method", c.Request.Method, "path", c.FullPath())
	}
	c.JSON(status, body)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.respondError(c, errors.InvalidInput(err.Error()))
}
