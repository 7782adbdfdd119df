package ui

import (
	"net/http"
	"time"

	"lcgwalk/internal/errors"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// statusFor maps domain and application errors onto HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(errors.Classify(err)) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeValidationError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	err = errors.Classify(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
