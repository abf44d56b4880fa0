// Package api provides shared HTTP helpers for module handlers
package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"gorm.io/gorm"
)

// RespondWithError aborts the request with err rendered as JSON.
// Errors that are not AppErrors become a 404 for missing rows and a 500 otherwise.
func RespondWithError(c *gin.Context, err error) {
	ToAppError(err).ToGinResponse(c)
}

func ToAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError("Not found")
	default:
		return apperrors.NewInternalError("Internal server error", err)
	}
}

// ErrorMiddleware turns a panicking handler into a JSON 500
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			logger.Error("Handler panicked", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			RespondWithError(c, apperrors.NewInternalError("panic recovered", err))
		}()
		c.Next()
	}
}
