package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/logger"
)

// Code classifies an AppError
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL_ERROR"
	CodeDatabase   Code = "DATABASE_ERROR"
)

// AppError is returned by services for failures the client should see.
// Message goes to the client; Cause stays in the logs.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail rendered next to the message
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Status returns the HTTP status, defaulting to 500
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// ToGinResponse aborts c with {"detail", "code"} and the context, if any,
// under "details". Server errors are logged with their cause.
func (e *AppError) ToGinResponse(c *gin.Context) {
	status := e.Status()
	body := gin.H{"detail": e.Message, "code": e.Code}
	if len(e.Context) > 0 {
		body["details"] = e.Context
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "code", e.Code, "error", e.Error())
	} else {
		logger.Debug("Request rejected", "path", c.Request.URL.Path, "status", status, "detail", e.Message)
	}
	c.AbortWithStatusJSON(status, body)
}

func newError(code Code, status int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Cause: cause}
}

// NewValidationError reports a malformed request field or parameter
func NewValidationError(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message, nil)
}

// NewBadRequestError keeps the underlying cause for logging
func NewBadRequestError(message string, cause error) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message, cause)
}

func NewNotFoundError(message string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message, nil)
}

// NewConflictError reports a duplicate key or an existing rating
func NewConflictError(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message, nil)
}

func NewInternalError(message string, cause error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, message, cause)
}

// NewDatabaseError hides cause from the client and names the failed operation
func NewDatabaseError(operation string, cause error) *AppError {
	return newError(CodeDatabase, http.StatusInternalServerError, "Database operation failed", cause).
		WithContext("operation", operation)
}
