package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/usermodule/service"
	"github.com/mantonx/titleseeker/internal/types"
)

// Handler provides HTTP handlers for user operations
type Handler struct {
	users *service.UserService
}

// NewHandler creates a new API handler
func NewHandler(users *service.UserService) *Handler {
	return &Handler{users: users}
}

func bindRate(c *gin.Context) (service.RateRequest, bool) {
	var req service.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
		return req, false
	}
	return req, true
}

// RateMovie handles POST /api/users/rate-movie/:user_uuid
func (h *Handler) RateMovie(c *gin.Context) {
	req, ok := bindRate(c)
	if !ok {
		return
	}
	if err := h.users.RateMovie(c.Request.Context(), middleware.UserFromContext(c), req); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating successfully created"})
}

// UpdateRating handles PUT /api/users/rate-movie/:user_uuid
func (h *Handler) UpdateRating(c *gin.Context) {
	req, ok := bindRate(c)
	if !ok {
		return
	}
	if err := h.users.UpdateRating(c.Request.Context(), middleware.UserFromContext(c), req); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating successfully updated"})
}

// GetTimeChart handles GET /api/users/time-rate-movies
func (h *Handler) GetTimeChart(c *gin.Context) {
	chart, err := h.users.TimeChart(c.Request.Context(), middleware.UserFromContext(c), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// GetReport handles GET /api/users/genre-radar-chart
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.users.Report(c.Request.Context(), middleware.UserFromContext(c), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetAll handles GET /api/users/all/
func (h *Handler) GetAll(c *gin.Context) {
	users, err := h.users.All(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetLanguage handles PUT /api/users/language/:user_uuid
func (h *Handler) SetLanguage(c *gin.Context) {
	lang := types.Language(c.Query("lang"))
	if lang != types.LanguageUK && lang != types.LanguageEN {
		api.RespondWithError(c, apperrors.NewValidationError("lang must be uk or en"))
		return
	}
	if err := h.users.SetLanguage(c.Request.Context(), middleware.UserFromContext(c), lang); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Language successfully updated"})
}

// UpdateVisualProfile handles PUT /api/users/title-visual-profile/:user_uuid
func (h *Handler) UpdateVisualProfile(c *gin.Context) {
	var req service.VisualProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	if err := h.users.UpdateVisualProfile(c.Request.Context(), middleware.UserFromContext(c), req); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visual profile successfully updated"})
}
