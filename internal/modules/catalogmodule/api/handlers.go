package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/modules/catalogmodule/service"
)

// Handler serves the taxonomy endpoints
type Handler struct {
	catalog *service.CatalogService
}

// NewHandler creates a new API handler
func NewHandler(catalog *service.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

// Create returns a handler storing one entity of kind
func (h *Handler) Create(kind service.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
			return
		}
		if kind == service.KindSubgenre && req.ParentGenreKey == "" {
			api.RespondWithError(c, apperrors.NewValidationError("parent_genre_key is required"))
			return
		}

		out, err := h.catalog.Create(c.Request.Context(), kind, req, api.Lang(c))
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

// GetCategories handles GET /api/visual-profile/categories/
func (h *Handler) GetCategories(c *gin.Context) {
	items, err := h.catalog.CategoriesByName(c.Request.Context(), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
