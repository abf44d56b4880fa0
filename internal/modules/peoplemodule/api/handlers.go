package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/modules/peoplemodule/service"
	"github.com/mantonx/titleseeker/internal/types"
)

const maxQueryLength = 128

// Handler serves the people endpoints
type Handler struct {
	people *service.PeopleService
}

// NewHandler creates a new API handler
func NewHandler(people *service.PeopleService) *Handler {
	return &Handler{people: people}
}

// List returns a handler for GET /api/actors/ or /api/directors/
func (h *Handler) List(kind service.Kind) gin.HandlerFunc {
	field := "actors"
	if kind == service.KindDirector {
		field = "directors"
	}
	return func(c *gin.Context) {
		people, err := h.people.List(c.Request.Context(), kind, api.Lang(c))
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{field: people})
	}
}

// Create returns a handler for the multipart person create endpoints
func (h *Handler) Create(kind service.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PersonRequest
		if err := c.ShouldBind(&req); err != nil {
			api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
			return
		}
		file, err := c.FormFile("file")
		if err != nil {
			api.RespondWithError(c, apperrors.NewValidationError("file is required"))
			return
		}

		out, err := h.people.Create(c.Request.Context(), kind, req, file, api.Lang(c))
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

// GetTopActors handles GET /api/people/actors-with-most-movies
func (h *Handler) GetTopActors(c *gin.Context) {
	actors, err := h.people.TopActors(c.Request.Context(), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actors": actors})
}

// Search returns a handler for the people quick searches
func (h *Handler) Search(kind types.SearchType) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("query")
		if len(query) > maxQueryLength {
			api.RespondWithError(c, apperrors.NewValidationError("Query is too long"))
			return
		}
		results, err := h.people.Search(c.Request.Context(), kind, query)
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
