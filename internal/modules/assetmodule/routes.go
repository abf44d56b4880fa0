package assetmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/types"
)

// Handler serves uploads and stored images
type Handler struct {
	assets *AssetService
}

// NewHandler creates a new asset handler
func NewHandler(assets *AssetService) *Handler {
	return &Handler{assets: assets}
}

// RegisterRoutes registers the file routes
func RegisterRoutes(router *gin.Engine, handler *Handler, users *middleware.UserResolver) {
	files := router.Group("/api/file")
	base := files.BasePath()

	route := func(method, path, description string, handlers ...gin.HandlerFunc) {
		files.Handle(method, path, handlers...)
		apiroutes.Register(base+path, method, description)
	}

	route("POST", "/upload-poster/:id", "Upload a movie poster.", users.RequireAdmin(), handler.Upload(types.AssetPosters))
	route("POST", "/upload-actor-avatar/:id", "Upload an actor avatar.", users.RequireAdmin(), handler.Upload(types.AssetActors))
	route("POST", "/upload-director-avatar/:id", "Upload a director avatar.", users.RequireAdmin(), handler.Upload(types.AssetDirectors))
	route("GET", "/posters/:filename", "Serve a poster, size=thumb for the thumbnail.", handler.Serve(types.AssetPosters))
	route("GET", "/actors/:filename", "Serve an actor avatar.", handler.Serve(types.AssetActors))
	route("GET", "/directors/:filename", "Serve a director avatar.", handler.Serve(types.AssetDirectors))
}

// Upload returns the handler storing a multipart "file" for kind
func (h *Handler) Upload(kind types.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			api.RespondWithError(c, apperrors.NewValidationError("id must be a positive integer"))
			return
		}
		file, err := c.FormFile("file")
		if err != nil {
			api.RespondWithError(c, apperrors.NewValidationError("file is required"))
			return
		}

		info, err := h.assets.Upload(c.Request.Context(), kind, uint(id), file)
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"info": info})
	}
}

// Serve returns the handler streaming a stored image of kind
func (h *Handler) Serve(kind types.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := h.assets.Resolve(kind, c.Param("filename"), c.Query("size") == "thumb")
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.File(path)
	}
}
