package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/catalogmodule/service"
)

// RegisterRoutes registers the taxonomy routes. Every one of them is
// restricted to admins.
func RegisterRoutes(router *gin.Engine, handler *Handler, users *middleware.UserResolver) {
	root := router.Group("/api", users.RequireAdmin())
	base := root.BasePath()

	route := func(method, path, description string, h gin.HandlerFunc) {
		root.Handle(method, path, h)
		apiroutes.Register(base+path, method, description)
	}

	route("POST", "/genres/", "Create a genre.", handler.Create(service.KindGenre))
	route("POST", "/genres/subgenres/", "Create a subgenre under parent_genre_key.", handler.Create(service.KindSubgenre))
	route("POST", "/filters/specifications/", "Create a specification.", handler.Create(service.KindSpecification))
	route("POST", "/filters/keywords/", "Create a keyword.", handler.Create(service.KindKeyword))
	route("POST", "/filters/action-times/", "Create an action time.", handler.Create(service.KindActionTime))
	route("POST", "/characters/", "Create a character.", handler.Create(service.KindCharacter))
	route("POST", "/shared-universes/", "Create a shared universe.", handler.Create(service.KindSharedUniverse))
	route("GET", "/visual-profile/categories/", "List visual profile categories with their criteria.", handler.GetCategories)
	route("POST", "/visual-profile/category/", "Create a visual profile category.", handler.Create(service.KindCategory))
}
