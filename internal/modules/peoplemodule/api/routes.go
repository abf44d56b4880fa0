package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/peoplemodule/service"
	"github.com/mantonx/titleseeker/internal/types"
)

// RegisterRoutes registers the actor, director and people routes
func RegisterRoutes(router *gin.Engine, handler *Handler, users *middleware.UserResolver) {
	root := router.Group("/api")
	base := root.BasePath()

	route := func(method, path, description string, handlers ...gin.HandlerFunc) {
		root.Handle(method, path, handlers...)
		apiroutes.Register(base+path, method, description)
	}

	route("GET", "/actors/", "List every actor.", handler.List(service.KindActor))
	route("GET", "/directors/", "List every director.", handler.List(service.KindDirector))
	route("POST", "/people/actors/", "Create an actor with an avatar.", users.RequireAdmin(), handler.Create(service.KindActor))
	route("POST", "/people/directors/", "Create a director with an avatar.", users.RequireAdmin(), handler.Create(service.KindDirector))
	route("GET", "/people/actors-with-most-movies", "Actors appearing in the most movies.", handler.GetTopActors)
	route("GET", "/people/search-actors/", "Quick search of actors by name.", handler.Search(types.SearchActors))
	route("GET", "/people/search-directors/", "Quick search of directors by name.", handler.Search(types.SearchDirectors))
	route("GET", "/people/search-characters/", "Quick search of characters by name.", handler.Search(types.SearchCharacters))
}
