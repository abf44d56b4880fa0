package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/service"
)

// RegisterRoutes registers all movie module routes
func RegisterRoutes(router *gin.Engine, handler *Handler, users *middleware.UserResolver) {
	movies := router.Group("/api/movies")
	base := movies.BasePath()

	route := func(method, path, description string, handlers ...gin.HandlerFunc) {
		movies.Handle(method, path, handlers...)
		apiroutes.Register(base+path, method, description)
	}

	route("GET", "/", "List movie previews, rated by the user when user_uuid is given.", users.CurrentUser(), handler.GetMovies)
	route("POST", "/", "Create a movie with its links, owner rating and visual profile.", users.RequireOwner(), handler.CreateMovie)
	route("GET", "/super-search/", "Filter movies by percentage matches and people.", users.CurrentUser(), handler.SuperSearch)
	route("GET", "/search/", "Quick search by title.", handler.Search)
	route("GET", "/filters/", "List every filter option.", handler.GetFilters)
	route("GET", "/pre-create/", "Options for the movie creation form.", users.RequireOwner(), handler.GetPreCreate)
	route("POST", "/quick-add/", "Store a movie to be created later.", users.RequireOwner(), handler.QuickAdd)
	route("GET", "/random/", "Random movies for the carousel.", handler.GetRandom)
	route("GET", "/similar/", "Movies similar to movie_key.", handler.GetSimilar)
	route("GET", "/movies-to-add/", "List quick-added movies.", users.RequireAdmin(), handler.GetMoviesToAdd)
	route("GET", "/genres-subgenres/", "List genres with their subgenres.", users.RequireAdmin(), handler.GetGenresSubgenres)
	route("PUT", "/genres-subgenres/", "Replace the genres and subgenres of movie_key.", users.RequireAdmin(), handler.UpdateGenresSubgenres)
	route("PUT", "/specifications/", "Replace the specifications of a movie.", users.RequireAdmin(), handler.UpdateItems(service.ItemSpecifications))
	route("PUT", "/keywords/", "Replace the keywords of a movie.", users.RequireAdmin(), handler.UpdateItems(service.ItemKeywords))
	route("PUT", "/action-times/", "Replace the action times of a movie.", users.RequireAdmin(), handler.UpdateItems(service.ItemActionTimes))
	route("GET", "/:movie_key", "Movie detail page.", users.CurrentUser(), handler.GetMovie)
}
