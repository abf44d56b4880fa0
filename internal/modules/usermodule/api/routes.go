package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/apiroutes"
	"github.com/mantonx/titleseeker/internal/middleware"
)

// RegisterRoutes registers the user routes
func RegisterRoutes(router *gin.Engine, handler *Handler, users *middleware.UserResolver) {
	group := router.Group("/api/users")
	base := group.BasePath()

	route := func(method, path, description string, handlers ...gin.HandlerFunc) {
		group.Handle(method, path, handlers...)
		apiroutes.Register(base+path, method, description)
	}

	route("POST", "/rate-movie/:user_uuid", "Rate a movie.", users.RequireUser(), handler.RateMovie)
	route("PUT", "/rate-movie/:user_uuid", "Update the rating of a movie.", users.RequireUser(), handler.UpdateRating)
	route("GET", "/time-rate-movies", "Last 30 ratings of the user over time.", users.RequireUser(), handler.GetTimeChart)
	route("GET", "/genre-radar-chart", "Genre radar, best rated movies and rating activity.", users.RequireUser(), handler.GetReport)
	route("GET", "/all/", "List users with their rating activity.", users.RequireAdmin(), handler.GetAll)
	route("PUT", "/language/:user_uuid", "Set the preferred language.", users.RequireUser(), handler.SetLanguage)
	route("PUT", "/title-visual-profile/:user_uuid", "Edit the user's visual profile of a movie.", users.RequireUser(), handler.UpdateVisualProfile)
}
