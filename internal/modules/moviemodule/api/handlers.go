package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/middleware"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/filters"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/service"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/types"
)

// Handler provides HTTP handlers for movie operations
type Handler struct {
	movies *service.MovieService
}

// NewHandler creates a new API handler
func NewHandler(movies *service.MovieService) *Handler {
	return &Handler{movies: movies}
}

func listQuery(c *gin.Context) movietypes.ListQuery {
	return movietypes.ListQuery{
		SortBy:    types.ParseSortBy(c.Query("sort_by"), types.SortByRatedAt),
		SortOrder: types.ParseSortOrder(c.Query("sort_order"), types.SortDesc),
		Lang:      api.Lang(c),
	}
}

// GetMovies handles GET /api/movies/
func (h *Handler) GetMovies(c *gin.Context) {
	page, err := h.movies.List(c.Request.Context(), middleware.UserFromContext(c), listQuery(c), api.ParsePageParams(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetMovie handles GET /api/movies/:movie_key
func (h *Handler) GetMovie(c *gin.Context) {
	movie, err := h.movies.Detail(c.Request.Context(), c.Param("movie_key"), api.Lang(c), middleware.UserFromContext(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// SuperSearch handles GET /api/movies/super-search/
func (h *Handler) SuperSearch(c *gin.Context) {
	params := filters.Params{
		Genres:          api.QueryList(c, "genre"),
		Subgenres:       api.QueryList(c, "subgenre"),
		Specifications:  api.QueryList(c, "specification"),
		Keywords:        api.QueryList(c, "keyword"),
		ActionTimes:     api.QueryList(c, "action_time"),
		Actors:          api.QueryList(c, "actor"),
		Directors:       api.QueryList(c, "director"),
		Characters:      api.QueryList(c, "character"),
		SharedUniverses: api.QueryList(c, "shared_universe"),
		VisualProfiles:  api.QueryList(c, "visual_profile"),
		ExactMatch:      api.QueryBool(c, "exact_match"),
		InnerExactMatch: api.QueryBool(c, "inner_exact_match"),
	}
	page, err := h.movies.SuperSearch(c.Request.Context(), middleware.UserFromContext(c), params, listQuery(c), api.ParsePageParams(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Search handles GET /api/movies/search/
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if len(query) > 128 {
		api.RespondWithError(c, apperrors.NewValidationError("Query is too long"))
		return
	}
	results, err := h.movies.Search(c.Request.Context(), query, types.SearchType(c.DefaultQuery("title_type", string(types.SearchMovies))), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetFilters handles GET /api/movies/filters/
func (h *Handler) GetFilters(c *gin.Context) {
	out, err := h.movies.Filters(c.Request.Context(), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetPreCreate handles GET /api/movies/pre-create/
func (h *Handler) GetPreCreate(c *gin.Context) {
	out, err := h.movies.PreCreate(c.Request.Context(), api.Lang(c), c.Query("quick_movie_key"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateMovie handles POST /api/movies/.
// Accepts a JSON body, or a multipart form with a form_data JSON field
// and an optional poster file.
func (h *Handler) CreateMovie(c *gin.Context) {
	var req movietypes.CreateMovieRequest
	if c.ContentType() == "multipart/form-data" {
		if err := json.Unmarshal([]byte(c.PostForm("form_data")), &req); err != nil {
			api.RespondWithError(c, apperrors.NewValidationError("Invalid form_data: "+err.Error()))
			return
		}
		if req.Key == "" || req.TitleUK == "" || req.TitleEN == "" {
			api.RespondWithError(c, apperrors.NewValidationError("key, title_uk and title_en are required"))
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	poster, _ := c.FormFile("file")
	movie, err := h.movies.Create(c.Request.Context(), middleware.UserFromContext(c), req, poster, api.QueryBool(c, "is_quick_movie"), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": movie.Key, "message": "Movie successfully created"})
}

// QuickAdd handles POST /api/movies/quick-add/
func (h *Handler) QuickAdd(c *gin.Context) {
	var req movietypes.QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	if err := h.movies.QuickAdd(c.Request.Context(), req, api.Lang(c)); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": req.Key, "message": "Movie successfully added"})
}

// GetRandom handles GET /api/movies/random/
func (h *Handler) GetRandom(c *gin.Context) {
	movies, err := h.movies.Random(c.Request.Context(), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

// GetSimilar handles GET /api/movies/similar/
func (h *Handler) GetSimilar(c *gin.Context) {
	movies, err := h.movies.Similar(c.Request.Context(), c.Query("movie_key"), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"similar_movies": movies})
}

// GetMoviesToAdd handles GET /api/movies/movies-to-add/
func (h *Handler) GetMoviesToAdd(c *gin.Context) {
	movies, err := h.movies.MoviesToAdd()
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quick_movies": movies})
}

// GetGenresSubgenres handles GET /api/movies/genres-subgenres/
func (h *Handler) GetGenresSubgenres(c *gin.Context) {
	genres, err := h.movies.GenresSubgenres(c.Request.Context(), api.Lang(c))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// UpdateGenresSubgenres handles PUT /api/movies/genres-subgenres/
func (h *Handler) UpdateGenresSubgenres(c *gin.Context) {
	var req movietypes.GenresUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	if err := h.movies.UpdateGenres(c.Request.Context(), c.Query("movie_key"), req); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Genres successfully updated"})
}

// UpdateItems returns a handler replacing one taxonomy set of a movie
func (h *Handler) UpdateItems(kind service.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req movietypes.ItemsUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.RespondWithError(c, apperrors.NewValidationError(err.Error()))
			return
		}
		if err := h.movies.UpdateItems(c.Request.Context(), kind, req); err != nil {
			api.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Movie successfully updated"})
	}
}
