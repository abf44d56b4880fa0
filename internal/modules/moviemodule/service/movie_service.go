// Package service implements the movie catalog operations
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mantonx/titleseeker/internal/api"
	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/filters"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/quickmovies"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/repository"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/mantonx/titleseeker/internal/types"
)

const noMainGenre = "No main genre"

// Options carries the collaborators of MovieService.
// Assets and Sheets are optional.
type Options struct {
	Repository   *repository.MovieRepository
	Transactions services.TransactionService
	Catalog      services.CatalogService
	People       services.PeopleService
	Assets       services.AssetService
	Sheets       services.SheetsService
	QuickMovies  *quickmovies.Store
	SyncOnCreate bool
	Now          func() time.Time
}

// MovieService implements every movie endpoint
type MovieService struct {
	repo         *repository.MovieRepository
	tx           services.TransactionService
	catalog      services.CatalogService
	people       services.PeopleService
	assets       services.AssetService
	sheets       services.SheetsService
	quick        *quickmovies.Store
	syncOnCreate bool
	now          func() time.Time
}

// NewMovieService creates a new movie service
func NewMovieService(opts Options) *MovieService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MovieService{
		repo:         opts.Repository,
		tx:           opts.Transactions,
		catalog:      opts.Catalog,
		people:       opts.People,
		assets:       opts.Assets,
		sheets:       opts.Sheets,
		quick:        opts.QuickMovies,
		syncOnCreate: opts.SyncOnCreate,
		now:          now,
	}
}

// List returns the movie previews of one page. With a user only the movies
// they rated are listed, each carrying the user's score.
func (s *MovieService) List(ctx context.Context, user *database.User, q movietypes.ListQuery, page api.PageParams) (api.Page[movietypes.MoviePreview], error) {
	if user != nil {
		rated, total, err := s.repo.ListRatedBy(ctx, user.ID, q.SortBy, q.SortOrder, page.Size, page.Offset())
		if err != nil {
			return api.Page[movietypes.MoviePreview]{}, apperrors.NewDatabaseError("list rated movies", err)
		}
		movies := make([]database.Movie, 0, len(rated))
		scores := make(map[uint]float64, len(rated))
		for _, r := range rated {
			movies = append(movies, r.Movie)
			scores[r.Movie.ID] = r.Rating
		}
		items, err := s.previews(ctx, movies, scores, q.Lang, true)
		if err != nil {
			return api.Page[movietypes.MoviePreview]{}, err
		}
		return api.NewPage(items, total, page), nil
	}

	movies, total, err := s.repo.List(ctx, filters.Condition{}, q.SortBy, q.SortOrder, page.Size, page.Offset())
	if err != nil {
		return api.Page[movietypes.MoviePreview]{}, apperrors.NewDatabaseError("list movies", err)
	}
	items, err := s.previews(ctx, movies, nil, q.Lang, true)
	if err != nil {
		return api.Page[movietypes.MoviePreview]{}, err
	}
	return api.NewPage(items, total, page), nil
}

// SuperSearch lists movies matching the percentage and membership filters.
// With a user each preview carries the user's rating of that movie.
func (s *MovieService) SuperSearch(ctx context.Context, user *database.User, params filters.Params, q movietypes.ListQuery, page api.PageParams) (api.Page[movietypes.MoviePreview], error) {
	cond, err := filters.Build(ctx, s.repo.GetDB(), params)
	if err != nil {
		return api.Page[movietypes.MoviePreview]{}, apperrors.NewDatabaseError("build super search", err)
	}
	movies, total, err := s.repo.List(ctx, cond, q.SortBy, q.SortOrder, page.Size, page.Offset())
	if err != nil {
		return api.Page[movietypes.MoviePreview]{}, apperrors.NewDatabaseError("super search", err)
	}

	var scores map[uint]float64
	if user != nil {
		ids := make([]uint, len(movies))
		for i := range movies {
			ids[i] = movies[i].ID
		}
		if scores, err = s.repo.UserScores(ctx, user.ID, ids); err != nil {
			return api.Page[movietypes.MoviePreview]{}, apperrors.NewDatabaseError("load user ratings", err)
		}
	}
	items, err := s.previews(ctx, movies, scores, q.Lang, false)
	if err != nil {
		return api.Page[movietypes.MoviePreview]{}, err
	}
	return api.NewPage(items, total, page), nil
}

func (s *MovieService) previews(ctx context.Context, movies []database.Movie, scores map[uint]float64, lang types.Language, withGenre bool) ([]movietypes.MoviePreview, error) {
	var genres map[uint]string
	if withGenre {
		var err error
		if genres, err = s.mainGenres(ctx, movies, lang); err != nil {
			return nil, err
		}
	}

	out := make([]movietypes.MoviePreview, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		p := movietypes.MoviePreview{
			Key:         m.Key,
			Title:       m.Translation(lang).Title,
			Poster:      m.Poster,
			ReleaseDate: database.FormatDate(m.ReleaseDate),
			Duration:    database.FormatDuration(m.Duration, lang),
			Rating:      scores[m.ID],
		}
		if withGenre {
			p.MainGenre = genres[m.ID]
		}
		out = append(out, p)
	}
	return out, nil
}

// mainGenres labels every movie with its strongest genre as "Name (pct%)"
func (s *MovieService) mainGenres(ctx context.Context, movies []database.Movie, lang types.Language) (map[uint]string, error) {
	ids := make([]uint, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	matches, err := s.repo.MainGenreMatches(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load main genres", err)
	}

	out := make(map[uint]string, len(ids))
	for _, id := range ids {
		match, ok := matches[id]
		if !ok || match.Genre == nil {
			out[id] = noMainGenre
			continue
		}
		out[id] = fmt.Sprintf("%s (%s%%)", match.Genre.Translation(lang).Name, formatPercent(match.PercentageMatch))
	}
	return out, nil
}

// formatPercent keeps one decimal for whole numbers: 90 -> "90.0", 33.25 -> "33.25"
func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Filters returns every filter menu of the super search panel
func (s *MovieService) Filters(ctx context.Context, lang types.Language) (*movietypes.FiltersOut, error) {
	f, err := s.catalog.Filters(ctx, lang)
	if err != nil {
		return nil, err
	}
	p, err := s.people.People(ctx, lang)
	if err != nil {
		return nil, err
	}
	return &movietypes.FiltersOut{
		Filters:    *f,
		Actors:     p.Actors,
		Directors:  p.Directors,
		Characters: p.Characters,
	}, nil
}

// GenresSubgenres returns the genre tree used by the genre editor
func (s *MovieService) GenresSubgenres(ctx context.Context, lang types.Language) ([]types.GenreItem, error) {
	genres, err := s.catalog.GenresWithSubgenres(ctx, lang)
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return nil, apperrors.NewNotFoundError("Genres not found")
	}
	return genres, nil
}

func (s *MovieService) getMovie(ctx context.Context, load func(context.Context, string) (*database.Movie, error), key string) (*database.Movie, error) {
	movie, err := load(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, apperrors.NewNotFoundError("Movie not found")
		}
		return nil, apperrors.NewDatabaseError("get movie", err)
	}
	return movie, nil
}
