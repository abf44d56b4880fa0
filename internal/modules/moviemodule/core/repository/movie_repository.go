// Package repository provides data access for movies
package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/filters"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

// ErrMovieNotFound is returned when no movie has the requested key
var ErrMovieNotFound = errors.New("movie not found")

// RatedMovie is a movie together with one user's score
type RatedMovie struct {
	Movie  database.Movie
	Rating float64
}

// MovieRepository handles all database operations for movies
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection for query building
func (r *MovieRepository) GetDB() *gorm.DB {
	return r.db
}

// Exists reports whether a movie with key is stored
func (r *MovieRepository) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&database.Movie{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check movie %s: %w", key, err)
	}
	return count > 0, nil
}

// GetByKey retrieves a movie with its translations
func (r *MovieRepository) GetByKey(ctx context.Context, key string) (*database.Movie, error) {
	return r.first(r.db.WithContext(ctx).Preload("Translations"), key)
}

// GetDetail retrieves a movie with everything the detail page renders
func (r *MovieRepository) GetDetail(ctx context.Context, key string) (*database.Movie, error) {
	q := r.db.WithContext(ctx).
		Preload("Translations").
		Preload("Characters.Actor.Translations").
		Preload("Characters.Character.Translations").
		Preload("Directors.Translations").
		Preload("GenreMatches.Genre.Translations").
		Preload("SubgenreMatches.Subgenre.Translations").
		Preload("SubgenreMatches.Subgenre.ParentGenre").
		Preload("SpecificationMatches.Specification.Translations").
		Preload("KeywordMatches.Keyword.Translations").
		Preload("ActionTimeMatches.ActionTime.Translations").
		Preload("Ratings").
		Preload("SharedUniverse.Translations").
		Preload("VisualProfiles.Category.Translations").
		Preload("VisualProfiles.Ratings.Criterion.Translations")
	return r.first(q, key)
}

// GetWithMatches retrieves a movie with its taxonomy matches
func (r *MovieRepository) GetWithMatches(ctx context.Context, key string) (*database.Movie, error) {
	q := r.db.WithContext(ctx).
		Preload("Translations").
		Preload("GenreMatches.Genre").
		Preload("SubgenreMatches.Subgenre").
		Preload("SpecificationMatches.Specification").
		Preload("KeywordMatches.Keyword")
	return r.first(q, key)
}

func (r *MovieRepository) first(q *gorm.DB, key string) (*database.Movie, error) {
	var movie database.Movie
	if err := q.Where("key = ?", key).First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMovieNotFound, key)
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &movie, nil
}

// ListRatedBy returns one page of the movies a user rated with the user's scores
func (r *MovieRepository) ListRatedBy(ctx context.Context, userID uint, sortBy types.SortBy, order types.SortOrder, limit, offset int) ([]RatedMovie, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Table("ratings").
			Joins("JOIN movies ON movies.id = ratings.movie_id").
			Where("ratings.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rated movies: %w", err)
	}

	var rows []struct {
		MovieID uint
		Rating  float64
	}
	err := base().
		Select("ratings.movie_id, ratings.rating").
		Order(UserOrder(sortBy, order)).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rated movies: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MovieID)
	}
	movies, err := r.byIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RatedMovie, 0, len(rows))
	for _, row := range rows {
		if m, ok := movies[row.MovieID]; ok {
			out = append(out, RatedMovie{Movie: m, Rating: row.Rating})
		}
	}
	return out, total, nil
}

// List returns one page of non deleted movies matching cond
func (r *MovieRepository) List(ctx context.Context, cond filters.Condition, sortBy types.SortBy, order types.SortOrder, limit, offset int) ([]database.Movie, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&database.Movie{}).Where("movies.is_deleted = ?", false)
		return cond.Apply(q)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	var movies []database.Movie
	err := base().
		Preload("Translations").
		Order(MovieOrder(sortBy, order)).
		Limit(limit).
		Offset(offset).
		Find(&movies).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, total, nil
}

// MainGenreMatches returns the highest weighted genre match of every movie.
// Ties go to the genre created first.
func (r *MovieRepository) MainGenreMatches(ctx context.Context, movieIDs []uint) (map[uint]database.MovieGenre, error) {
	out := make(map[uint]database.MovieGenre)
	if len(movieIDs) == 0 {
		return out, nil
	}

	var rows []database.MovieGenre
	err := r.db.WithContext(ctx).
		Preload("Genre.Translations").
		Where("movie_id IN ?", movieIDs).
		Order("movie_id, genre_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load genre matches: %w", err)
	}

	for _, row := range rows {
		if best, ok := out[row.MovieID]; !ok || row.PercentageMatch > best.PercentageMatch {
			out[row.MovieID] = row
		}
	}
	return out, nil
}

// UserScores returns the user's rating of each listed movie they rated
func (r *MovieRepository) UserScores(ctx context.Context, userID uint, movieIDs []uint) (map[uint]float64, error) {
	out := make(map[uint]float64, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}

	var rows []database.Rating
	err := r.db.WithContext(ctx).
		Select("movie_id", "rating").
		Where("user_id = ? AND movie_id IN ?", userID, movieIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user ratings: %w", err)
	}
	for _, row := range rows {
		out[row.MovieID] = row.Rating
	}
	return out, nil
}

// SearchByTitle returns movies whose normalized title in any language contains query
func (r *MovieRepository) SearchByTitle(ctx context.Context, query string, limit int) ([]database.Movie, error) {
	titles := r.db.Model(&database.MovieTranslation{}).
		Select("movie_id").
		Where("search_title LIKE ?", "%"+query+"%")

	var movies []database.Movie
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("id IN (?) AND is_deleted = ?", titles, false).
		Order("id").
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return movies, nil
}

// Random returns up to count consecutive movies from a random offset
func (r *MovieRepository) Random(ctx context.Context, count int) ([]database.Movie, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&database.Movie{}).Where("is_deleted = ?", false).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	offset := rand.Intn(max(0, int(total)-count) + 1)

	var movies []database.Movie
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Preload("GenreMatches.Genre.Translations").
		Preload("Actors.Translations").
		Preload("Directors.Translations").
		Where("is_deleted = ?", false).
		Order("id").
		Offset(offset).
		Limit(count).
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load random movies: %w", err)
	}
	return movies, nil
}

// Collection returns every movie of the collection movie belongs to, the base
// movie included, ordered by collection order.
func (r *MovieRepository) Collection(ctx context.Context, movie *database.Movie) ([]database.Movie, error) {
	baseID := movie.ID
	if movie.CollectionBaseMovieID != nil {
		baseID = *movie.CollectionBaseMovieID
	}

	var movies []database.Movie
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("(id = ? OR collection_base_movie_id = ?) AND is_deleted = ?", baseID, baseID, false).
		Order("collection_order, id").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return movies, nil
}

// UniverseMovies returns the movies of a shared universe in universe order
func (r *MovieRepository) UniverseMovies(ctx context.Context, universeID uint) ([]database.Movie, error) {
	var movies []database.Movie
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("shared_universe_id = ? AND is_deleted = ?", universeID, false).
		Order("shared_universe_order, id").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load universe movies: %w", err)
	}
	return movies, nil
}

// All returns every non deleted movie with translations
func (r *MovieRepository) All(ctx context.Context) ([]database.Movie, error) {
	var movies []database.Movie
	if err := r.db.WithContext(ctx).Preload("Translations").Where("is_deleted = ?", false).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}
	return movies, nil
}

// Similar returns up to limit movies matching cond, excluding the given ids
func (r *MovieRepository) Similar(ctx context.Context, cond filters.Condition, exclude []uint, limit int) ([]database.Movie, error) {
	q := r.db.WithContext(ctx).Model(&database.Movie{}).
		Preload("Translations").
		Where("movies.is_deleted = ?", false)
	if len(exclude) > 0 {
		q = q.Where("movies.id NOT IN ?", exclude)
	}

	var movies []database.Movie
	if err := cond.Apply(q).Order("movies.id").Limit(limit).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to find similar movies: %w", err)
	}
	return movies, nil
}

func (r *MovieRepository) byIDs(ctx context.Context, ids []uint) (map[uint]database.Movie, error) {
	out := make(map[uint]database.Movie, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var movies []database.Movie
	if err := r.db.WithContext(ctx).Preload("Translations").Where("id IN ?", ids).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}
	for _, m := range movies {
		out[m.ID] = m
	}
	return out, nil
}

// UserOrder is the ORDER BY clause for lists of one user's rated movies
func UserOrder(sortBy types.SortBy, order types.SortOrder) string {
	dir := order.SQL()
	switch sortBy {
	case types.SortByRatedAt:
		return "ratings.updated_at " + dir
	case types.SortByReleaseDate:
		return "movies.release_date " + dir
	case types.SortByRatingsCount:
		return "movies.ratings_count " + dir
	case types.SortByRandom:
		return "RANDOM()"
	default:
		return "ratings.rating " + dir
	}
}

// MovieOrder is the ORDER BY clause for catalog wide movie lists
func MovieOrder(sortBy types.SortBy, order types.SortOrder) string {
	dir := order.SQL()
	switch sortBy {
	case types.SortByReleaseDate:
		return "movies.release_date " + dir
	case types.SortByRating:
		return "movies.average_rating " + dir
	case types.SortByRatingsCount:
		return "movies.ratings_count " + dir
	case types.SortByRandom:
		return "RANDOM()"
	default:
		return "movies.id " + dir
	}
}
