// Package service implements user ratings, personal statistics and
// visual profile edits.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

const (
	chartPoints    = 30
	topRatedLimit  = 3
	chartUTCOffset = 3 * time.Hour
	chartZoneName  = "EET"
)

// radarGenres are the genre keys drawn on the radar chart
var radarGenres = []string{"action", "adventure", "comedy", "drama", "fantasy", "sci-fi", "horror", "romance"}

var chartZone = time.FixedZone(chartZoneName, int(chartUTCOffset.Seconds()))

// RateRequest is the body of the rate-movie endpoints
type RateRequest struct {
	MovieKey       string           `json:"movie_key" binding:"required"`
	Rating         float64          `json:"rating"`
	RatingCriteria ratings.Criteria `json:"rating_criteria"`
}

// ChartTime is a chart zone time serialized as wall clock without an offset
type ChartTime struct {
	time.Time
}

const chartTimeLayout = "2006-01-02T15:04:05"

// MarshalJSON renders the wall clock with microseconds when present
func (t ChartTime) MarshalJSON() ([]byte, error) {
	wall := t.In(chartZone)
	out := wall.Format(chartTimeLayout)
	if us := wall.Nanosecond() / 1000; us != 0 {
		out += fmt.Sprintf(".%06d", us)
	}
	return []byte(`"` + out + `"`), nil
}

// ChartPoint is one rating on the time chart
type ChartPoint struct {
	CreatedAt  ChartTime `json:"created_at"`
	Rating     float64   `json:"rating"`
	MovieTitle string    `json:"movie_title"`
}

// MovieChart is the response of the time chart endpoint
type MovieChart struct {
	MovieChartData []ChartPoint `json:"movie_chart_data"`
}

// GenreCount is one axis of the radar chart
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopMovie is one of the user's best rated movies
type TopMovie struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
	Poster string  `json:"poster"`
}

// Report is the response of the radar chart endpoint
type Report struct {
	GenreData         []GenreCount `json:"genre_data"`
	TopRatedMovies    []TopMovie   `json:"top_rated_movies"`
	JoinedDate        time.Time    `json:"joined_date"`
	MoviesRated       int          `json:"movies_rated"`
	LastMovieRateDate *time.Time   `json:"last_movie_rate_date"`
	TotalActorsCount  *int64       `json:"total_actors_count"`
}

// UserOut is a row of the admin users list
type UserOut struct {
	UUID              string         `json:"uuid"`
	FullName          string         `json:"full_name"`
	Email             string         `json:"email"`
	Role              types.UserRole `json:"role"`
	CreatedAt         time.Time      `json:"created_at"`
	RatingsCount      int            `json:"ratings_count"`
	LastMovieRateDate *time.Time     `json:"last_movie_rate_date"`
}

// UserService handles everything a signed in user does with their own data
type UserService struct {
	db *gorm.DB
	tx services.TransactionService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, tx services.TransactionService) *UserService {
	return &UserService{db: db, tx: tx}
}

func (s *UserService) findMovie(ctx context.Context, key string) (*database.Movie, error) {
	var movie database.Movie
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Movie not found", "movie", key)
		return nil, apperrors.NewNotFoundError("Movie not found")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find movie", err)
	}
	return &movie, nil
}

// RateMovie stores the user's first rating of a movie and refreshes the
// movie average.
func (s *UserService) RateMovie(ctx context.Context, user *database.User, req RateRequest) error {
	movie, err := s.findMovie(ctx, req.MovieKey)
	if err != nil {
		return err
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&database.Rating{}).
		Where("movie_id = ? AND user_id = ?", movie.ID, user.ID).
		Count(&exists).Error; err != nil {
		return apperrors.NewDatabaseError("check rating", err)
	}
	if exists > 0 {
		logger.Error("Rating for movie already exists", "movie", movie.Key, "user", user.UUID)
		return apperrors.NewBadRequestError("Rating for movie already exists", nil)
	}

	rating := database.Rating{UserID: user.ID, MovieID: movie.ID, Rating: req.Rating}
	req.RatingCriteria.Apply(&rating)

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}
		return ratings.ProcessMovieRating(ctx, tx, movie.ID)
	})
	if err != nil {
		return apperrors.NewDatabaseError("create rating", err)
	}
	logger.Info("Rating created", "movie", movie.Key, "user", user.UUID)
	return nil
}

// UpdateRating rewrites the user's rating of a movie
func (s *UserService) UpdateRating(ctx context.Context, user *database.User, req RateRequest) error {
	movie, err := s.findMovie(ctx, req.MovieKey)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Rating{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return apperrors.NewDatabaseError("count ratings", err)
	}
	if count == 0 {
		logger.Error("User has no ratings to update", "user", user.UUID)
		return apperrors.NewNotFoundError("User has no ratings to update")
	}

	var rating database.Rating
	err = s.db.WithContext(ctx).Where("movie_id = ? AND user_id = ?", movie.ID, user.ID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Rating not found", "movie", movie.Key, "user", user.UUID)
		return apperrors.NewNotFoundError("Rating not found")
	}
	if err != nil {
		return apperrors.NewDatabaseError("find rating", err)
	}

	rating.Rating = req.Rating
	req.RatingCriteria.Apply(&rating)

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Save(&rating).Error; err != nil {
			return err
		}
		return ratings.ProcessMovieRating(ctx, tx, movie.ID)
	})
	if err != nil {
		return apperrors.NewDatabaseError("update rating", err)
	}
	logger.Info("Rating updated", "movie", movie.Key, "user", user.UUID)
	return nil
}

// userRatings loads the ratings of user with their movies, oldest first
func (s *UserService) userRatings(ctx context.Context, userID uint) ([]database.Rating, error) {
	var rs []database.Rating
	err := s.db.WithContext(ctx).
		Preload("Movie.Translations").
		Where("user_id = ?", userID).
		Order("id").
		Find(&rs).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load ratings", err)
	}
	return rs, nil
}

// TimeChart returns the 30 most recent ratings in chronological order.
// Times are shifted into the chart zone and sent without an offset.
func (s *UserService) TimeChart(ctx context.Context, user *database.User, lang types.Language) (*MovieChart, error) {
	var movies int64
	if err := s.db.WithContext(ctx).Model(&database.Movie{}).Where("is_deleted = ?", false).Count(&movies).Error; err != nil {
		return nil, apperrors.NewDatabaseError("count movies", err)
	}
	if movies == 0 {
		logger.Error("Movies not found")
		return nil, apperrors.NewNotFoundError("Movies not found")
	}

	rs, err := s.userRatings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, len(rs))
	for i := range rs {
		r := &rs[i]
		p := ChartPoint{CreatedAt: ChartTime{r.RatedAt().In(chartZone)}, Rating: r.Rating}
		if r.Movie != nil {
			p.MovieTitle = r.Movie.Translation(lang).Title
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].CreatedAt.Before(points[j].CreatedAt.Time) })
	if len(points) > chartPoints {
		points = points[len(points)-chartPoints:]
	}
	return &MovieChart{MovieChartData: points}, nil
}

// Report builds the profile page summary: genre radar, best rated movies
// and rating activity.
func (s *UserService) Report(ctx context.Context, user *database.User, lang types.Language) (*Report, error) {
	rs, err := s.userRatings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := &Report{
		JoinedDate:     user.CreatedAt,
		MoviesRated:    len(rs),
		TopRatedMovies: make([]TopMovie, 0, topRatedLimit),
	}

	if len(rs) > 0 {
		last := rs[len(rs)-1].RatedAt()
		out.LastMovieRateDate = &last
	}

	best := append([]database.Rating(nil), rs...)
	sort.SliceStable(best, func(i, j int) bool { return best[i].Rating > best[j].Rating })
	for _, r := range best {
		if len(out.TopRatedMovies) == topRatedLimit {
			break
		}
		if r.Movie == nil {
			continue
		}
		out.TopRatedMovies = append(out.TopRatedMovies, TopMovie{
			Key:    r.Movie.Key,
			Title:  r.Movie.Translation(lang).Title,
			Rating: r.Rating,
			Poster: r.Movie.Poster,
		})
	}

	out.GenreData, err = s.genreCounts(ctx, user.ID, lang)
	if err != nil {
		return nil, err
	}

	if user.Role.IsOwner() {
		var actors int64
		if err := s.db.WithContext(ctx).Model(&database.Actor{}).Count(&actors).Error; err != nil {
			return nil, apperrors.NewDatabaseError("count actors", err)
		}
		out.TotalActorsCount = &actors
	}
	return out, nil
}

// genreCounts counts the user's rated movies per radar genre. Genres the
// user never rated are left out.
func (s *UserService) genreCounts(ctx context.Context, userID uint, lang types.Language) ([]GenreCount, error) {
	var rows []struct {
		GenreID uint
		Movies  int
	}
	err := s.db.WithContext(ctx).
		Table("movie_genres").
		Select("movie_genres.genre_id AS genre_id, COUNT(DISTINCT movie_genres.movie_id) AS movies").
		Joins("JOIN ratings ON ratings.movie_id = movie_genres.movie_id").
		Joins("JOIN genres ON genres.id = movie_genres.genre_id").
		Where("ratings.user_id = ? AND genres.key IN ?", userID, radarGenres).
		Group("movie_genres.genre_id").
		Order("movie_genres.genre_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("count genres", err)
	}
	if len(rows) == 0 {
		return []GenreCount{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GenreID)
	}
	var genres []database.Genre
	if err := s.db.WithContext(ctx).Preload("Translations").Where("id IN ?", ids).Find(&genres).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load genres", err)
	}
	names := make(map[uint]string, len(genres))
	for i := range genres {
		names[genres[i].ID] = genres[i].Translation(lang).Name
	}

	out := make([]GenreCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, GenreCount{Name: names[r.GenreID], Count: r.Movies})
	}
	return out, nil
}

// All lists active users except the owner
func (s *UserService) All(ctx context.Context) ([]UserOut, error) {
	var users []database.User
	err := s.db.WithContext(ctx).
		Preload("Ratings").
		Where("is_deleted = ?", false).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	if len(users) == 0 {
		logger.Error("Users not found")
		return nil, apperrors.NewNotFoundError("Users not found")
	}

	out := make([]UserOut, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Role.IsOwner() {
			continue
		}
		row := UserOut{
			UUID:         u.UUID,
			FullName:     u.FullName(),
			Email:        u.Email,
			Role:         u.Role,
			CreatedAt:    u.CreatedAt,
			RatingsCount: len(u.Ratings),
		}
		for _, r := range u.Ratings {
			if row.LastMovieRateDate == nil || r.CreatedAt.After(*row.LastMovieRateDate) {
				created := r.CreatedAt
				row.LastMovieRateDate = &created
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// SetLanguage stores the user's interface language
func (s *UserService) SetLanguage(ctx context.Context, user *database.User, lang types.Language) error {
	err := s.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", user.ID).
		Update("preferred_language", lang).Error
	if err != nil {
		return apperrors.NewDatabaseError("set language", err)
	}
	user.PreferredLanguage = lang
	logger.Info("Language updated", "user", user.UUID, "lang", lang)
	return nil
}
