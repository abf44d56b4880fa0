package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/quickmovies"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// PreCreate collects the menus of the movie creation form. A quick movie
// key preloads the queued entry.
func (s *MovieService) PreCreate(ctx context.Context, lang types.Language, quickKey string) (*movietypes.PreCreate, error) {
	f, err := s.catalog.Filters(ctx, lang)
	if err != nil {
		return nil, err
	}
	people, err := s.people.People(ctx, lang)
	if err != nil {
		return nil, err
	}
	genres, err := s.catalog.GenresWithSubgenres(ctx, lang)
	if err != nil {
		return nil, err
	}

	movies, err := s.repo.All(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load base movies", err)
	}
	if len(movies) == 0 {
		logger.Error("Base movies not found")
		return nil, apperrors.NewNotFoundError("Base movies not found")
	}
	sortBaseMovies(movies, lang)

	categories, err := s.catalog.VisualProfileCategories(ctx, lang)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		logger.Error("Title categories not found")
		return nil, apperrors.NewNotFoundError("Title categories not found")
	}

	out := &movietypes.PreCreate{
		VisualProfileCategories: categories,
		BaseMovies:              make([]movietypes.KeyName, 0, len(movies)),
		Actors:                  people.Actors,
		Directors:               people.Directors,
		Characters:              people.Characters,
		Specifications:          f.Specifications,
		Genres:                  genres,
		Keywords:                f.Keywords,
		ActionTimes:             f.ActionTimes,
		SharedUniverses:         f.SharedUniverses,
	}
	for i := range movies {
		out.BaseMovies = append(out.BaseMovies, movietypes.KeyName{Key: movies[i].Key, Name: movies[i].Translation(lang).Title})
	}

	if quickKey != "" {
		quick, found, err := s.quick.Get(quickKey)
		if err != nil {
			return nil, apperrors.NewInternalError("Error reading quick movies", err)
		}
		if found {
			out.QuickMovie = quick
		}
	}
	return out, nil
}

// sortBaseMovies orders by title ignoring a leading "The", then by relation
// type with unset types last
func sortBaseMovies(movies []database.Movie, lang types.Language) {
	sort.SliceStable(movies, func(i, j int) bool {
		ti := utils.SortTitle(movies[i].Translation(lang).Title)
		tj := utils.SortTitle(movies[j].Translation(lang).Title)
		if ti != tj {
			return ti < tj
		}
		ri, rj := movies[i].RelationType, movies[j].RelationType
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri < *rj
		}
	})
}

// Create stores a new movie with its links, the owner's rating and visual
// profile in one transaction. The poster is optional.
func (s *MovieService) Create(ctx context.Context, owner *database.User, req movietypes.CreateMovieRequest, poster *multipart.FileHeader, isQuickMovie bool, lang types.Language) (*database.Movie, error) {
	exists, err := s.repo.Exists(ctx, req.Key)
	if err != nil {
		return nil, apperrors.NewDatabaseError("check movie", err)
	}
	if exists {
		return nil, apperrors.NewConflictError(lang.Message("Фільм вже існує", "Movie already exists"))
	}

	var (
		movie  *database.Movie
		stored string
	)
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		if movie, err = s.insertMovie(ctx, tx, req); err != nil {
			return err
		}
		if poster != nil && s.assets != nil {
			name, err := s.assets.SaveImage(ctx, types.AssetPosters, movie.ID, poster)
			if err != nil {
				return fmt.Errorf("poster: %w", err)
			}
			stored, movie.Poster = name, name
			if err := tx.Model(movie).Update("poster", name).Error; err != nil {
				return err
			}
		}
		if err := setMatches(tx, movie.ID, req); err != nil {
			return err
		}
		if err := addCharacters(tx, movie.ID, req.ActorsKeys); err != nil {
			return err
		}
		if err := addOwnerRating(ctx, tx, movie.ID, owner.ID, req); err != nil {
			return err
		}
		if err := addVisualProfile(tx, movie.ID, owner.ID, req.CategoryKey, req.CategoryCriteria); err != nil {
			return err
		}
		if isQuickMovie {
			return s.quick.Remove(req.Key)
		}
		return nil
	})
	if err != nil {
		logger.Error("Error creating movie", "key", req.Key, "error", err)
		s.discardImage(types.AssetPosters, stored)
		msg := lang.Message("Помилка створення фільму", "Error creating movie")
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s - %v", msg, err), err)
	}

	logger.Info("Movie successfully created", "key", req.Key, "owner", owner.Email)
	s.syncCreated(ctx, "movies")
	return movie, nil
}

// discardImage removes an image saved by a transaction that rolled back
func (s *MovieService) discardImage(kind types.AssetKind, name string) {
	if name == "" || s.assets == nil {
		return
	}
	if err := s.assets.RemoveImage(kind, name); err != nil {
		logger.Warn("Failed to remove orphaned image", "file", name, "kind", kind, "error", err)
	}
}

// syncCreated appends the new row to the spreadsheet. Failures are logged.
func (s *MovieService) syncCreated(ctx context.Context, entity string) {
	if s.sheets == nil || !s.syncOnCreate || !s.sheets.Enabled() {
		return
	}
	if err := s.sheets.AppendLatest(ctx, entity); err != nil {
		logger.Warn("Failed to append row to spreadsheet", "entity", entity, "error", err)
	}
}

func (s *MovieService) insertMovie(ctx context.Context, tx *gorm.DB, req movietypes.CreateMovieRequest) (*database.Movie, error) {
	release, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}
	criterion, err := types.ParseRatingCriterion(string(req.RatingCriterionType))
	if err != nil {
		return nil, err
	}

	movie := &database.Movie{
		Key:                 req.Key,
		ReleaseDate:         release,
		Duration:            req.Duration,
		Budget:              req.Budget,
		DomesticGross:       req.DomesticGross,
		WorldwideGross:      req.WorldwideGross,
		RatingCriterion:     criterion,
		CollectionOrder:     req.CollectionOrder,
		SharedUniverseOrder: req.SharedUniverseOrder,
		Translations: []database.MovieTranslation{
			{Language: types.LanguageUK, Title: req.TitleUK, Description: req.DescriptionUK, Location: req.LocationUK},
			{Language: types.LanguageEN, Title: req.TitleEN, Description: req.DescriptionEN, Location: req.LocationEN},
		},
	}
	if req.RelationType != "" {
		relation, err := types.ParseRelationType(string(req.RelationType))
		if err != nil {
			return nil, err
		}
		movie.RelationType = &relation
	}

	if req.SharedUniverseKey != "" {
		var su database.SharedUniverse
		if err := tx.Where("key = ?", req.SharedUniverseKey).First(&su).Error; err != nil {
			logger.Error("Shared universe not found", "key", req.SharedUniverseKey)
			return nil, errors.New("Shared Universe not found")
		}
		movie.SharedUniverseID = &su.ID
	}

	if req.BaseMovieKey != "" {
		var base database.Movie
		if err := tx.Where("key = ?", req.BaseMovieKey).First(&base).Error; err != nil {
			logger.Error("Base movie not found", "key", req.BaseMovieKey)
			return nil, errors.New("Base movie not found")
		}
		if base.RelationType == nil {
			order := 1
			relation := types.RelationBase
			err := tx.Model(&base).Updates(map[string]interface{}{
				"relation_type":    relation,
				"collection_order": order,
			}).Error
			if err != nil {
				return nil, err
			}
		}
		movie.CollectionBaseMovieID = &base.ID
	}

	for _, ref := range req.ActorsKeys {
		var actor database.Actor
		if err := tx.Where("key = ?", ref.Key).First(&actor).Error; err != nil {
			return nil, fmt.Errorf("Actor [%s] not found", ref.Key)
		}
		if !containsActor(movie.Actors, actor.ID) {
			movie.Actors = append(movie.Actors, actor)
		}
	}
	for _, key := range req.DirectorsKeys {
		var director database.Director
		if err := tx.Where("key = ?", key).First(&director).Error; err != nil {
			return nil, fmt.Errorf("Director [%s] not found", key)
		}
		movie.Directors = append(movie.Directors, director)
	}

	// many2many links only; the people rows already exist
	if err := tx.WithContext(ctx).Omit("Actors.*", "Directors.*").Create(movie).Error; err != nil {
		return nil, err
	}
	return movie, nil
}

func containsActor(actors []database.Actor, id uint) bool {
	for _, a := range actors {
		if a.ID == id {
			return true
		}
	}
	return false
}

func parseReleaseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid release date: %s", s)
}

func setMatches(tx *gorm.DB, movieID uint, req movietypes.CreateMovieRequest) error {
	for _, set := range []struct {
		kind  matchKind
		items []movietypes.MatchIn
	}{
		{genreKind, req.Genres},
		{subgenreKind, req.Subgenres},
		{specificationKind, req.Specifications},
		{keywordKind, req.Keywords},
		{actionTimeKind, req.ActionTimes},
	} {
		if err := set.kind.link(tx, movieID, set.items); err != nil {
			logger.Error("Error updating percentage match", "error", err)
			return err
		}
	}
	return nil
}

func addCharacters(tx *gorm.DB, movieID uint, refs []movietypes.ActorRef) error {
	for i, ref := range refs {
		var actor database.Actor
		if err := tx.Where("key = ?", ref.Key).First(&actor).Error; err != nil {
			logger.Error("Actor not found", "key", ref.Key)
			return fmt.Errorf("Error creating relation (actor: [%s])", ref.Key)
		}
		var character database.Character
		if err := tx.Where("key = ?", ref.CharacterKey).First(&character).Error; err != nil {
			logger.Error("Character not found", "key", ref.CharacterKey)
			return fmt.Errorf("Error creating relation (actor: [%s])", ref.Key)
		}
		link := database.MovieActorCharacter{
			MovieID:     movieID,
			ActorID:     actor.ID,
			CharacterID: character.ID,
			Order:       i + 1,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("Error creating relation (actor: [%s]): %w", ref.Key, err)
		}
	}
	return nil
}

func addOwnerRating(ctx context.Context, tx *gorm.DB, movieID, userID uint, req movietypes.CreateMovieRequest) error {
	rating := database.Rating{MovieID: movieID, UserID: userID, Rating: req.Rating}
	req.RatingCriteria.Apply(&rating)
	if err := tx.Create(&rating).Error; err != nil {
		return fmt.Errorf("Error creating rating: %w", err)
	}
	return ratings.ProcessMovieRating(ctx, tx, movieID)
}

func addVisualProfile(tx *gorm.DB, movieID, userID uint, categoryKey string, criteria []movietypes.CriterionIn) error {
	var category database.VisualProfileCategory
	if err := tx.Where("key = ?", categoryKey).First(&category).Error; err != nil {
		logger.Error("Visual profile category not found", "key", categoryKey)
		return errors.New("Visual profile category not found")
	}

	profile := database.VisualProfile{MovieID: movieID, UserID: userID, CategoryID: category.ID}
	for i, c := range criteria {
		var criterion database.VisualProfileCriterion
		if err := tx.Where("key = ?", c.Key).First(&criterion).Error; err != nil {
			logger.Error("Visual profile criterion not found", "key", c.Key)
			return fmt.Errorf("Visual profile criterion [%s] not found", c.Key)
		}
		profile.Ratings = append(profile.Ratings, database.VisualProfileRating{
			CriterionID: criterion.ID,
			Rating:      c.Rating,
			Order:       i + 1,
		})
	}
	return tx.Create(&profile).Error
}

// QuickAdd queues a movie to be created later
func (s *MovieService) QuickAdd(ctx context.Context, req movietypes.QuickAddRequest, lang types.Language) error {
	exists, err := s.repo.Exists(ctx, req.Key)
	if err != nil {
		return apperrors.NewDatabaseError("check movie", err)
	}
	if exists {
		return apperrors.NewConflictError(lang.Message("Фільм вже існує", "Movie already exists"))
	}

	criterion, err := types.ParseRatingCriterion(string(req.RatingCriterionType))
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	err = s.quick.Prepend(movietypes.QuickMovie{
		Key:                 req.Key,
		TitleEN:             req.TitleEN,
		Rating:              req.Rating,
		RatingCriterionType: criterion,
		RatingCriteria:      req.RatingCriteria,
	})
	if err != nil {
		cause := err
		if errors.Is(err, quickmovies.ErrExists) {
			cause = errors.New(lang.Message("Фільм вже існує", "Movie already exists"))
		}
		logger.Error("Error adding movie to JSON", "key", req.Key, "error", err)
		msg := lang.Message("Помилка додавання фільму до JSON", "Error adding movie to JSON")
		return apperrors.NewBadRequestError(fmt.Sprintf("%s - %v", msg, cause), err)
	}
	logger.Info("Movie queued for quick add", "key", req.Key)
	return nil
}

// MoviesToAdd lists the queued quick movies
func (s *MovieService) MoviesToAdd() ([]movietypes.QuickMovieOut, error) {
	movies, err := s.quick.List()
	if err != nil {
		return nil, apperrors.NewInternalError("Error reading quick movies", err)
	}
	out := make([]movietypes.QuickMovieOut, 0, len(movies))
	for _, m := range movies {
		out = append(out, movietypes.QuickMovieOut{Key: m.Key, TitleEN: m.TitleEN, Rating: m.Rating})
	}
	return out, nil
}
