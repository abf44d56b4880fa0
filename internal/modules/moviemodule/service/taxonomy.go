package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"gorm.io/gorm"
)

// ItemKind names a taxonomy set edited through UpdateItems
type ItemKind string

const (
	ItemSpecifications ItemKind = "specifications"
	ItemKeywords       ItemKind = "keywords"
	ItemActionTimes    ItemKind = "action_times"
)

// matchKind describes a percentage match join between movies and a taxonomy table
type matchKind struct {
	label  string
	table  string
	model  interface{}
	newRow func(movieID, id uint, pct float64) interface{}
}

var (
	genreKind = matchKind{
		label: "Genre", table: "genres", model: &database.MovieGenre{},
		newRow: func(m, id uint, pct float64) interface{} {
			return &database.MovieGenre{MovieID: m, GenreID: id, PercentageMatch: pct}
		},
	}
	subgenreKind = matchKind{
		label: "Subgenre", table: "subgenres", model: &database.MovieSubgenre{},
		newRow: func(m, id uint, pct float64) interface{} {
			return &database.MovieSubgenre{MovieID: m, SubgenreID: id, PercentageMatch: pct}
		},
	}
	specificationKind = matchKind{
		label: "Specification", table: "specifications", model: &database.MovieSpecification{},
		newRow: func(m, id uint, pct float64) interface{} {
			return &database.MovieSpecification{MovieID: m, SpecificationID: id, PercentageMatch: pct}
		},
	}
	keywordKind = matchKind{
		label: "Keyword", table: "keywords", model: &database.MovieKeyword{},
		newRow: func(m, id uint, pct float64) interface{} {
			return &database.MovieKeyword{MovieID: m, KeywordID: id, PercentageMatch: pct}
		},
	}
	actionTimeKind = matchKind{
		label: "Action time", table: "action_times", model: &database.MovieActionTime{},
		newRow: func(m, id uint, pct float64) interface{} {
			return &database.MovieActionTime{MovieID: m, ActionTimeID: id, PercentageMatch: pct}
		},
	}
)

var itemKinds = map[ItemKind]matchKind{
	ItemSpecifications: specificationKind,
	ItemKeywords:       keywordKind,
	ItemActionTimes:    actionTimeKind,
}

// resolve maps the requested keys to ids, leaving unknown keys out
func (k matchKind) resolve(db *gorm.DB, items []movietypes.MatchIn) (map[string]uint, error) {
	ids := make(map[string]uint, len(items))
	if len(items) == 0 {
		return ids, nil
	}
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key)
	}

	var rows []struct {
		ID  uint
		Key string
	}
	if err := db.Table(k.table).Select("id, key").Where("key IN ?", keys).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve %s keys: %w", strings.ToLower(k.label), err)
	}
	for _, r := range rows {
		ids[r.Key] = r.ID
	}
	return ids, nil
}

// link stores one join row per item. An unknown key fails the whole set.
func (k matchKind) link(tx *gorm.DB, movieID uint, items []movietypes.MatchIn) error {
	ids, err := k.resolve(tx, items)
	if err != nil {
		return err
	}
	seen := make(map[uint]bool, len(items))
	for _, it := range items {
		id, ok := ids[it.Key]
		if !ok {
			return fmt.Errorf("%s [%s] not found", k.label, it.Key)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := tx.Create(k.newRow(movieID, id, it.PercentageMatch)).Error; err != nil {
			return err
		}
	}
	return nil
}

// replace drops every join row of the movie before linking items
func (k matchKind) replace(tx *gorm.DB, movieID uint, items []movietypes.MatchIn) error {
	if err := tx.Where("movie_id = ?", movieID).Delete(k.model).Error; err != nil {
		return err
	}
	return k.link(tx, movieID, items)
}

// UpdateGenres replaces the genres and subgenres of a movie
func (s *MovieService) UpdateGenres(ctx context.Context, key string, req movietypes.GenresUpdateRequest) error {
	movie, err := s.getMovie(ctx, s.repo.GetByKey, key)
	if err != nil {
		return err
	}

	genres, err := genreKind.resolve(s.repo.GetDB().WithContext(ctx), req.Genres)
	if err != nil {
		return apperrors.NewDatabaseError("resolve genres", err)
	}
	if len(genres) == 0 {
		logger.Error("Genres not found", "movie", key)
		return apperrors.NewNotFoundError("Genres not found")
	}

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := genreKind.replace(tx, movie.ID, req.Genres); err != nil {
			return err
		}
		return subgenreKind.replace(tx, movie.ID, req.Subgenres)
	})
	if err != nil {
		logger.Error("Error updating genre", "movie", key, "error", err)
		return apperrors.NewBadRequestError("Error updating genre", err)
	}
	logger.Info("Genres successfully updated", "movie", key)
	return nil
}

// UpdateItems replaces one taxonomy set of a movie
func (s *MovieService) UpdateItems(ctx context.Context, kind ItemKind, req movietypes.ItemsUpdateRequest) error {
	k, ok := itemKinds[kind]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown item kind: %s", kind))
	}

	movie, err := s.getMovie(ctx, s.repo.GetByKey, req.MovieKey)
	if err != nil {
		return err
	}

	found, err := k.resolve(s.repo.GetDB().WithContext(ctx), req.Items)
	if err != nil {
		return apperrors.NewDatabaseError("resolve items", err)
	}
	if len(found) == 0 {
		logger.Error("Items not found", "kind", kind, "movie", req.MovieKey)
		return apperrors.NewNotFoundError(k.label + " not found")
	}

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		return k.replace(tx, movie.ID, req.Items)
	})
	if err != nil {
		logger.Error("Error updating items", "kind", kind, "movie", req.MovieKey, "error", err)
		return apperrors.NewBadRequestError("Error updating "+strings.ToLower(k.label), err)
	}
	logger.Info("Items successfully updated", "kind", kind, "movie", req.MovieKey)
	return nil
}
