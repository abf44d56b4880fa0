package service

import (
	"context"
	"fmt"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
)

// searchTarget describes where a people search looks and how movies are counted
type searchTarget struct {
	translations string
	owner        string
	links        string
	linkColumn   string
}

var searchTargets = map[types.SearchType]searchTarget{
	types.SearchActors:     {"actor_translations", "actor_id", "movie_actors", "actor_id"},
	types.SearchDirectors:  {"director_translations", "director_id", "movie_directors", "director_id"},
	types.SearchCharacters: {"character_translations", "character_id", "movie_actor_characters", "character_id"},
}

// Search finds up to five people whose name in either language contains query
func (s *PeopleService) Search(ctx context.Context, kind types.SearchType, query string) ([]types.SearchResult, error) {
	if query == "" {
		logger.Error("Query is empty")
		return nil, apperrors.NewValidationError("Query is empty")
	}
	target, ok := searchTargets[kind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown search type: %s", kind))
	}

	db := s.db.WithContext(ctx)
	pattern := "%" + utils.NormalizeSearch(query) + "%"
	var ids []uint
	err := db.Table(target.translations).
		Distinct(target.owner).
		Where("search_name LIKE ?", pattern).
		Order(target.owner).
		Limit(searchLimit).
		Pluck(target.owner, &ids).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("search people", err)
	}
	if len(ids) == 0 {
		return []types.SearchResult{}, nil
	}

	var counts []struct {
		ID    uint
		Count int
	}
	err = db.Table(target.links).
		Select(target.linkColumn+" AS id, COUNT(DISTINCT movie_id) AS count").
		Where(target.linkColumn+" IN ?", ids).
		Group(target.linkColumn).
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("count movies", err)
	}
	movies := make(map[uint]int, len(counts))
	for _, c := range counts {
		movies[c.ID] = c.Count
	}

	out := make([]types.SearchResult, 0, len(ids))
	add := func(id uint, key, name, image string) {
		out = append(out, types.SearchResult{
			Key:       key,
			Name:      name,
			Image:     image,
			ExtraInfo: fmt.Sprintf("Movies: %d", movies[id]),
			Type:      string(kind),
		})
	}

	switch kind {
	case types.SearchActors:
		var rows []database.Actor
		if err := db.Preload("Translations").Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load actors", err)
		}
		for i := range rows {
			add(rows[i].ID, rows[i].Key, rows[i].DisplayName(), rows[i].Avatar)
		}
	case types.SearchDirectors:
		var rows []database.Director
		if err := db.Preload("Translations").Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load directors", err)
		}
		for i := range rows {
			add(rows[i].ID, rows[i].Key, rows[i].DisplayName(), rows[i].Avatar)
		}
	default:
		var rows []database.Character
		if err := db.Preload("Translations").Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load characters", err)
		}
		for i := range rows {
			add(rows[i].ID, rows[i].Key, rows[i].DisplayName(), "")
		}
	}
	return out, nil
}
