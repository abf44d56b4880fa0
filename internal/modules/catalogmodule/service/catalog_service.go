// Package service implements the taxonomy menus and their create operations.
package service

import (
	"context"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// CatalogService reads and creates genres, filters, characters, shared
// universes and visual profile categories
type CatalogService struct {
	db *gorm.DB
	tx services.TransactionService
}

var _ services.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB, tx services.TransactionService) *CatalogService {
	return &CatalogService{db: db, tx: tx}
}

// named is a translated row as rendered in menus
type named struct {
	key   string
	name  database.NamedTranslation
	other database.NamedTranslation
}

func filterItems(rows []named, lang types.Language) []types.FilterItem {
	utils.SortByName(rows, string(lang), func(r named) string { return r.name.Name })
	out := make([]types.FilterItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.FilterItem{
			Key:             r.key,
			Name:            r.name.Name,
			Description:     r.name.Description,
			AnotherLangName: r.other.Name,
		})
	}
	return out
}

// Filters returns every taxonomy list sorted by name in lang.
// Genres, specifications, keywords and action times must not be empty.
func (s *CatalogService) Filters(ctx context.Context, lang types.Language) (*types.Filters, error) {
	db := s.db.WithContext(ctx)
	other := lang.Other()

	var genres []database.Genre
	if err := db.Preload("Translations").Find(&genres).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load genres", err)
	}
	var subgenres []database.Subgenre
	if err := db.Preload("Translations").Preload("ParentGenre").Find(&subgenres).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load subgenres", err)
	}
	var specs []database.Specification
	if err := db.Preload("Translations").Find(&specs).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load specifications", err)
	}
	var keywords []database.Keyword
	if err := db.Preload("Translations").Find(&keywords).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load keywords", err)
	}
	var times []database.ActionTime
	if err := db.Preload("Translations").Find(&times).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load action times", err)
	}
	var universes []database.SharedUniverse
	if err := db.Preload("Translations").Find(&universes).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load shared universes", err)
	}

	for _, check := range []struct {
		empty bool
		msg   string
	}{
		{len(genres) == 0, "Genres not found"},
		{len(specs) == 0, "Specifications not found"},
		{len(keywords) == 0, "Keywords not found"},
		{len(times) == 0, "Action times not found"},
	} {
		if check.empty {
			logger.Error(check.msg, "lang", lang)
			return nil, apperrors.NewNotFoundError(check.msg)
		}
	}

	out := &types.Filters{}

	rows := make([]named, 0, len(genres))
	for i := range genres {
		rows = append(rows, named{genres[i].Key, genres[i].Translation(lang), genres[i].Translation(other)})
	}
	out.Genres = filterItems(rows, lang)

	subs := make([]database.Subgenre, len(subgenres))
	copy(subs, subgenres)
	utils.SortByName(subs, string(lang), func(sg database.Subgenre) string { return sg.Translation(lang).Name })
	out.Subgenres = make([]types.FilterItem, 0, len(subs))
	for i := range subs {
		out.Subgenres = append(out.Subgenres, subgenreItem(&subs[i], lang))
	}

	rows = make([]named, 0, len(specs))
	for i := range specs {
		rows = append(rows, named{specs[i].Key, specs[i].Translation(lang), specs[i].Translation(other)})
	}
	out.Specifications = filterItems(rows, lang)

	rows = make([]named, 0, len(keywords))
	for i := range keywords {
		rows = append(rows, named{keywords[i].Key, keywords[i].Translation(lang), keywords[i].Translation(other)})
	}
	out.Keywords = filterItems(rows, lang)

	rows = make([]named, 0, len(times))
	for i := range times {
		rows = append(rows, named{times[i].Key, times[i].Translation(lang), times[i].Translation(other)})
	}
	out.ActionTimes = filterItems(rows, lang)

	rows = make([]named, 0, len(universes))
	for i := range universes {
		rows = append(rows, named{universes[i].Key, universes[i].Translation(lang), universes[i].Translation(other)})
	}
	out.SharedUniverses = filterItems(rows, lang)

	categories, err := s.CategoriesByName(ctx, lang)
	if err != nil {
		return nil, err
	}
	out.VisualProfileCategories = categories
	return out, nil
}

func subgenreItem(sg *database.Subgenre, lang types.Language) types.FilterItem {
	t := sg.Translation(lang)
	item := types.FilterItem{
		Key:             sg.Key,
		Name:            t.Name,
		Description:     t.Description,
		AnotherLangName: sg.Translation(lang.Other()).Name,
	}
	if sg.ParentGenre != nil {
		item.ParentGenreKey = sg.ParentGenre.Key
	}
	return item
}

// GenresWithSubgenres returns genres sorted by name, each with its
// subgenres sorted by name. No genres yields an empty list.
func (s *CatalogService) GenresWithSubgenres(ctx context.Context, lang types.Language) ([]types.GenreItem, error) {
	var genres []database.Genre
	err := s.db.WithContext(ctx).
		Preload("Translations").
		Preload("Subgenres.Translations").
		Find(&genres).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load genres", err)
	}
	utils.SortByName(genres, string(lang), func(g database.Genre) string { return g.Translation(lang).Name })

	out := make([]types.GenreItem, 0, len(genres))
	for i := range genres {
		g := &genres[i]
		t := g.Translation(lang)
		item := types.GenreItem{
			Key:         g.Key,
			Name:        t.Name,
			Description: t.Description,
			Subgenres:   make([]types.FilterItem, 0, len(g.Subgenres)),
		}
		utils.SortByName(g.Subgenres, string(lang), func(sg database.Subgenre) string { return sg.Translation(lang).Name })
		for j := range g.Subgenres {
			sg := &g.Subgenres[j]
			sg.ParentGenre = g
			item.Subgenres = append(item.Subgenres, subgenreItem(sg, lang))
		}
		out = append(out, item)
	}
	return out, nil
}

// VisualProfileCategories returns categories in creation order with every
// criterion rated 0
func (s *CatalogService) VisualProfileCategories(ctx context.Context, lang types.Language) ([]types.CategoryItem, error) {
	var categories []database.VisualProfileCategory
	err := s.db.WithContext(ctx).
		Preload("Translations").
		Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Criteria.Translations").
		Order("id").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load visual profile categories", err)
	}

	out := make([]types.CategoryItem, 0, len(categories))
	for i := range categories {
		out = append(out, categoryItem(&categories[i], lang))
	}
	return out, nil
}

// CategoriesByName is VisualProfileCategories sorted by name in lang
func (s *CatalogService) CategoriesByName(ctx context.Context, lang types.Language) ([]types.CategoryItem, error) {
	out, err := s.VisualProfileCategories(ctx, lang)
	if err != nil {
		return nil, err
	}
	utils.SortByName(out, string(lang), func(c types.CategoryItem) string { return c.Name })
	return out, nil
}

func categoryItem(c *database.VisualProfileCategory, lang types.Language) types.CategoryItem {
	t := c.Translation(lang)
	item := types.CategoryItem{
		Key:         c.Key,
		Name:        t.Name,
		Description: t.Description,
		Criteria:    make([]types.CriterionItem, 0, len(c.Criteria)),
	}
	for j := range c.Criteria {
		ct := c.Criteria[j].Translation(lang)
		item.Criteria = append(item.Criteria, types.CriterionItem{
			Key:         c.Criteria[j].Key,
			Name:        ct.Name,
			Description: ct.Description,
		})
	}
	return item
}
