package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// Kind names a creatable taxonomy entity
type Kind string

const (
	KindGenre          Kind = "genre"
	KindSubgenre       Kind = "subgenre"
	KindSpecification  Kind = "specification"
	KindKeyword        Kind = "keyword"
	KindActionTime     Kind = "action_time"
	KindCharacter      Kind = "character"
	KindSharedUniverse Kind = "shared_universe"
	KindCategory       Kind = "category"
)

// CreateRequest is the body of every taxonomy create endpoint.
// ParentGenreKey applies to subgenres, CriteriaKeys to categories.
type CreateRequest struct {
	Key            string   `json:"key" binding:"required"`
	NameUK         string   `json:"name_uk" binding:"required"`
	NameEN         string   `json:"name_en" binding:"required"`
	DescriptionUK  string   `json:"description_uk"`
	DescriptionEN  string   `json:"description_en"`
	ParentGenreKey string   `json:"parent_genre_key"`
	CriteriaKeys   []string `json:"criteria_keys"`
}

// Created is the response of a create endpoint
type Created struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	ParentGenreKey string `json:"parent_genre_key,omitempty"`
}

type kindSpec struct {
	label     string
	table     string
	described bool
	build     func(req CreateRequest, uk, en database.NamedTranslation) interface{}
}

var kinds = map[Kind]kindSpec{
	KindGenre: {
		label: "Genre", table: "genres", described: true,
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			id := utils.GenerateUUID()
			return &database.Genre{Key: req.Key, UUID: &id, Translations: []database.GenreTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindSubgenre: {
		label: "Subgenre", table: "subgenres", described: true,
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			id := utils.GenerateUUID()
			return &database.Subgenre{Key: req.Key, UUID: &id, Translations: []database.SubgenreTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindSpecification: {
		label: "Specification", table: "specifications",
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			id := utils.GenerateUUID()
			return &database.Specification{Key: req.Key, UUID: &id, Translations: []database.SpecificationTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindKeyword: {
		label: "Keyword", table: "keywords",
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			id := utils.GenerateUUID()
			return &database.Keyword{Key: req.Key, UUID: &id, Translations: []database.KeywordTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindActionTime: {
		label: "Action time", table: "action_times",
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			id := utils.GenerateUUID()
			return &database.ActionTime{Key: req.Key, UUID: &id, Translations: []database.ActionTimeTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindCharacter: {
		label: "Character", table: "characters",
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			uk.Description, en.Description = "", ""
			return &database.Character{Key: req.Key, Translations: []database.CharacterTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindSharedUniverse: {
		label: "Shared universe", table: "shared_universes", described: true,
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			return &database.SharedUniverse{Key: req.Key, Translations: []database.SharedUniverseTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
	KindCategory: {
		label: "Category", table: "visual_profile_categories", described: true,
		build: func(req CreateRequest, uk, en database.NamedTranslation) interface{} {
			return &database.VisualProfileCategory{Key: req.Key, Translations: []database.VisualProfileCategoryTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
		},
	},
}

// Create stores a new taxonomy entity with its UK and EN translations
func (s *CatalogService) Create(ctx context.Context, kind Kind, req CreateRequest, lang types.Language) (*Created, error) {
	spec, ok := kinds[kind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown kind: %s", kind))
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Table(spec.table).Where("key = ?", req.Key).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError("check "+strings.ToLower(spec.label), err)
	}
	if count > 0 {
		logger.Error(spec.label+" already exists", "key", req.Key)
		return nil, apperrors.NewBadRequestError(spec.label+" already exists", nil)
	}

	var parent *database.Genre
	if kind == KindSubgenre {
		parent = &database.Genre{}
		err := db.Where("key = ?", req.ParentGenreKey).First(parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Genre not found", "key", req.ParentGenreKey)
			return nil, apperrors.NewNotFoundError("Genre not found")
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError("load parent genre", err)
		}
	}

	var criteria []database.VisualProfileCriterion
	if kind == KindCategory && len(req.CriteriaKeys) > 0 {
		if err := db.Where("key IN ?", req.CriteriaKeys).Find(&criteria).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load criteria", err)
		}
		if len(criteria) != len(req.CriteriaKeys) {
			logger.Error("Criterion not found", "keys", req.CriteriaKeys)
			return nil, apperrors.NewNotFoundError("Criterion not found")
		}
	}

	uk := database.NamedTranslation{Language: types.LanguageUK, Name: req.NameUK, Description: req.DescriptionUK}
	en := database.NamedTranslation{Language: types.LanguageEN, Name: req.NameEN, Description: req.DescriptionEN}
	row := spec.build(req, uk, en)
	switch r := row.(type) {
	case *database.Subgenre:
		r.ParentGenreID = parent.ID
	case *database.VisualProfileCategory:
		r.Criteria = criteria
	}

	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		label := strings.ToLower(spec.label)
		logger.Error("Error creating "+label, "key", req.Key, "error", err)
		return nil, apperrors.NewBadRequestError("Error creating "+label, err)
	}
	logger.Info(spec.label+" successfully created", "key", req.Key)

	out := &Created{Key: req.Key, Name: lang.Message(req.NameUK, req.NameEN)}
	if spec.described {
		out.Description = lang.Message(req.DescriptionUK, req.DescriptionEN)
	}
	if parent != nil {
		out.ParentGenreKey = parent.Key
	}
	return out, nil
}
