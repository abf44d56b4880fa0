// Package service implements actor, director and character lookups and
// person creation.
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

const (
	searchLimit    = 5
	topActorsLimit = 20
)

// Kind selects actors or directors
type Kind string

const (
	KindActor    Kind = "actor"
	KindDirector Kind = "director"
)

func (k Kind) label() string {
	if k == KindDirector {
		return "Director"
	}
	return "Actor"
}

// PersonRequest is the form of the person create endpoints. Dates use
// dd.mm.yyyy.
type PersonRequest struct {
	Key         string `json:"key" form:"key" binding:"required"`
	FirstNameUK string `json:"first_name_uk" form:"first_name_uk" binding:"required"`
	LastNameUK  string `json:"last_name_uk" form:"last_name_uk"`
	FirstNameEN string `json:"first_name_en" form:"first_name_en" binding:"required"`
	LastNameEN  string `json:"last_name_en" form:"last_name_en"`
	Born        string `json:"born" form:"born" binding:"required"`
	Died        string `json:"died" form:"died"`
	BornInUK    string `json:"born_in_uk" form:"born_in_uk"`
	BornInEN    string `json:"born_in_en" form:"born_in_en"`
}

// PersonOut is a person in list responses
type PersonOut struct {
	Key      string `json:"key"`
	FullName string `json:"full_name"`
}

// CreatedPerson is the response of a create endpoint
type CreatedPerson struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// TopActor is an actor with the number of movies they appear in
type TopActor struct {
	Key         string `json:"key"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url"`
	MoviesCount int    `json:"movies_count"`
}

// PeopleService serves actors, directors and characters
type PeopleService struct {
	db     *gorm.DB
	tx     services.TransactionService
	assets services.AssetService
}

var _ services.PeopleService = (*PeopleService)(nil)

// NewPeopleService creates a people service. assets may be nil, in which
// case uploaded avatars are ignored.
func NewPeopleService(db *gorm.DB, tx services.TransactionService, assets services.AssetService) *PeopleService {
	return &PeopleService{db: db, tx: tx, assets: assets}
}

// People returns the actor, director and character menus sorted by name.
// Actors and directors must not be empty.
func (s *PeopleService) People(ctx context.Context, lang types.Language) (*types.People, error) {
	db := s.db.WithContext(ctx)
	other := lang.Other()

	var actors []database.Actor
	if err := db.Preload("Translations").Find(&actors).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load actors", err)
	}
	if len(actors) == 0 {
		logger.Error("Actors not found")
		return nil, apperrors.NewNotFoundError("Actors not found")
	}
	var directors []database.Director
	if err := db.Preload("Translations").Find(&directors).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load directors", err)
	}
	if len(directors) == 0 {
		logger.Error("Directors not found")
		return nil, apperrors.NewNotFoundError("Directors not found")
	}
	var characters []database.Character
	if err := db.Preload("Translations").Find(&characters).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load characters", err)
	}

	out := &types.People{
		Actors:     make([]types.PersonItem, 0, len(actors)),
		Directors:  make([]types.PersonItem, 0, len(directors)),
		Characters: make([]types.PersonItem, 0, len(characters)),
	}
	for i := range actors {
		out.Actors = append(out.Actors, types.PersonItem{Key: actors[i].Key, Name: actors[i].FullName(lang), AnotherLangName: actors[i].FullName(other)})
	}
	for i := range directors {
		out.Directors = append(out.Directors, types.PersonItem{Key: directors[i].Key, Name: directors[i].FullName(lang), AnotherLangName: directors[i].FullName(other)})
	}
	for i := range characters {
		out.Characters = append(out.Characters, types.PersonItem{
			Key:             characters[i].Key,
			Name:            characters[i].Translation(lang).Name,
			AnotherLangName: characters[i].Translation(other).Name,
		})
	}

	byName := func(p types.PersonItem) string { return p.Name }
	utils.SortByName(out.Actors, string(lang), byName)
	utils.SortByName(out.Directors, string(lang), byName)
	utils.SortByName(out.Characters, string(lang), byName)
	return out, nil
}

// List returns every actor or director in creation order
func (s *PeopleService) List(ctx context.Context, kind Kind, lang types.Language) ([]PersonOut, error) {
	var out []PersonOut
	switch kind {
	case KindDirector:
		var rows []database.Director
		if err := s.db.WithContext(ctx).Preload("Translations").Order("id").Find(&rows).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load directors", err)
		}
		for i := range rows {
			out = append(out, PersonOut{Key: rows[i].Key, FullName: rows[i].FullName(lang)})
		}
	default:
		var rows []database.Actor
		if err := s.db.WithContext(ctx).Preload("Translations").Order("id").Find(&rows).Error; err != nil {
			return nil, apperrors.NewDatabaseError("load actors", err)
		}
		for i := range rows {
			out = append(out, PersonOut{Key: rows[i].Key, FullName: rows[i].FullName(lang)})
		}
	}
	if len(out) == 0 {
		msg := kind.label() + "s not found"
		logger.Error(msg)
		return nil, apperrors.NewNotFoundError(msg)
	}
	return out, nil
}

// Create stores an actor or director and its avatar in one transaction
func (s *PeopleService) Create(ctx context.Context, kind Kind, req PersonRequest, avatar *multipart.FileHeader, lang types.Language) (*CreatedPerson, error) {
	label := kind.label()
	table := "actors"
	assetKind := types.AssetActors
	if kind == KindDirector {
		table, assetKind = "directors", types.AssetDirectors
	}

	var count int64
	if err := s.db.WithContext(ctx).Table(table).Where("key = ?", req.Key).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError("check "+strings.ToLower(label), err)
	}
	if count > 0 {
		logger.Error(label+" already exists", "key", req.Key)
		return nil, apperrors.NewBadRequestError(label+" already exists", nil)
	}

	born, err := database.ParseSheetDate(req.Born)
	if err != nil || born == nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid born date: %q", req.Born))
	}
	died, err := database.ParseSheetDate(req.Died)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	uk := database.PersonTranslation{Language: types.LanguageUK, FirstName: req.FirstNameUK, LastName: req.LastNameUK, BornIn: req.BornInUK}
	en := database.PersonTranslation{Language: types.LanguageEN, FirstName: req.FirstNameEN, LastName: req.LastNameEN, BornIn: req.BornInEN}

	out := &CreatedPerson{Key: req.Key, Name: lang.Message(uk.FullName(), en.FullName())}
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var (
			row interface{}
			id  func() uint
		)
		if kind == KindDirector {
			d := &database.Director{Key: req.Key, Born: *born, Died: died, Translations: []database.DirectorTranslation{{PersonTranslation: uk}, {PersonTranslation: en}}}
			row, id = d, func() uint { return d.ID }
		} else {
			a := &database.Actor{Key: req.Key, Born: *born, Died: died, Translations: []database.ActorTranslation{{PersonTranslation: uk}, {PersonTranslation: en}}}
			row, id = a, func() uint { return a.ID }
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		if avatar == nil || s.assets == nil {
			return nil
		}
		name, err := s.assets.SaveImage(ctx, assetKind, id(), avatar)
		if err != nil {
			return fmt.Errorf("avatar: %w", err)
		}
		out.Avatar = name
		return tx.Table(table).Where("id = ?", id()).Update("avatar", name).Error
	})
	if err != nil {
		msg := "Error creating " + strings.ToLower(label)
		logger.Error(msg, "key", req.Key, "error", err)
		if out.Avatar != "" {
			if rmErr := s.assets.RemoveImage(assetKind, out.Avatar); rmErr != nil {
				logger.Warn("Failed to remove orphaned image", "file", out.Avatar, "kind", assetKind, "error", rmErr)
			}
		}
		return nil, apperrors.NewBadRequestError(msg, err)
	}

	logger.Info(label+" successfully created", "key", req.Key)
	return out, nil
}

// TopActors returns the actors appearing in the most movies
func (s *PeopleService) TopActors(ctx context.Context, lang types.Language) ([]TopActor, error) {
	var counts []struct {
		ActorID     uint
		MoviesCount int
	}
	err := s.db.WithContext(ctx).Table("movie_actors").
		Select("actor_id, COUNT(DISTINCT movie_id) AS movies_count").
		Group("actor_id").
		Order("movies_count DESC, actor_id").
		Limit(topActorsLimit).
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("count actor movies", err)
	}
	if len(counts) == 0 {
		logger.Error("Actors not found")
		return nil, apperrors.NewNotFoundError("Actors not found")
	}

	ids := make([]uint, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.ActorID)
	}
	var actors []database.Actor
	if err := s.db.WithContext(ctx).Preload("Translations").Where("id IN ?", ids).Find(&actors).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load actors", err)
	}
	byID := make(map[uint]*database.Actor, len(actors))
	for i := range actors {
		byID[actors[i].ID] = &actors[i]
	}

	out := make([]TopActor, 0, len(counts))
	for _, c := range counts {
		a, ok := byID[c.ActorID]
		if !ok {
			continue
		}
		out = append(out, TopActor{Key: a.Key, FullName: a.FullName(lang), AvatarURL: a.Avatar, MoviesCount: c.MoviesCount})
	}
	return out, nil
}
