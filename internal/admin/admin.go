// Package admin holds the maintenance tasks run by the titleseeker-admin CLI.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// DefaultProfileRating is the score every criterion gets in a generated profile
const DefaultProfileRating = 3

// CreateVisualProfiles gives every movie without a visual profile an owner
// profile in the first category, each criterion rated DefaultProfileRating
func CreateVisualProfiles(ctx context.Context, db *gorm.DB) (int, error) {
	log := logger.Named("admin")
	created := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movies []database.Movie
		if err := tx.Order("id").Find(&movies).Error; err != nil {
			return err
		}
		if len(movies) == 0 {
			return errors.New("movie table is empty, export movies first")
		}

		owner, err := database.FindOwner(ctx, tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("owner user not found")
		}
		if err != nil {
			return err
		}

		var category database.VisualProfileCategory
		err = tx.Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			Order("id").First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("category table is empty, export title categories first")
		}
		if err != nil {
			return err
		}

		var withProfile []uint
		if err := tx.Model(&database.VisualProfile{}).Distinct().Pluck("movie_id", &withProfile).Error; err != nil {
			return err
		}
		skip := make(map[uint]bool, len(withProfile))
		for _, id := range withProfile {
			skip[id] = true
		}

		for _, movie := range movies {
			if skip[movie.ID] {
				log.Debug("Movie already has a visual profile", "movie", movie.Key)
				continue
			}
			profile := database.VisualProfile{MovieID: movie.ID, UserID: owner.ID, CategoryID: category.ID}
			for i, criterion := range category.Criteria {
				profile.Ratings = append(profile.Ratings, database.VisualProfileRating{
					CriterionID: criterion.ID,
					Rating:      DefaultProfileRating,
					Order:       i + 1,
				})
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("create visual profile for %s: %w", movie.Key, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info("Visual profiles created", "count", created)
	return created, nil
}

// DeleteActors removes every actor with its translations and movie links.
// On postgres the id sequence restarts at 1.
func DeleteActors(ctx context.Context, db *gorm.DB) (int64, error) {
	var deleted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&database.ActorTranslation{}).Error; err != nil {
			return fmt.Errorf("delete actor translations: %w", err)
		}
		if err := tx.Exec("DELETE FROM movie_actors").Error; err != nil {
			return fmt.Errorf("delete movie actors: %w", err)
		}
		if err := all.Delete(&database.MovieActorCharacter{}).Error; err != nil {
			return fmt.Errorf("delete character links: %w", err)
		}
		res := all.Delete(&database.Actor{})
		if res.Error != nil {
			return fmt.Errorf("delete actors: %w", res.Error)
		}
		deleted = res.RowsAffected

		if tx.Dialector.Name() == "postgres" {
			return tx.Exec("ALTER SEQUENCE actors_id_seq RESTART WITH 1").Error
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Named("admin").Info("Actors deleted", "count", deleted)
	return deleted, nil
}

type filterTable struct {
	name  string
	model interface{}
}

var filterTables = []filterTable{
	{"Genre", &database.Genre{}},
	{"Subgenre", &database.Subgenre{}},
	{"Specification", &database.Specification{}},
	{"Keyword", &database.Keyword{}},
	{"ActionTime", &database.ActionTime{}},
}

// UpdateFiltersWithUUID assigns a uuid to every filter row lacking one.
// Each filter table must hold at least one row.
func UpdateFiltersWithUUID(ctx context.Context, db *gorm.DB) (int, error) {
	updated := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range filterTables {
			var count int64
			if err := tx.Model(t.model).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%s table is empty, export it first", t.name)
			}
		}

		for _, t := range filterTables {
			var ids []uint
			if err := tx.Model(t.model).Where("uuid IS NULL OR uuid = ''").Order("id").Pluck("id", &ids).Error; err != nil {
				return err
			}
			for _, id := range ids {
				if err := tx.Model(t.model).Where("id = ?", id).Update("uuid", utils.GenerateUUID()).Error; err != nil {
					return fmt.Errorf("update %s %d: %w", t.name, id, err)
				}
			}
			updated += len(ids)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Named("admin").Info("Filters updated with UUIDs", "count", updated)
	return updated, nil
}

// CreateOwner creates the owner account from cfg. An existing user with
// the same email is returned unchanged with created false.
func CreateOwner(ctx context.Context, db *gorm.DB, cfg config.AdminConfig) (user *database.User, created bool, err error) {
	email := strings.TrimSpace(cfg.Email)
	if email == "" || cfg.Password == "" {
		return nil, false, errors.New("admin email and password must be configured")
	}

	var existing database.User
	err = db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	owner := &database.User{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Email:     email,
		Role:      types.RoleOwner,
	}
	if err := owner.SetPassword(cfg.Password); err != nil {
		return nil, false, err
	}
	if err := db.WithContext(ctx).Create(owner).Error; err != nil {
		return nil, false, fmt.Errorf("create owner: %w", err)
	}
	logger.Named("admin").Info("Owner created", "email", email)
	return owner, true, nil
}
