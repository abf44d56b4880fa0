package service

import (
	"context"
	"errors"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"gorm.io/gorm"
)

// CriterionRating scores one criterion of a visual profile
type CriterionRating struct {
	Key    string `json:"key" binding:"required"`
	Rating int    `json:"rating"`
}

// VisualProfileRequest is the body of the title visual profile endpoint.
// Criteria are stored in the order given.
type VisualProfileRequest struct {
	MovieKey    string            `json:"movie_key" binding:"required"`
	CategoryKey string            `json:"category_key" binding:"required"`
	Criteria    []CriterionRating `json:"criteria"`
}

// UpdateVisualProfile edits the user's visual profile of a movie. A new
// category replaces every criterion rating; the same category updates the
// existing ones in place.
func (s *UserService) UpdateVisualProfile(ctx context.Context, user *database.User, req VisualProfileRequest) error {
	movie, err := s.findMovie(ctx, req.MovieKey)
	if err != nil {
		return err
	}

	var profile database.VisualProfile
	err = s.db.WithContext(ctx).
		Preload("Category").
		Where("movie_id = ? AND user_id = ?", movie.ID, user.ID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("User has no visual profile for this movie", "movie", movie.Key, "user", user.UUID)
		return apperrors.NewNotFoundError("User has no visual profile for this movie")
	}
	if err != nil {
		return apperrors.NewDatabaseError("find visual profile", err)
	}

	if profile.Category == nil || profile.Category.Key != req.CategoryKey {
		err = s.switchCategory(ctx, &profile, req)
	} else {
		err = s.rescore(ctx, &profile, req)
	}
	if err != nil {
		return err
	}
	logger.Info("Title visual profile updated", "movie", movie.Key, "user", user.UUID)
	return nil
}

func (s *UserService) switchCategory(ctx context.Context, profile *database.VisualProfile, req VisualProfileRequest) error {
	var category database.VisualProfileCategory
	err := s.db.WithContext(ctx).Where("key = ?", req.CategoryKey).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Category not found", "category", req.CategoryKey)
		return apperrors.NewNotFoundError("Category not found")
	}
	if err != nil {
		return apperrors.NewDatabaseError("find category", err)
	}

	return s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(profile).Update("category_id", category.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&database.VisualProfileRating{}).Error; err != nil {
			return err
		}
		for i, c := range req.Criteria {
			criterion, err := findCriterion(tx, c.Key)
			if err != nil {
				return err
			}
			row := database.VisualProfileRating{
				ProfileID:   profile.ID,
				CriterionID: criterion.ID,
				Rating:      c.Rating,
				Order:       i + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *UserService) rescore(ctx context.Context, profile *database.VisualProfile, req VisualProfileRequest) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		for i, c := range req.Criteria {
			criterion, err := findCriterion(tx, c.Key)
			if err != nil {
				return err
			}
			var row database.VisualProfileRating
			err = tx.Where("profile_id = ? AND criterion_id = ?", profile.ID, criterion.ID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Error("Criterion rating not found", "criterion", c.Key, "profile", profile.ID)
				return apperrors.NewNotFoundError("Criterion rating not found")
			}
			if err != nil {
				return err
			}
			err = tx.Model(&row).Updates(map[string]interface{}{"rating": c.Rating, "display_order": i + 1}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction, passing AppErrors through untouched
func (s *UserService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.tx.WithTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewDatabaseError("update visual profile", err)
}

func findCriterion(tx *gorm.DB, key string) (*database.VisualProfileCriterion, error) {
	var criterion database.VisualProfileCriterion
	err := tx.Where("key = ?", key).First(&criterion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Criterion not found", "criterion", key)
		return nil, apperrors.NewNotFoundError("Criterion not found")
	}
	if err != nil {
		return nil, err
	}
	return &criterion, nil
}
