// Package ratings aggregates user ratings into movie level figures.
package ratings

import (
	"context"
	"fmt"
	"math"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

// baseCriterionFloor replaces an empty base criterion average in public output
const baseCriterionFloor = 0.01

// Criteria holds per criterion scores of one rating or an average of many
type Criteria struct {
	Acting           float64  `json:"acting"`
	PlotStoryline    float64  `json:"plot_storyline"`
	ScriptDialogue   float64  `json:"script_dialogue"`
	Music            float64  `json:"music"`
	Enjoyment        float64  `json:"enjoyment"`
	ProductionDesign float64  `json:"production_design"`
	VisualEffects    *float64 `json:"visual_effects"`
	ScareFactor      *float64 `json:"scare_factor"`
	Humor            *float64 `json:"humor"`
	AnimationCartoon *float64 `json:"animation_cartoon"`
}

// Apply copies the scores onto r. Zero optional scores are stored as null.
func (c Criteria) Apply(r *database.Rating) {
	r.Acting = c.Acting
	r.PlotStoryline = c.PlotStoryline
	r.ScriptDialogue = c.ScriptDialogue
	r.Music = c.Music
	r.Enjoyment = c.Enjoyment
	r.ProductionDesign = c.ProductionDesign
	r.VisualEffects = nonZero(c.VisualEffects)
	r.ScareFactor = nonZero(c.ScareFactor)
	r.Humor = nonZero(c.Humor)
	r.AnimationCartoon = nonZero(c.AnimationCartoon)
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate returns the rounded mean of the overall ratings and their count.
// No ratings yields zero for both.
func Calculate(rs []database.Rating) (float64, int) {
	if len(rs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range rs {
		sum += r.Rating
	}
	return Round2(sum / float64(len(rs))), len(rs)
}

// AverageByCriteria averages every criterion over the ratings that carry it
func AverageByCriteria(rs []database.Rating) Criteria {
	var (
		out   Criteria
		extra [4]accumulator
	)
	if len(rs) == 0 {
		return out
	}

	for _, r := range rs {
		out.Acting += r.Acting
		out.PlotStoryline += r.PlotStoryline
		out.ScriptDialogue += r.ScriptDialogue
		out.Music += r.Music
		out.Enjoyment += r.Enjoyment
		out.ProductionDesign += r.ProductionDesign
		extra[0].add(r.VisualEffects)
		extra[1].add(r.ScareFactor)
		extra[2].add(r.Humor)
		extra[3].add(r.AnimationCartoon)
	}

	n := float64(len(rs))
	out.Acting = Round2(out.Acting / n)
	out.PlotStoryline = Round2(out.PlotStoryline / n)
	out.ScriptDialogue = Round2(out.ScriptDialogue / n)
	out.Music = Round2(out.Music / n)
	out.Enjoyment = Round2(out.Enjoyment / n)
	out.ProductionDesign = Round2(out.ProductionDesign / n)
	out.VisualEffects = extra[0].mean()
	out.ScareFactor = extra[1].mean()
	out.Humor = extra[2].mean()
	out.AnimationCartoon = extra[3].mean()
	return out
}

// Overall is AverageByCriteria with empty base criteria raised to 0.01
func Overall(rs []database.Rating) Criteria {
	c := AverageByCriteria(rs)
	for _, v := range []*float64{&c.Acting, &c.PlotStoryline, &c.ScriptDialogue, &c.Music, &c.Enjoyment, &c.ProductionDesign} {
		if *v == 0 {
			*v = baseCriterionFloor
		}
	}
	return c
}

// ForCriterion returns the scores of r keeping only the optional
// criterion the movie is rated on.
func ForCriterion(r *database.Rating, criterion types.RatingCriterion) Criteria {
	c := Criteria{
		Acting:           r.Acting,
		PlotStoryline:    r.PlotStoryline,
		ScriptDialogue:   r.ScriptDialogue,
		Music:            r.Music,
		Enjoyment:        r.Enjoyment,
		ProductionDesign: r.ProductionDesign,
	}
	switch criterion {
	case types.CriterionVisualEffects:
		c.VisualEffects = r.VisualEffects
	case types.CriterionScareFactor:
		c.ScareFactor = r.ScareFactor
	case types.CriterionHumor:
		c.Humor = r.Humor
	case types.CriterionAnimationCartoon:
		c.AnimationCartoon = r.AnimationCartoon
	}
	return c
}

// ProcessMovieRating refreshes the stored average and count of a movie.
// Pass the transaction handle when called inside one.
func ProcessMovieRating(ctx context.Context, db *gorm.DB, movieID uint) error {
	var rs []database.Rating
	if err := db.WithContext(ctx).Where("movie_id = ?", movieID).Find(&rs).Error; err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}

	avg, count := Calculate(rs)
	err := db.WithContext(ctx).Model(&database.Movie{}).
		Where("id = ?", movieID).
		Updates(map[string]interface{}{"average_rating": avg, "ratings_count": count}).Error
	if err != nil {
		return fmt.Errorf("failed to update movie rating: %w", err)
	}

	logger.Debug("Movie rating processed", "movie_id", movieID, "average", avg, "count", count)
	return nil
}

// RecalculateAll refreshes every movie in one transaction and returns
// the number of movies processed.
func RecalculateAll(ctx context.Context, db *gorm.DB) (int, error) {
	var ids []uint
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Movie{}).Order("id").Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list movies: %w", err)
		}
		for _, id := range ids {
			if err := ProcessMovieRating(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Movie ratings recalculated", "movies", len(ids))
	return len(ids), nil
}

type accumulator struct {
	sum float64
	n   int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a accumulator) mean() *float64 {
	if a.n == 0 {
		return nil
	}
	v := Round2(a.sum / float64(a.n))
	return &v
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	out := *v
	return &out
}
