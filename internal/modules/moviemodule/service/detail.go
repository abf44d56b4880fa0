package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

const noAvatar = "no avatar"

// Detail renders the movie page. The owner's rating and visual profile are
// required; a non owner caller also gets their own rating.
func (s *MovieService) Detail(ctx context.Context, key string, lang types.Language, user *database.User) (*movietypes.MovieDetail, error) {
	movie, err := s.getMovie(ctx, s.repo.GetDetail, key)
	if err != nil {
		return nil, err
	}

	owner := user
	if owner == nil || !owner.Role.IsOwner() {
		owner, err = database.FindOwner(ctx, s.repo.GetDB())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Owner not found")
			return nil, apperrors.NewNotFoundError("Owner not found")
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError("find owner", err)
		}
	}

	ownerRating := findRating(movie.Ratings, owner.ID)
	if ownerRating == nil {
		logger.Error("Owner rating not found", "movie", key)
		return nil, apperrors.NewNotFoundError("Owner rating not found")
	}

	var profile *database.VisualProfile
	for i := range movie.VisualProfiles {
		if movie.VisualProfiles[i].UserID == owner.ID {
			profile = &movie.VisualProfiles[i]
			break
		}
	}
	if profile == nil || profile.Category == nil {
		logger.Error("Visual profile not found", "movie", key)
		return nil, apperrors.NewNotFoundError("Visual profile not found")
	}

	out := &movietypes.MovieDetail{
		Key:                          movie.Key,
		Title:                        movie.Translation(lang).Title,
		Description:                  movie.Translation(lang).Description,
		Location:                     movie.Translation(lang).Location,
		Poster:                       movie.Poster,
		Budget:                       money(movie.Budget),
		DomesticGross:                money(movie.DomesticGross),
		WorldwideGross:               money(movie.WorldwideGross),
		Duration:                     database.FormatDuration(movie.Duration, lang),
		ReleaseDate:                  database.FormatDate(movie.ReleaseDate),
		VisualProfile:                visualProfileItem(profile, lang),
		RatingsCount:                 movie.RatingsCount,
		RatingCriterion:              movie.RatingCriterion,
		OwnerRating:                  ownerRating.Rating,
		OverallAverageRating:         movie.AverageRating,
		OverallAverageRatingCriteria: ratings.Overall(movie.Ratings),
		SharedUniverseOrder:          movie.SharedUniverseOrder,
	}
	if lang == types.LanguageUK {
		title := movie.Translation(types.LanguageEN).Title
		out.TitleEN = &title
	}

	if user != nil && !user.Role.IsOwner() {
		if r := findRating(movie.Ratings, user.ID); r != nil {
			score := r.Rating
			criteria := ratings.ForCriterion(r, movie.RatingCriterion)
			out.UserRating = &score
			out.UserRatingCriteria = &criteria
		}
	}

	now := s.now()
	out.Actors = actorsOut(movie.Characters, lang, now)
	out.Directors = directorsOut(movie.Directors, lang, now)
	out.Genres, out.Subgenres, out.Specifications, out.Keywords, out.ActionTimes = matchesOut(movie, lang)

	if movie.RelationType != nil {
		collection, err := s.repo.Collection(ctx, movie)
		if err != nil {
			return nil, apperrors.NewDatabaseError("load collection", err)
		}
		out.RelatedMovies = make([]movietypes.RelatedMovie, 0, len(collection))
		for i := range collection {
			related := &collection[i]
			var relation types.RelationType
			if related.RelationType != nil {
				relation = *related.RelationType
			}
			out.RelatedMovies = append(out.RelatedMovies, movietypes.RelatedMovie{
				Key:          related.Key,
				Poster:       related.Poster,
				Title:        related.Translation(lang).Title,
				RelationType: relation,
			})
		}
	}

	if su := movie.SharedUniverse; su != nil {
		members, err := s.repo.UniverseMovies(ctx, su.ID)
		if err != nil {
			return nil, apperrors.NewDatabaseError("load shared universe", err)
		}
		name := su.Translation(lang)
		out.SharedUniverse = &movietypes.SharedUniverseOut{
			Key:         su.Key,
			Name:        name.Name,
			Description: name.Description,
			Movies:      make([]movietypes.UniverseMovie, 0, len(members)),
		}
		for i := range members {
			m := &members[i]
			order := 0
			if m.SharedUniverseOrder != nil {
				order = *m.SharedUniverseOrder
			}
			out.SharedUniverse.Movies = append(out.SharedUniverse.Movies, movietypes.UniverseMovie{
				Key:    m.Key,
				Title:  m.Translation(lang).Title,
				Poster: m.Poster,
				Order:  order,
			})
		}
	}

	return out, nil
}

func findRating(rs []database.Rating, userID uint) *database.Rating {
	for i := range rs {
		if rs[i].UserID == userID {
			return &rs[i]
		}
	}
	return nil
}

// money renders an amount, or nil when it was never recorded
func money(v int64) *string {
	if v == 0 {
		return nil
	}
	s := database.FormatMoney(v)
	return &s
}

func visualProfileItem(p *database.VisualProfile, lang types.Language) types.CategoryItem {
	rs := append([]database.VisualProfileRating(nil), p.Ratings...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Order < rs[j].Order })

	t := p.Category.Translation(lang)
	item := types.CategoryItem{
		Key:         p.Category.Key,
		Name:        t.Name,
		Description: t.Description,
		Criteria:    make([]types.CriterionItem, 0, len(rs)),
	}
	for _, r := range rs {
		if r.Criterion == nil {
			continue
		}
		ct := r.Criterion.Translation(lang)
		item.Criteria = append(item.Criteria, types.CriterionItem{
			Key:         r.Criterion.Key,
			Name:        ct.Name,
			Description: ct.Description,
			Rating:      r.Rating,
		})
	}
	return item
}

func actorsOut(chars []database.MovieActorCharacter, lang types.Language, now time.Time) []movietypes.PersonOut {
	sorted := append([]database.MovieActorCharacter(nil), chars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	out := make([]movietypes.PersonOut, 0, len(sorted))
	for _, ch := range sorted {
		if ch.Actor == nil {
			continue
		}
		p := personOut(ch.Actor.Key, ch.Actor.Translation(lang), ch.Actor.Avatar, ch.Actor.Born, ch.Actor.Died, now)
		if ch.Character != nil {
			p.CharacterName = ch.Character.Translation(lang).Name
		}
		out = append(out, p)
	}
	return out
}

func directorsOut(directors []database.Director, lang types.Language, now time.Time) []movietypes.PersonOut {
	out := make([]movietypes.PersonOut, 0, len(directors))
	for i := range directors {
		d := &directors[i]
		avatar := d.Avatar
		if avatar == "" {
			avatar = noAvatar
		}
		out = append(out, personOut(d.Key, d.Translation(lang), avatar, d.Born, d.Died, now))
	}
	return out
}

func personOut(key string, t database.PersonTranslation, avatar string, born time.Time, died *time.Time, now time.Time) movietypes.PersonOut {
	p := movietypes.PersonOut{
		Key:          key,
		FullName:     t.FullName(),
		AvatarURL:    avatar,
		BornLocation: t.BornIn,
		Age:          database.Age(born, died, now),
		Born:         database.FormatDate(born),
	}
	if died != nil {
		p.Died = database.FormatDate(*died)
	}
	return p
}

func matchesOut(m *database.Movie, lang types.Language) (genres, subgenres, specs, keywords, times []movietypes.MatchOut) {
	genres = make([]movietypes.MatchOut, 0, len(m.GenreMatches))
	for _, gm := range m.GenreMatches {
		if gm.Genre != nil {
			genres = append(genres, matchOut(gm.Genre.Key, gm.Genre.Translation(lang), gm.PercentageMatch))
		}
	}

	subgenres = make([]movietypes.MatchOut, 0, len(m.SubgenreMatches))
	for _, sm := range m.SubgenreMatches {
		if sm.Subgenre == nil {
			continue
		}
		out := matchOut(sm.Subgenre.Key, sm.Subgenre.Translation(lang), sm.PercentageMatch)
		if sm.Subgenre.ParentGenre != nil {
			out.SubgenreParentKey = sm.Subgenre.ParentGenre.Key
		}
		subgenres = append(subgenres, out)
	}

	specs = make([]movietypes.MatchOut, 0, len(m.SpecificationMatches))
	for _, sm := range m.SpecificationMatches {
		if sm.Specification != nil {
			specs = append(specs, matchOut(sm.Specification.Key, sm.Specification.Translation(lang), sm.PercentageMatch))
		}
	}

	keywords = make([]movietypes.MatchOut, 0, len(m.KeywordMatches))
	for _, km := range m.KeywordMatches {
		if km.Keyword != nil {
			keywords = append(keywords, matchOut(km.Keyword.Key, km.Keyword.Translation(lang), km.PercentageMatch))
		}
	}

	times = make([]movietypes.MatchOut, 0, len(m.ActionTimeMatches))
	for _, am := range m.ActionTimeMatches {
		if am.ActionTime != nil {
			times = append(times, matchOut(am.ActionTime.Key, am.ActionTime.Translation(lang), am.PercentageMatch))
		}
	}
	return genres, subgenres, specs, keywords, times
}

func matchOut(key string, t database.NamedTranslation, pct float64) movietypes.MatchOut {
	return movietypes.MatchOut{
		Key:             key,
		Name:            t.Name,
		Description:     t.Description,
		PercentageMatch: pct,
	}
}
