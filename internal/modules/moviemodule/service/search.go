package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/modules/moviemodule/core/filters"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
)

const (
	searchLimit      = 5
	searchCandidates = 50
	randomCount      = 10
	similarLimit     = 10
)

// Search finds movies whose title in either language contains the query.
// Closer fuzzy matches come first.
func (s *MovieService) Search(ctx context.Context, query string, titleType types.SearchType, lang types.Language) ([]types.SearchResult, error) {
	if titleType != "" && titleType != types.SearchMovies {
		logger.Error("Title type not supported", "title_type", titleType)
		return nil, apperrors.NewForbiddenError("Title type not supported")
	}

	normalized := utils.NormalizeSearch(query)
	movies, err := s.repo.SearchByTitle(ctx, normalized, searchCandidates)
	if err != nil {
		return nil, apperrors.NewDatabaseError("search movies", err)
	}

	rank := make(map[uint]int, len(movies))
	for _, m := range movies {
		best := -1
		for _, t := range m.Translations {
			d := fuzzy.RankMatchNormalizedFold(normalized, t.SearchTitle)
			if d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		rank[m.ID] = best
	}
	sort.SliceStable(movies, func(i, j int) bool { return rank[movies[i].ID] < rank[movies[j].ID] })
	if len(movies) > searchLimit {
		movies = movies[:searchLimit]
	}

	genres, err := s.mainGenres(ctx, movies, lang)
	if err != nil {
		return nil, err
	}

	out := make([]types.SearchResult, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		year := "No release date"
		if !m.ReleaseDate.IsZero() {
			year = strconv.Itoa(m.ReleaseDate.Year())
		}
		out = append(out, types.SearchResult{
			Key:       m.Key,
			Name:      m.DisplayName(),
			Image:     m.Poster,
			ExtraInfo: fmt.Sprintf("%s | %s | %s", database.FormatDuration(m.Duration, lang), year, genres[m.ID]),
			Type:      string(types.SearchMovies),
		})
	}
	return out, nil
}

// Random returns carousel cards of consecutive movies from a random offset
func (s *MovieService) Random(ctx context.Context, lang types.Language) ([]movietypes.CarouselMovie, error) {
	movies, err := s.repo.Random(ctx, randomCount)
	if err != nil {
		return nil, apperrors.NewDatabaseError("random movies", err)
	}
	if len(movies) == 0 {
		logger.Error("Movies not found")
		return nil, apperrors.NewNotFoundError("Movies not found")
	}

	out := make([]movietypes.CarouselMovie, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		t := m.Translation(lang)
		card := movietypes.CarouselMovie{
			Key:         m.Key,
			Title:       t.Title,
			Description: t.Description,
			Poster:      m.Poster,
			ReleaseDate: database.FormatDate(m.ReleaseDate),
			Duration:    database.FormatDuration(m.Duration, lang),
			Location:    t.Location,
			Genres:      make([]movietypes.KeyName, 0, len(m.GenreMatches)),
			Actors:      make([]movietypes.CarouselPerson, 0, len(m.Actors)),
			Directors:   make([]movietypes.CarouselPerson, 0, len(m.Directors)),
		}

		matches := append([]database.MovieGenre(nil), m.GenreMatches...)
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].PercentageMatch > matches[j].PercentageMatch })
		for _, gm := range matches {
			if gm.Genre != nil {
				card.Genres = append(card.Genres, movietypes.KeyName{Key: gm.Genre.Key, Name: gm.Genre.Translation(lang).Name})
			}
		}
		for j := range m.Actors {
			a := &m.Actors[j]
			card.Actors = append(card.Actors, movietypes.CarouselPerson{Key: a.Key, FullName: a.FullName(lang), AvatarURL: a.Avatar})
		}
		for j := range m.Directors {
			d := &m.Directors[j]
			card.Directors = append(card.Directors, movietypes.CarouselPerson{Key: d.Key, FullName: d.FullName(lang), AvatarURL: d.Avatar})
		}
		out = append(out, card)
	}
	return out, nil
}

// Similar recommends movies sharing the genre and subgenre profile of key.
// The genre tolerance narrows as more genres reach 100%. When nothing
// matches, specifications and keywords replace the subgenre requirement.
func (s *MovieService) Similar(ctx context.Context, key string, lang types.Language) ([]movietypes.SimilarMovie, error) {
	movie, err := s.getMovie(ctx, s.repo.GetWithMatches, key)
	if err != nil {
		return nil, err
	}

	below, above := genreTolerance(movie.GenreMatches)

	var genreConds, subgenreConds, specConds, keywordConds []filters.Condition
	for _, gm := range movie.GenreMatches {
		genreConds = append(genreConds, filters.MatchID(filters.GenreGroup, gm.GenreID, gm.PercentageMatch-below, gm.PercentageMatch+above))
	}
	for _, sm := range movie.SubgenreMatches {
		subgenreConds = append(subgenreConds, filters.MatchID(filters.SubgenreGroup, sm.SubgenreID, sm.PercentageMatch-10, sm.PercentageMatch+10))
	}
	for _, sm := range movie.SpecificationMatches {
		specConds = append(specConds, filters.MatchID(filters.SpecificationGroup, sm.SpecificationID, sm.PercentageMatch-10, sm.PercentageMatch+10))
	}
	for _, km := range movie.KeywordMatches {
		keywordConds = append(keywordConds, filters.MatchID(filters.KeywordGroup, km.KeywordID, km.PercentageMatch-10, km.PercentageMatch+10))
	}

	collection, err := s.repo.Collection(ctx, movie)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load collection", err)
	}
	exclude := []uint{movie.ID}
	for _, m := range collection {
		exclude = append(exclude, m.ID)
	}

	similar, err := s.repo.Similar(ctx, filters.And(filters.Or(genreConds...), filters.Or(subgenreConds...)), exclude, similarLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("similar movies", err)
	}

	if len(similar) == 0 {
		// an empty side of the fallback imposes nothing on the other
		var fallback filters.Condition
		if len(specConds) > 0 && len(keywordConds) > 0 {
			fallback = filters.Or(append(specConds, keywordConds...)...)
		}
		similar, err = s.repo.Similar(ctx, filters.And(filters.Or(genreConds...), fallback), exclude, similarLimit)
		if err != nil {
			return nil, apperrors.NewDatabaseError("similar movies", err)
		}
	}

	out := make([]movietypes.SimilarMovie, 0, len(similar))
	for i := range similar {
		out = append(out, movietypes.SimilarMovie{
			Key:    similar[i].Key,
			Title:  similar[i].Translation(lang).Title,
			Poster: similar[i].Poster,
		})
	}
	return out, nil
}

// genreTolerance returns how far below and above each genre percentage a
// candidate may lie
func genreTolerance(matches []database.MovieGenre) (below, above float64) {
	below, above = 10, 10
	if len(matches) > 1 {
		below, above = 20, 20
	}

	full := 0
	for _, gm := range matches {
		if gm.PercentageMatch == 100 {
			full++
		}
	}
	switch {
	case full >= 3:
		below, above = 25, 0
	case full == 2:
		below, above = 20, 0
	case full == 1:
		below, above = 15, 0
	}
	return below, above
}
