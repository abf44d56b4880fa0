package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	movietypes "github.com/mantonx/titleseeker/internal/modules/moviemodule/types"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogSeed struct {
	owner    *database.User
	horror   *database.Genre
	slasher  *database.Subgenre
	night    *database.Specification
	dark     *database.Keyword
	eighties *database.ActionTime
	category *database.VisualProfileCategory
}

func seedCatalog(t *testing.T, e env) catalogSeed {
	s := catalogSeed{
		owner: dbtest.User(t, e.db, "owner", types.RoleOwner),
	}
	s.horror = dbtest.Genre(t, e.db, "horror", "Жахи", "Horror")
	s.slasher = dbtest.Subgenre(t, e.db, s.horror, "slasher", "Слешер", "Slasher")
	s.night = dbtest.Specification(t, e.db, "night", "Ніч", "Night")
	s.dark = dbtest.Keyword(t, e.db, "dark", "Темний", "Dark")
	s.eighties = dbtest.ActionTime(t, e.db, "80s", "80-ті", "80s")
	s.category = dbtest.Category(t, e.db, "gothic", "contrast", "palette")
	dbtest.Actor(t, e.db, "jamie-lee-curtis", "Jamie Lee", "Curtis")
	dbtest.Director(t, e.db, "john-carpenter", "John", "Carpenter")
	dbtest.Character(t, e.db, "laurie", "Лорі", "Laurie")
	dbtest.SharedUniverse(t, e.db, "haddonfield", "Хеддонфілд", "Haddonfield")
	return s
}

func createRequest() movietypes.CreateMovieRequest {
	order := 2
	return movietypes.CreateMovieRequest{
		Key:                 "halloween",
		TitleUK:             "Хелловін",
		TitleEN:             "Halloween",
		DescriptionEN:       "Michael comes home.",
		ReleaseDate:         "25.10.1978",
		Duration:            91,
		Budget:              325000,
		WorldwideGross:      70000000,
		RatingCriterionType: types.CriterionScareFactor,
		Rating:              9,
		RatingCriteria:      ratings.Criteria{Acting: 8, Music: 10},
		SharedUniverseKey:   "haddonfield",
		SharedUniverseOrder: &order,
		ActorsKeys:          []movietypes.ActorRef{{Key: "jamie-lee-curtis", CharacterKey: "laurie"}},
		DirectorsKeys:       []string{"john-carpenter"},
		Genres:              []movietypes.MatchIn{{Key: "horror", PercentageMatch: 100}},
		Subgenres:           []movietypes.MatchIn{{Key: "slasher", PercentageMatch: 90}},
		Specifications:      []movietypes.MatchIn{{Key: "night", PercentageMatch: 60}},
		Keywords:            []movietypes.MatchIn{{Key: "dark", PercentageMatch: 70}},
		ActionTimes:         []movietypes.MatchIn{{Key: "80s", PercentageMatch: 40}},
		CategoryKey:         "gothic",
		CategoryCriteria: []movietypes.CriterionIn{
			{Key: "palette", Rating: 4},
			{Key: "contrast", Rating: 5},
		},
	}
}

func TestCreateAndDetail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)

	movie, err := e.svc.Create(ctx, seed.owner, createRequest(), nil, false, types.LanguageEN)
	require.NoError(t, err)
	assert.NotZero(t, movie.ID)

	var stored database.Movie
	require.NoError(t, e.db.First(&stored, movie.ID).Error)
	assert.Equal(t, 9.0, stored.AverageRating)
	assert.Equal(t, 1, stored.RatingsCount)
	assert.Equal(t, types.CriterionScareFactor, stored.RatingCriterion)

	detail, err := e.svc.Detail(ctx, "halloween", types.LanguageUK, nil)
	require.NoError(t, err)

	assert.Equal(t, "Хелловін", detail.Title)
	require.NotNil(t, detail.TitleEN)
	assert.Equal(t, "Halloween", *detail.TitleEN)
	assert.Equal(t, "1978-10-25", detail.ReleaseDate)
	assert.Equal(t, "1г 31хв", detail.Duration)
	require.NotNil(t, detail.Budget)
	assert.Equal(t, "$325,000", *detail.Budget)
	assert.Nil(t, detail.DomesticGross)
	assert.Equal(t, 9.0, detail.OwnerRating)
	assert.Nil(t, detail.UserRating)

	assert.Equal(t, "gothic", detail.VisualProfile.Key)
	require.Len(t, detail.VisualProfile.Criteria, 2)
	assert.Equal(t, "palette", detail.VisualProfile.Criteria[0].Key)
	assert.Equal(t, 4, detail.VisualProfile.Criteria[0].Rating)
	assert.Equal(t, "contrast", detail.VisualProfile.Criteria[1].Key)

	require.Len(t, detail.Actors, 1)
	assert.Equal(t, "Jamie Lee Curtis", detail.Actors[0].FullName)
	assert.Equal(t, "Лорі", detail.Actors[0].CharacterName)
	require.Len(t, detail.Directors, 1)
	assert.Equal(t, noAvatar, detail.Directors[0].AvatarURL)
	assert.Equal(t, 64, detail.Directors[0].Age)

	require.Len(t, detail.Genres, 1)
	assert.Equal(t, 100.0, detail.Genres[0].PercentageMatch)
	require.Len(t, detail.Subgenres, 1)
	assert.Equal(t, "horror", detail.Subgenres[0].SubgenreParentKey)
	assert.Len(t, detail.Specifications, 1)
	assert.Len(t, detail.Keywords, 1)
	assert.Len(t, detail.ActionTimes, 1)

	assert.Nil(t, detail.RelatedMovies)
	require.NotNil(t, detail.SharedUniverse)
	assert.Equal(t, "haddonfield", detail.SharedUniverse.Key)
	assert.Equal(t, []movietypes.UniverseMovie{{Key: "halloween", Title: "Хелловін", Order: 2}}, detail.SharedUniverse.Movies)

	assert.Equal(t, 8.0, detail.OverallAverageRatingCriteria.Acting)
	assert.Equal(t, 0.01, detail.OverallAverageRatingCriteria.PlotStoryline)
}

func TestDetailWithUserRating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)

	_, err := e.svc.Create(ctx, seed.owner, createRequest(), nil, false, types.LanguageEN)
	require.NoError(t, err)

	var movie database.Movie
	require.NoError(t, e.db.Where("key = ?", "halloween").First(&movie).Error)
	viewer := dbtest.User(t, e.db, "viewer", types.RoleUser)
	scare := 7.0
	rating := &database.Rating{MovieID: movie.ID, UserID: viewer.ID, Rating: 6, Acting: 5, ScareFactor: &scare}
	require.NoError(t, e.db.Create(rating).Error)

	detail, err := e.svc.Detail(ctx, "halloween", types.LanguageEN, viewer)
	require.NoError(t, err)
	assert.Nil(t, detail.TitleEN)
	assert.Equal(t, 9.0, detail.OwnerRating)
	require.NotNil(t, detail.UserRating)
	assert.Equal(t, 6.0, *detail.UserRating)
	require.NotNil(t, detail.UserRatingCriteria)
	assert.Equal(t, 5.0, detail.UserRatingCriteria.Acting)
	require.NotNil(t, detail.UserRatingCriteria.ScareFactor)
	assert.Equal(t, 7.0, *detail.UserRatingCriteria.ScareFactor)
	assert.Nil(t, detail.UserRatingCriteria.Humor)
}

func TestDetailErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Detail(ctx, "missing", types.LanguageEN, nil)
	requireAppError(t, err, 404, "Movie not found")

	movie := dbtest.Movie(t, e.db, "heat", "Жара", "Heat", date(1995, 12, 15))
	_, err = e.svc.Detail(ctx, "heat", types.LanguageEN, nil)
	requireAppError(t, err, 404, "Owner not found")

	owner := dbtest.User(t, e.db, "owner", types.RoleOwner)
	_, err = e.svc.Detail(ctx, "heat", types.LanguageEN, nil)
	requireAppError(t, err, 404, "Owner rating not found")

	dbtest.Rate(t, e.db, movie, owner, 8)
	_, err = e.svc.Detail(ctx, "heat", types.LanguageEN, nil)
	requireAppError(t, err, 404, "Visual profile not found")
}

func TestDetailRelatedMovies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)

	_, err := e.svc.Create(ctx, seed.owner, createRequest(), nil, false, types.LanguageEN)
	require.NoError(t, err)

	sequel := createRequest()
	sequel.Key = "halloween-2"
	sequel.TitleEN = "Halloween II"
	sequel.TitleUK = "Хелловін 2"
	sequel.RelationType = types.RelationSequel
	sequel.BaseMovieKey = "halloween"
	two := 2
	sequel.CollectionOrder = &two
	_, err = e.svc.Create(ctx, seed.owner, sequel, nil, false, types.LanguageEN)
	require.NoError(t, err)

	var base database.Movie
	require.NoError(t, e.db.Where("key = ?", "halloween").First(&base).Error)
	require.NotNil(t, base.RelationType)
	assert.Equal(t, types.RelationBase, *base.RelationType)
	require.NotNil(t, base.CollectionOrder)
	assert.Equal(t, 1, *base.CollectionOrder)

	detail, err := e.svc.Detail(ctx, "halloween-2", types.LanguageEN, seed.owner)
	require.NoError(t, err)
	assert.Equal(t, []movietypes.RelatedMovie{
		{Key: "halloween", Title: "Halloween", RelationType: types.RelationBase},
		{Key: "halloween-2", Title: "Halloween II", RelationType: types.RelationSequel},
	}, detail.RelatedMovies)
}

func TestCreateConflict(t *testing.T) {
	e := newEnv(t)
	seed := seedCatalog(t, e)
	dbtest.Movie(t, e.db, "halloween", "Хелловін", "Halloween", date(1978, 10, 25))

	_, err := e.svc.Create(context.Background(), seed.owner, createRequest(), nil, false, types.LanguageUK)
	requireAppError(t, err, 409, "Фільм вже існує")
}

func TestCreateRollsBackOnUnknownGenre(t *testing.T) {
	e := newEnv(t)
	seed := seedCatalog(t, e)

	req := createRequest()
	req.Genres = append(req.Genres, movietypes.MatchIn{Key: "western", PercentageMatch: 10})

	_, err := e.svc.Create(context.Background(), seed.owner, req, nil, false, types.LanguageEN)
	requireAppError(t, err, 400, "Error creating movie - Genre [western] not found")

	var count int64
	require.NoError(t, e.db.Model(&database.Movie{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, e.db.Model(&database.MovieGenre{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRemovesPosterOnRollback(t *testing.T) {
	e := newEnv(t)
	seed := seedCatalog(t, e)
	poster := &multipart.FileHeader{Filename: "halloween.png", Size: 4}
	e.assets.On("SaveImage", mock.Anything, types.AssetPosters, mock.AnythingOfType("uint"), poster).Return("1_halloween.png", nil)
	e.assets.On("RemoveImage", types.AssetPosters, "1_halloween.png").Return(nil)

	req := createRequest()
	req.Keywords = append(req.Keywords, movietypes.MatchIn{Key: "neon", PercentageMatch: 50})

	_, err := e.svc.Create(context.Background(), seed.owner, req, poster, false, types.LanguageEN)
	requireAppError(t, err, 400, "Error creating movie - Keyword [neon] not found")
	e.assets.AssertExpectations(t)

	var count int64
	require.NoError(t, e.db.Model(&database.Movie{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateKeepsPoster(t *testing.T) {
	e := newEnv(t)
	seed := seedCatalog(t, e)
	poster := &multipart.FileHeader{Filename: "halloween.png", Size: 4}
	e.assets.On("SaveImage", mock.Anything, types.AssetPosters, mock.AnythingOfType("uint"), poster).Return("1_halloween.png", nil)

	movie, err := e.svc.Create(context.Background(), seed.owner, createRequest(), poster, false, types.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, "1_halloween.png", movie.Poster)
	e.assets.AssertNotCalled(t, "RemoveImage", mock.Anything, mock.Anything)

	var stored database.Movie
	require.NoError(t, e.db.First(&stored, movie.ID).Error)
	assert.Equal(t, "1_halloween.png", stored.Poster)
}

func TestCreateRemovesQuickMovie(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)

	require.NoError(t, e.svc.QuickAdd(ctx, movietypes.QuickAddRequest{Key: "halloween", TitleEN: "Halloween", Rating: 9}, types.LanguageEN))
	require.NoError(t, e.svc.QuickAdd(ctx, movietypes.QuickAddRequest{Key: "heat", TitleEN: "Heat", Rating: 8}, types.LanguageEN))

	_, err := e.svc.Create(ctx, seed.owner, createRequest(), nil, true, types.LanguageEN)
	require.NoError(t, err)

	queued, err := e.svc.MoviesToAdd()
	require.NoError(t, err)
	assert.Equal(t, []movietypes.QuickMovieOut{{Key: "heat", TitleEN: "Heat", Rating: 8}}, queued)
}

func TestQuickAddDuplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	dbtest.Movie(t, e.db, "heat", "Жара", "Heat", date(1995, 12, 15))

	err := e.svc.QuickAdd(ctx, movietypes.QuickAddRequest{Key: "heat", TitleEN: "Heat"}, types.LanguageEN)
	requireAppError(t, err, 409, "Movie already exists")

	req := movietypes.QuickAddRequest{Key: "alien", TitleEN: "Alien", Rating: 9}
	require.NoError(t, e.svc.QuickAdd(ctx, req, types.LanguageEN))
	err = e.svc.QuickAdd(ctx, req, types.LanguageEN)
	requireAppError(t, err, 400, "Error adding movie to JSON - Movie already exists")

	queued, err := e.quick.List()
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, types.CriterionBasic, queued[0].RatingCriterionType)
}

func TestPreCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.catalog.On("Filters", mock.Anything, types.LanguageEN).Return(&types.Filters{}, nil)
	e.catalog.On("GenresWithSubgenres", mock.Anything, types.LanguageEN).Return([]types.GenreItem{{Key: "horror"}}, nil)
	e.people.On("People", mock.Anything, types.LanguageEN).Return(&types.People{}, nil)

	_, err := e.svc.PreCreate(ctx, types.LanguageEN, "")
	requireAppError(t, err, 404, "Base movies not found")

	dbtest.Movie(t, e.db, "thing", "Щось", "The Thing", date(1982, 6, 25))
	dbtest.Movie(t, e.db, "heat", "Жара", "Heat", date(1995, 12, 15))

	e.catalog.On("VisualProfileCategories", mock.Anything, types.LanguageEN).Return([]types.CategoryItem{{Key: "gothic"}}, nil)
	require.NoError(t, e.quick.Prepend(movietypes.QuickMovie{Key: "alien", TitleEN: "Alien", Rating: 9}))

	out, err := e.svc.PreCreate(ctx, types.LanguageEN, "alien")
	require.NoError(t, err)
	assert.Equal(t, []movietypes.KeyName{{Key: "heat", Name: "Heat"}, {Key: "thing", Name: "The Thing"}}, out.BaseMovies)
	assert.Equal(t, "gothic", out.VisualProfileCategories[0].Key)
	require.NotNil(t, out.QuickMovie)
	assert.Equal(t, "Alien", out.QuickMovie.TitleEN)
}

func TestUpdateGenres(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)
	movie := dbtest.Movie(t, e.db, "heat", "Жара", "Heat", date(1995, 12, 15))
	crime := dbtest.Genre(t, e.db, "crime", "Кримінал", "Crime")
	dbtest.Link(t, e.db, &database.MovieGenre{MovieID: movie.ID, GenreID: seed.horror.ID, PercentageMatch: 20})

	err := e.svc.UpdateGenres(ctx, "missing", movietypes.GenresUpdateRequest{})
	requireAppError(t, err, 404, "Movie not found")

	err = e.svc.UpdateGenres(ctx, "heat", movietypes.GenresUpdateRequest{Genres: []movietypes.MatchIn{{Key: "western"}}})
	requireAppError(t, err, 404, "Genres not found")

	err = e.svc.UpdateGenres(ctx, "heat", movietypes.GenresUpdateRequest{
		Genres: []movietypes.MatchIn{{Key: "crime", PercentageMatch: 100}},
	})
	require.NoError(t, err)

	var matches []database.MovieGenre
	require.NoError(t, e.db.Where("movie_id = ?", movie.ID).Find(&matches).Error)
	assert.Equal(t, []database.MovieGenre{{MovieID: movie.ID, GenreID: crime.ID, PercentageMatch: 100}}, matches)

	err = e.svc.UpdateGenres(ctx, "heat", movietypes.GenresUpdateRequest{
		Genres:    []movietypes.MatchIn{{Key: "crime", PercentageMatch: 90}},
		Subgenres: []movietypes.MatchIn{{Key: "unknown"}},
	})
	requireAppError(t, err, 400, "Error updating genre")

	// the failed update left the previous set in place
	require.NoError(t, e.db.Where("movie_id = ?", movie.ID).Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, 100.0, matches[0].PercentageMatch)
}

func TestUpdateItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := seedCatalog(t, e)
	movie := dbtest.Movie(t, e.db, "heat", "Жара", "Heat", date(1995, 12, 15))

	err := e.svc.UpdateItems(ctx, ItemKeywords, movietypes.ItemsUpdateRequest{MovieKey: "heat", Items: []movietypes.MatchIn{{Key: "nope"}}})
	requireAppError(t, err, 404, "Keyword not found")

	err = e.svc.UpdateItems(ctx, ItemKeywords, movietypes.ItemsUpdateRequest{
		MovieKey: "heat",
		Items:    []movietypes.MatchIn{{Key: "dark", PercentageMatch: 35}},
	})
	require.NoError(t, err)

	var kw []database.MovieKeyword
	require.NoError(t, e.db.Where("movie_id = ?", movie.ID).Find(&kw).Error)
	assert.Equal(t, []database.MovieKeyword{{MovieID: movie.ID, KeywordID: seed.dark.ID, PercentageMatch: 35}}, kw)

	err = e.svc.UpdateItems(ctx, ItemActionTimes, movietypes.ItemsUpdateRequest{
		MovieKey: "heat",
		Items:    []movietypes.MatchIn{{Key: "80s", PercentageMatch: 50}},
	})
	require.NoError(t, err)

	err = e.svc.UpdateItems(ctx, ItemKind("moods"), movietypes.ItemsUpdateRequest{MovieKey: "heat"})
	requireAppError(t, err, 400, "")
}
