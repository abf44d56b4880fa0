package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/modules/databasemodule"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*CatalogService, *gorm.DB) {
	db := dbtest.New(t)
	return NewCatalogService(db, databasemodule.NewTransactionManager(db)), db
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status())
	assert.Equal(t, message, appErr.Message)
}

func seedFilters(t *testing.T, db *gorm.DB) {
	horror := dbtest.Genre(t, db, "horror", "Жахи", "Horror")
	dbtest.Genre(t, db, "drama", "Драма", "Drama")
	dbtest.Subgenre(t, db, horror, "slasher", "Слешер", "Slasher")
	dbtest.Subgenre(t, db, horror, "gothic", "Готика", "Gothic")
	dbtest.Specification(t, db, "night", "Ніч", "Night")
	dbtest.Specification(t, db, "snow", "Сніг", "Snow")
	dbtest.Keyword(t, db, "dark", "Темрява", "Darkness")
	dbtest.ActionTime(t, db, "80s", "80-ті", "1980s")
}

func TestFilters(t *testing.T) {
	svc, db := newService(t)
	seedFilters(t, db)
	dbtest.Category(t, db, "neon", "glow")
	dbtest.Category(t, db, "gothic", "contrast", "palette")

	f, err := svc.Filters(context.Background(), types.LanguageEN)
	require.NoError(t, err)

	require.Len(t, f.Genres, 2)
	assert.Equal(t, "drama", f.Genres[0].Key)
	assert.Equal(t, "Драма", f.Genres[0].AnotherLangName)
	assert.Equal(t, "Drama description", f.Genres[0].Description)

	require.Len(t, f.Subgenres, 2)
	assert.Equal(t, "gothic", f.Subgenres[0].Key)
	assert.Equal(t, "horror", f.Subgenres[0].ParentGenreKey)

	require.Len(t, f.Specifications, 2)
	assert.Equal(t, "night", f.Specifications[0].Key)
	assert.Equal(t, "Ніч", f.Specifications[0].AnotherLangName)
	assert.Empty(t, f.SharedUniverses)

	require.Len(t, f.VisualProfileCategories, 2)
	assert.Equal(t, "gothic", f.VisualProfileCategories[0].Key)
}

func TestFiltersUkrainianOrder(t *testing.T) {
	svc, db := newService(t)
	seedFilters(t, db)

	f, err := svc.Filters(context.Background(), types.LanguageUK)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ніч", "Сніг"}, []string{f.Specifications[0].Name, f.Specifications[1].Name})
	assert.Equal(t, "Snow", f.Specifications[1].AnotherLangName)
}

func TestFiltersEmpty(t *testing.T) {
	svc, db := newService(t)

	_, err := svc.Filters(context.Background(), types.LanguageUK)
	requireAppError(t, err, 404, "Genres not found")

	dbtest.Genre(t, db, "horror", "Жахи", "Horror")
	_, err = svc.Filters(context.Background(), types.LanguageUK)
	requireAppError(t, err, 404, "Specifications not found")

	dbtest.Specification(t, db, "night", "Ніч", "Night")
	dbtest.Keyword(t, db, "dark", "Темрява", "Darkness")
	_, err = svc.Filters(context.Background(), types.LanguageUK)
	requireAppError(t, err, 404, "Action times not found")
}

func TestGenresWithSubgenres(t *testing.T) {
	svc, db := newService(t)
	seedFilters(t, db)

	genres, err := svc.GenresWithSubgenres(context.Background(), types.LanguageEN)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "drama", genres[0].Key)
	assert.Empty(t, genres[0].Subgenres)

	horror := genres[1]
	assert.Equal(t, "Horror", horror.Name)
	require.Len(t, horror.Subgenres, 2)
	assert.Equal(t, "Gothic", horror.Subgenres[0].Name)
	assert.Equal(t, "Slasher", horror.Subgenres[1].Name)
	assert.Equal(t, "horror", horror.Subgenres[1].ParentGenreKey)
}

func TestVisualProfileCategoriesKeepCreationOrder(t *testing.T) {
	svc, db := newService(t)
	dbtest.Category(t, db, "neon", "glow")
	dbtest.Category(t, db, "gothic", "contrast", "palette")

	categories, err := svc.VisualProfileCategories(context.Background(), types.LanguageEN)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "neon", categories[0].Key)

	gothic := categories[1]
	assert.Equal(t, "gothic en", gothic.Name)
	require.Len(t, gothic.Criteria, 2)
	assert.Equal(t, "contrast", gothic.Criteria[0].Key)
	assert.Equal(t, "contrast en", gothic.Criteria[0].Name)
	assert.Zero(t, gothic.Criteria[0].Rating)
}

func TestCreate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	req := CreateRequest{Key: "horror", NameUK: "Жахи", NameEN: "Horror", DescriptionUK: "Страшно", DescriptionEN: "Scary"}
	out, err := svc.Create(ctx, KindGenre, req, types.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, &Created{Key: "horror", Name: "Horror", Description: "Scary"}, out)

	var genre database.Genre
	require.NoError(t, db.Preload("Translations").Where("key = ?", "horror").First(&genre).Error)
	require.NotNil(t, genre.UUID)
	assert.Len(t, *genre.UUID, 36)
	assert.Equal(t, "жахи", genre.Translation(types.LanguageUK).SearchName)

	_, err = svc.Create(ctx, KindGenre, req, types.LanguageEN)
	requireAppError(t, err, 400, "Genre already exists")
}

func TestCreateSubgenre(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	dbtest.Genre(t, db, "horror", "Жахи", "Horror")

	req := CreateRequest{Key: "slasher", NameUK: "Слешер", NameEN: "Slasher", ParentGenreKey: "western"}
	_, err := svc.Create(ctx, KindSubgenre, req, types.LanguageUK)
	requireAppError(t, err, 404, "Genre not found")

	req.ParentGenreKey = "horror"
	out, err := svc.Create(ctx, KindSubgenre, req, types.LanguageUK)
	require.NoError(t, err)
	assert.Equal(t, "Слешер", out.Name)
	assert.Equal(t, "horror", out.ParentGenreKey)
}

func TestCreateFiltersOmitDescription(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, kind := range []Kind{KindSpecification, KindKeyword, KindActionTime, KindCharacter} {
		out, err := svc.Create(ctx, kind, CreateRequest{Key: "k", NameUK: "Укр", NameEN: "Eng", DescriptionEN: "d"}, types.LanguageEN)
		require.NoError(t, err, kind)
		assert.Equal(t, &Created{Key: "k", Name: "Eng"}, out, kind)
	}

	_, err := svc.Create(ctx, KindActionTime, CreateRequest{Key: "k", NameUK: "Укр", NameEN: "Eng"}, types.LanguageEN)
	requireAppError(t, err, 400, "Action time already exists")
}

func TestCreateCategoryLinksCriteria(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	dbtest.Category(t, db, "gothic", "contrast", "palette")

	req := CreateRequest{Key: "noir", NameUK: "Нуар", NameEN: "Noir", CriteriaKeys: []string{"contrast", "glow"}}
	_, err := svc.Create(ctx, KindCategory, req, types.LanguageEN)
	requireAppError(t, err, 404, "Criterion not found")

	req.CriteriaKeys = []string{"contrast"}
	_, err = svc.Create(ctx, KindCategory, req, types.LanguageEN)
	require.NoError(t, err)

	var noir database.VisualProfileCategory
	require.NoError(t, db.Preload("Criteria").Where("key = ?", "noir").First(&noir).Error)
	require.Len(t, noir.Criteria, 1)
	assert.Equal(t, "contrast", noir.Criteria[0].Key)
	assert.NotEmpty(t, noir.UUID)
}

func TestCreateUnknownKind(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), Kind("planet"), CreateRequest{Key: "k"}, types.LanguageEN)
	requireAppError(t, err, 400, "unknown kind: planet")
}
