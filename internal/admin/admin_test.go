package admin

import (
	"context"
	"testing"

	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOwner(t *testing.T, db *gorm.DB) database.User {
	t.Helper()
	owner := database.User{FirstName: "Owner", Email: "owner@example.com", Role: types.RoleOwner}
	require.NoError(t, db.Create(&owner).Error)
	return owner
}

func TestCreateVisualProfiles(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	_, err := CreateVisualProfiles(ctx, db)
	assert.EqualError(t, err, "movie table is empty, export movies first")

	alien := database.Movie{Key: "alien"}
	thing := database.Movie{Key: "thing"}
	require.NoError(t, db.Create(&alien).Error)
	require.NoError(t, db.Create(&thing).Error)

	_, err = CreateVisualProfiles(ctx, db)
	assert.EqualError(t, err, "owner user not found")

	owner := seedOwner(t, db)
	_, err = CreateVisualProfiles(ctx, db)
	assert.EqualError(t, err, "category table is empty, export title categories first")

	palette := database.VisualProfileCriterion{Key: "palette"}
	light := database.VisualProfileCriterion{Key: "light"}
	category := database.VisualProfileCategory{Key: "noir", Criteria: []database.VisualProfileCriterion{palette, light}}
	require.NoError(t, db.Create(&category).Error)
	require.NoError(t, db.Create(&database.VisualProfile{MovieID: thing.ID, UserID: owner.ID, CategoryID: category.ID}).Error)

	n, err := CreateVisualProfiles(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var profile database.VisualProfile
	require.NoError(t, db.Preload("Ratings").Where("movie_id = ?", alien.ID).First(&profile).Error)
	assert.Equal(t, owner.ID, profile.UserID)
	assert.Equal(t, category.ID, profile.CategoryID)
	require.Len(t, profile.Ratings, 2)
	for i, r := range profile.Ratings {
		assert.Equal(t, DefaultProfileRating, r.Rating)
		assert.Equal(t, i+1, r.Order)
	}

	n, err = CreateVisualProfiles(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteActors(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	actor := database.Actor{
		Key: "weaver",
		Translations: []database.ActorTranslation{
			{PersonTranslation: database.PersonTranslation{Language: types.LanguageEN, FirstName: "Sigourney", LastName: "Weaver"}},
		},
	}
	require.NoError(t, db.Create(&actor).Error)
	movie := database.Movie{Key: "alien", Actors: []database.Actor{actor}}
	require.NoError(t, db.Create(&movie).Error)
	character := database.Character{Key: "ripley"}
	require.NoError(t, db.Create(&character).Error)
	require.NoError(t, db.Create(&database.MovieActorCharacter{MovieID: movie.ID, ActorID: actor.ID, CharacterID: character.ID, Order: 1}).Error)

	n, err := DeleteActors(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, db.Model(&database.Actor{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&database.ActorTranslation{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Table("movie_actors").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&database.MovieActorCharacter{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&database.Movie{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateFiltersWithUUID(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	drama := database.Genre{Key: "drama"}
	require.NoError(t, db.Create(&drama).Error)

	_, err := UpdateFiltersWithUUID(ctx, db)
	assert.EqualError(t, err, "Subgenre table is empty, export it first")

	existing := "5f0c6b8e-3a9c-4a43-9f7c-2f9e1b2f4a11"
	require.NoError(t, db.Create(&database.Subgenre{Key: "melodrama", ParentGenreID: drama.ID, UUID: &existing}).Error)
	require.NoError(t, db.Create(&database.Specification{Key: "based-on-book"}).Error)
	require.NoError(t, db.Create(&database.Keyword{Key: "space"}).Error)
	require.NoError(t, db.Create(&database.ActionTime{Key: "future"}).Error)

	n, err := UpdateFiltersWithUUID(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var genre database.Genre
	require.NoError(t, db.First(&genre, drama.ID).Error)
	require.NotNil(t, genre.UUID)
	assert.Len(t, *genre.UUID, 36)

	var sub database.Subgenre
	require.NoError(t, db.Where("key = ?", "melodrama").First(&sub).Error)
	assert.Equal(t, existing, *sub.UUID)

	n, err = UpdateFiltersWithUUID(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateOwner(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	_, _, err := CreateOwner(ctx, db, config.AdminConfig{FirstName: "Owner"})
	assert.Error(t, err)

	cfg := config.AdminConfig{FirstName: "Owner", Email: "owner@example.com", Password: "secret"}
	user, created, err := CreateOwner(ctx, db, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, types.RoleOwner, user.Role)
	assert.True(t, user.CheckPassword("secret"))

	again, created, err := CreateOwner(ctx, db, config.AdminConfig{FirstName: "Other", Email: "OWNER@example.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	owner, err := database.FindOwner(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner.ID)
}
