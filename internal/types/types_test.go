package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageEN, ParseLanguage("EN"))
	assert.Equal(t, LanguageUK, ParseLanguage("uk"))
	assert.Equal(t, LanguageUK, ParseLanguage("de"))
	assert.Equal(t, LanguageUK, ParseLanguage(""))
	assert.Equal(t, LanguageUK, LanguageEN.Other())
	assert.Equal(t, "Movie not found", LanguageEN.Message("Фільм не знайдено", "Movie not found"))
	assert.Equal(t, "Фільм не знайдено", LanguageUK.Message("Фільм не знайдено", "Movie not found"))
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleOwner.HasPermissions())
	assert.True(t, RoleAdmin.HasPermissions())
	assert.False(t, RoleUser.HasPermissions())
	assert.True(t, RoleOwner.IsOwner())
	assert.False(t, RoleAdmin.IsOwner())
}

func TestParseRatingCriterion(t *testing.T) {
	c, err := ParseRatingCriterion("")
	require.NoError(t, err)
	assert.Equal(t, CriterionBasic, c)

	c, err = ParseRatingCriterion("humor")
	require.NoError(t, err)
	assert.Equal(t, CriterionHumor, c)

	_, err = ParseRatingCriterion("gore")
	assert.Error(t, err)
}

func TestSortParsing(t *testing.T) {
	assert.Equal(t, SortByRating, ParseSortBy("rating", SortByID))
	assert.Equal(t, SortByRatedAt, ParseSortBy("bogus", SortByRatedAt))
	assert.Equal(t, SortAsc, ParseSortOrder("ASC", SortDesc))
	assert.Equal(t, SortDesc, ParseSortOrder("", SortDesc))
	assert.Equal(t, "DESC", SortDesc.SQL())
}
