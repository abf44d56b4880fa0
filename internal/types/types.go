// Package types holds the enums shared by every module
package types

import (
	"fmt"
	"strings"
)

// Language selects which translation row is rendered
type Language string

const (
	LanguageUK Language = "uk"
	LanguageEN Language = "en"
)

// Languages lists every supported translation language
var Languages = []Language{LanguageUK, LanguageEN}

// ParseLanguage falls back to UK for anything unknown
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEN:
		return LanguageEN
	default:
		return LanguageUK
	}
}

// Other returns the opposite translation language
func (l Language) Other() Language {
	if l == LanguageEN {
		return LanguageUK
	}
	return LanguageEN
}

// Message picks the localized variant of a user-facing message
func (l Language) Message(uk, en string) string {
	if l == LanguageEN {
		return en
	}
	return uk
}

// UserRole grants access to catalog editing
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
	RoleOwner UserRole = "owner"
)

// HasPermissions reports whether the role may edit the catalog
func (r UserRole) HasPermissions() bool {
	return r == RoleAdmin || r == RoleOwner
}

func (r UserRole) IsOwner() bool {
	return r == RoleOwner
}

// RatingCriterion decides which optional criterion a movie is scored on
type RatingCriterion string

const (
	CriterionBasic            RatingCriterion = "basic"
	CriterionVisualEffects    RatingCriterion = "visual_effects"
	CriterionScareFactor      RatingCriterion = "scare_factor"
	CriterionHumor            RatingCriterion = "humor"
	CriterionAnimationCartoon RatingCriterion = "animation_cartoon"
)

func ParseRatingCriterion(s string) (RatingCriterion, error) {
	switch c := RatingCriterion(s); c {
	case CriterionBasic, CriterionVisualEffects, CriterionScareFactor, CriterionHumor, CriterionAnimationCartoon:
		return c, nil
	case "":
		return CriterionBasic, nil
	default:
		return "", fmt.Errorf("unknown rating criterion: %s", s)
	}
}

// SortBy is the ordering column for movie lists
type SortBy string

const (
	SortByID           SortBy = "id"
	SortByRatedAt      SortBy = "rated_at"
	SortByReleaseDate  SortBy = "release_date"
	SortByRating       SortBy = "rating"
	SortByRatingsCount SortBy = "ratings_count"
	SortByRandom       SortBy = "random"
)

func ParseSortBy(s string, fallback SortBy) SortBy {
	switch v := SortBy(s); v {
	case SortByID, SortByRatedAt, SortByReleaseDate, SortByRating, SortByRatingsCount, SortByRandom:
		return v
	default:
		return fallback
	}
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string, fallback SortOrder) SortOrder {
	switch v := SortOrder(strings.ToLower(s)); v {
	case SortAsc, SortDesc:
		return v
	default:
		return fallback
	}
}

// SQL returns the ORDER BY direction keyword
func (o SortOrder) SQL() string {
	if o == SortAsc {
		return "ASC"
	}
	return "DESC"
}

// RelationType places a movie inside its collection
type RelationType string

const (
	RelationBase    RelationType = "base"
	RelationSequel  RelationType = "sequel"
	RelationPrequel RelationType = "prequel"
	RelationRemake  RelationType = "remake"
	RelationSpinOff RelationType = "spin_off"
)

func ParseRelationType(s string) (RelationType, error) {
	switch r := RelationType(s); r {
	case RelationBase, RelationSequel, RelationPrequel, RelationRemake, RelationSpinOff:
		return r, nil
	default:
		return "", fmt.Errorf("unknown relation type: %s", s)
	}
}

// SearchType is the title kind requested by the quick search
type SearchType string

const (
	SearchMovies   SearchType = "movies"
	SearchTVSeries SearchType = "tvseries"
	SearchAnime    SearchType = "anime"
	SearchGames    SearchType = "games"

	// people results share the dropdown with titles
	SearchActors     SearchType = "actors"
	SearchDirectors  SearchType = "directors"
	SearchCharacters SearchType = "characters"
)
