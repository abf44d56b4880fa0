// Package types holds request and response shapes of the movie endpoints.
package types

import (
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
)

// MoviePreview is one card of a movie list
type MoviePreview struct {
	Key         string  `json:"key"`
	Title       string  `json:"title"`
	Poster      string  `json:"poster"`
	ReleaseDate string  `json:"release_date"`
	Duration    string  `json:"duration"`
	MainGenre   string  `json:"main_genre"`
	Rating      float64 `json:"rating"`
}

// ListQuery selects and orders the movie list
type ListQuery struct {
	SortBy    types.SortBy
	SortOrder types.SortOrder
	Lang      types.Language
}

// PersonOut is an actor or director on the detail page
type PersonOut struct {
	Key           string `json:"key"`
	FullName      string `json:"full_name"`
	CharacterName string `json:"character_name,omitempty"`
	AvatarURL     string `json:"avatar_url"`
	BornLocation  string `json:"born_location"`
	Age           int    `json:"age"`
	Born          string `json:"born"`
	Died          string `json:"died,omitempty"`
}

// MatchOut is a taxonomy entry with its percentage for one movie
type MatchOut struct {
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	PercentageMatch   float64 `json:"percentage_match"`
	SubgenreParentKey string  `json:"subgenre_parent_key,omitempty"`
}

// RelatedMovie is a member of the same collection
type RelatedMovie struct {
	Key          string             `json:"key"`
	Poster       string             `json:"poster"`
	Title        string             `json:"title"`
	RelationType types.RelationType `json:"relation_type"`
}

// UniverseMovie is a member of a shared universe
type UniverseMovie struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Poster string `json:"poster"`
	Order  int    `json:"order"`
}

// SharedUniverseOut is the universe block of the detail page
type SharedUniverseOut struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Movies      []UniverseMovie `json:"movies"`
}

// MovieDetail is the full movie page
type MovieDetail struct {
	Key            string  `json:"key"`
	Title          string  `json:"title"`
	TitleEN        *string `json:"title_en"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	Poster         string  `json:"poster"`
	Budget         *string `json:"budget"`
	DomesticGross  *string `json:"domestic_gross"`
	WorldwideGross *string `json:"worldwide_gross"`
	Duration       string  `json:"duration"`
	ReleaseDate    string  `json:"release_date"`

	VisualProfile types.CategoryItem `json:"visual_profile"`

	RatingsCount                 int                   `json:"ratings_count"`
	RatingCriterion              types.RatingCriterion `json:"rating_criterion"`
	OwnerRating                  float64               `json:"owner_rating"`
	OverallAverageRating         float64               `json:"overall_average_rating"`
	OverallAverageRatingCriteria ratings.Criteria      `json:"overall_average_rating_criteria"`
	UserRating                   *float64              `json:"user_rating"`
	UserRatingCriteria           *ratings.Criteria     `json:"user_rating_criteria"`

	Actors         []PersonOut  `json:"actors"`
	Directors      []PersonOut  `json:"directors"`
	Genres         []MatchOut   `json:"genres"`
	Subgenres      []MatchOut   `json:"subgenres"`
	Specifications []MatchOut   `json:"specifications"`
	Keywords       []MatchOut   `json:"keywords"`
	ActionTimes    []MatchOut   `json:"action_times"`
	RelatedMovies  []RelatedMovie `json:"related_movies"`

	SharedUniverseOrder *int               `json:"shared_universe_order"`
	SharedUniverse      *SharedUniverseOut `json:"shared_universe"`
}

// KeyName is the minimal reference used by pre-create menus
type KeyName struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// QuickMovie is an entry of the quick-add list
type QuickMovie struct {
	Key                 string                `json:"key"`
	TitleEN             string                `json:"title_en"`
	Rating              float64               `json:"rating"`
	RatingCriterionType types.RatingCriterion `json:"rating_criterion_type"`
	RatingCriteria      ratings.Criteria      `json:"rating_criteria"`
}

// QuickMovieOut is the short form listed to admins
type QuickMovieOut struct {
	Key     string  `json:"key"`
	TitleEN string  `json:"title_en"`
	Rating  float64 `json:"rating"`
}

// PreCreate bundles everything the movie creation form offers
type PreCreate struct {
	VisualProfileCategories []types.CategoryItem `json:"visual_profile_categories"`
	BaseMovies              []KeyName            `json:"base_movies"`
	Actors                  []types.PersonItem   `json:"actors"`
	Directors               []types.PersonItem   `json:"directors"`
	Characters              []types.PersonItem   `json:"characters"`
	Specifications          []types.FilterItem   `json:"specifications"`
	Genres                  []types.GenreItem    `json:"genres"`
	Keywords                []types.FilterItem   `json:"keywords"`
	ActionTimes             []types.FilterItem   `json:"action_times"`
	SharedUniverses         []types.FilterItem   `json:"shared_universes"`
	QuickMovie              *QuickMovie          `json:"quick_movie"`
}

// FiltersOut is the filter panel payload
type FiltersOut struct {
	types.Filters
	Actors     []types.PersonItem `json:"actors"`
	Directors  []types.PersonItem `json:"directors"`
	Characters []types.PersonItem `json:"characters"`
}

// ActorRef links an actor to the character they play
type ActorRef struct {
	Key          string `json:"key" binding:"required"`
	CharacterKey string `json:"character_key" binding:"required"`
}

// MatchIn assigns a percentage to a taxonomy key
type MatchIn struct {
	Key             string  `json:"key" binding:"required"`
	Name            string  `json:"name"`
	PercentageMatch float64 `json:"percentage_match"`
}

// CriterionIn rates one visual profile criterion
type CriterionIn struct {
	Key         string `json:"key" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

// CreateMovieRequest is the movie creation form
type CreateMovieRequest struct {
	Key           string `json:"key" binding:"required"`
	TitleUK       string `json:"title_uk" binding:"required"`
	TitleEN       string `json:"title_en" binding:"required"`
	DescriptionUK string `json:"description_uk"`
	DescriptionEN string `json:"description_en"`
	LocationUK    string `json:"location_uk"`
	LocationEN    string `json:"location_en"`

	ReleaseDate    string `json:"release_date"`
	Duration       int    `json:"duration"`
	Budget         int64  `json:"budget"`
	DomesticGross  int64  `json:"domestic_gross"`
	WorldwideGross int64  `json:"worldwide_gross"`

	RatingCriterionType types.RatingCriterion `json:"rating_criterion_type"`
	Rating              float64               `json:"rating"`
	RatingCriteria      ratings.Criteria      `json:"rating_criteria"`

	RelationType        types.RelationType `json:"relation_type"`
	BaseMovieKey        string             `json:"base_movie_key"`
	CollectionOrder     *int               `json:"collection_order"`
	SharedUniverseKey   string             `json:"shared_universe_key"`
	SharedUniverseOrder *int               `json:"shared_universe_order"`

	ActorsKeys     []ActorRef `json:"actors_keys"`
	DirectorsKeys  []string   `json:"directors_keys"`
	Genres         []MatchIn  `json:"genres"`
	Subgenres      []MatchIn  `json:"subgenres"`
	Specifications []MatchIn  `json:"specifications"`
	Keywords       []MatchIn  `json:"keywords"`
	ActionTimes    []MatchIn  `json:"action_times"`

	CategoryKey      string        `json:"category_key"`
	CategoryCriteria []CriterionIn `json:"category_criteria"`
}

// QuickAddRequest stores a movie to be created later
type QuickAddRequest struct {
	Key                 string                `json:"key" binding:"required"`
	TitleEN             string                `json:"title_en" binding:"required"`
	Rating              float64               `json:"rating"`
	RatingCriterionType types.RatingCriterion `json:"rating_criterion_type"`
	RatingCriteria      ratings.Criteria      `json:"rating_criteria"`
}

// CarouselPerson is an actor or director of a carousel card
type CarouselPerson struct {
	Key       string `json:"key"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// CarouselMovie is one card of the random carousel
type CarouselMovie struct {
	Key         string           `json:"key"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Poster      string           `json:"poster"`
	ReleaseDate string           `json:"release_date"`
	Duration    string           `json:"duration"`
	Location    string           `json:"location"`
	Genres      []KeyName        `json:"genres"`
	Actors      []CarouselPerson `json:"actors"`
	Directors   []CarouselPerson `json:"directors"`
}

// SimilarMovie is a recommendation card
type SimilarMovie struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Poster string `json:"poster"`
}

// GenresUpdateRequest replaces the genres and subgenres of a movie
type GenresUpdateRequest struct {
	Genres    []MatchIn `json:"genres"`
	Subgenres []MatchIn `json:"subgenres"`
}

// ItemsUpdateRequest replaces one taxonomy set of a movie
type ItemsUpdateRequest struct {
	MovieKey string    `json:"movie_key" binding:"required"`
	Items    []MatchIn `json:"items"`
}
