package types

// AssetKind names an upload directory
type AssetKind string

const (
	AssetPosters   AssetKind = "posters"
	AssetActors    AssetKind = "actors"
	AssetDirectors AssetKind = "directors"
)

// ParseAssetKind rejects anything outside the known upload directories
func ParseAssetKind(s string) (AssetKind, bool) {
	switch k := AssetKind(s); k {
	case AssetPosters, AssetActors, AssetDirectors:
		return k, true
	default:
		return "", false
	}
}

// FilterItem is a taxonomy entry as rendered in filter menus and movie details.
type FilterItem struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	AnotherLangName string  `json:"another_lang_name,omitempty"`
	PercentageMatch float64 `json:"percentage_match"`
	ParentGenreKey  string  `json:"parent_genre_key,omitempty"`
}

// GenreItem is a genre with its subgenres
type GenreItem struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Subgenres   []FilterItem `json:"subgenres"`
}

// PersonItem is an actor, director or character in a selection menu.
// AnotherLangName carries the name in the non-requested language.
type PersonItem struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	AnotherLangName string `json:"another_lang_name"`
}

// CriterionItem is a visual profile criterion with its rating
type CriterionItem struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

// CategoryItem is a visual profile category with its criteria
type CategoryItem struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Criteria    []CriterionItem `json:"criteria"`
}

// SearchResult is one row of a quick search dropdown
type SearchResult struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	ExtraInfo string `json:"extra_info"`
	Type      string `json:"type"`
}

// Filters bundles every taxonomy list used by the filter panel
type Filters struct {
	Genres                  []FilterItem   `json:"genres"`
	Subgenres               []FilterItem   `json:"subgenres"`
	Specifications          []FilterItem   `json:"specifications"`
	Keywords                []FilterItem   `json:"keywords"`
	ActionTimes             []FilterItem   `json:"action_times"`
	SharedUniverses         []FilterItem   `json:"shared_universes"`
	VisualProfileCategories []CategoryItem `json:"visual_profile_categories"`
}

// People bundles the person selection menus
type People struct {
	Actors     []PersonItem `json:"actors"`
	Directors  []PersonItem `json:"directors"`
	Characters []PersonItem `json:"characters"`
}
