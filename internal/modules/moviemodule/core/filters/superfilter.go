// Package filters builds SQL conditions for the movie super search.
package filters

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mantonx/titleseeker/internal/database"
	"gorm.io/gorm"
)

var (
	wordPattern  = regexp.MustCompile(`^(.*?)\([\d,]+\)`)
	valuePattern = regexp.MustCompile(`^.*?\(([\d,]+)\)`)
)

// Group describes a join table carrying a percentage match
type Group struct {
	JoinTable   string
	ForeignKey  string
	EntityTable string
}

// Percentage match groups
var (
	GenreGroup         = Group{JoinTable: "movie_genres", ForeignKey: "genre_id", EntityTable: "genres"}
	SubgenreGroup      = Group{JoinTable: "movie_subgenres", ForeignKey: "subgenre_id", EntityTable: "subgenres"}
	SpecificationGroup = Group{JoinTable: "movie_specifications", ForeignKey: "specification_id", EntityTable: "specifications"}
	KeywordGroup       = Group{JoinTable: "movie_keywords", ForeignKey: "keyword_id", EntityTable: "keywords"}
	ActionTimeGroup    = Group{JoinTable: "movie_action_times", ForeignKey: "action_time_id", EntityTable: "action_times"}
)

// Condition is a SQL fragment over the movies table with its arguments
type Condition struct {
	SQL  string
	Args []interface{}
}

// Empty reports whether the condition filters nothing
func (c Condition) Empty() bool {
	return c.SQL == ""
}

// Apply adds the condition to a query on movies
func (c Condition) Apply(q *gorm.DB) *gorm.DB {
	if c.Empty() {
		return q
	}
	return q.Where("("+c.SQL+")", c.Args...)
}

// Params holds the raw super search query values.
// Percentage groups take "key(lo,hi)" entries, the rest plain keys.
type Params struct {
	Genres          []string
	Subgenres       []string
	Specifications  []string
	Keywords        []string
	ActionTimes     []string
	Actors          []string
	Directors       []string
	Characters      []string
	SharedUniverses []string
	VisualProfiles  []string

	ExactMatch      bool
	InnerExactMatch bool
}

// ExtractWord returns the key part of each "key(lo,hi)" entry.
// Entries without a range are returned trimmed as they are.
func ExtractWord(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if m := wordPattern.FindStringSubmatch(v); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
			continue
		}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// ExtractValues returns the number list of each entry carrying a range.
// Entries without one are skipped.
func ExtractValues(values []string) [][]int {
	var out [][]int
	for _, v := range values {
		m := valuePattern.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		var nums []int
		for _, part := range strings.Split(m[1], ",") {
			if n, err := strconv.Atoi(part); err == nil {
				nums = append(nums, n)
			}
		}
		out = append(out, nums)
	}
	return out
}

// Range is a closed percentage interval
type Range struct {
	Key string
	Min float64
	Max float64
}

// ParseRanges zips the extracted keys with the extracted ranges by position.
// Ranges are collected only from ranged entries, so an unranged key takes the
// next range in the list. Extra keys or ranges are ignored, as are ranges
// with fewer than two numbers.
func ParseRanges(values []string) []Range {
	words, nums := ExtractWord(values), ExtractValues(values)
	n := min(len(words), len(nums))

	var out []Range
	for i := 0; i < n; i++ {
		if words[i] == "" || len(nums[i]) < 2 {
			continue
		}
		out = append(out, Range{Key: words[i], Min: float64(nums[i][0]), Max: float64(nums[i][1])})
	}
	return out
}

// Match requires a movie linked to key with a percentage inside [min, max]
func Match(g Group, key string, min, max float64) Condition {
	return Condition{
		SQL: fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %[1]s jt JOIN %[3]s e ON e.id = jt.%[2]s WHERE jt.movie_id = movies.id AND e.key = ? AND jt.percentage_match >= ? AND jt.percentage_match <= ?)",
			g.JoinTable, g.ForeignKey, g.EntityTable),
		Args: []interface{}{key, min, max},
	}
}

// MatchID is Match for an already resolved entity id
func MatchID(g Group, id uint, min, max float64) Condition {
	return Condition{
		SQL: fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s jt WHERE jt.movie_id = movies.id AND jt.%s = ? AND jt.percentage_match >= ? AND jt.percentage_match <= ?)",
			g.JoinTable, g.ForeignKey),
		Args: []interface{}{id, min, max},
	}
}

// HasActor requires the actor in the movie cast
func HasActor(key string) Condition {
	return Condition{
		SQL:  "EXISTS (SELECT 1 FROM movie_actors ma JOIN actors a ON a.id = ma.actor_id WHERE ma.movie_id = movies.id AND a.key = ?)",
		Args: []interface{}{key},
	}
}

// HasDirector requires the director in the movie crew
func HasDirector(key string) Condition {
	return Condition{
		SQL:  "EXISTS (SELECT 1 FROM movie_directors md JOIN directors d ON d.id = md.director_id WHERE md.movie_id = movies.id AND d.key = ?)",
		Args: []interface{}{key},
	}
}

// HasCharacter requires the character to appear in the movie
func HasCharacter(key string) Condition {
	return Condition{
		SQL:  "EXISTS (SELECT 1 FROM movie_actor_characters mac JOIN characters c ON c.id = mac.character_id WHERE mac.movie_id = movies.id AND c.key = ?)",
		Args: []interface{}{key},
	}
}

// InSharedUniverse requires the movie to belong to the universe
func InSharedUniverse(key string) Condition {
	return Condition{
		SQL:  "EXISTS (SELECT 1 FROM shared_universes su WHERE su.id = movies.shared_universe_id AND su.key = ?)",
		Args: []interface{}{key},
	}
}

// HasVisualProfileCategory requires a visual profile of the category
func HasVisualProfileCategory(categoryID uint) Condition {
	return Condition{
		SQL:  "EXISTS (SELECT 1 FROM visual_profiles vp WHERE vp.movie_id = movies.id AND vp.category_id = ?)",
		Args: []interface{}{categoryID},
	}
}

// And joins conditions with AND, skipping empty ones
func And(conds ...Condition) Condition {
	return combine("AND", conds)
}

// Or joins conditions with OR, skipping empty ones
func Or(conds ...Condition) Condition {
	return combine("OR", conds)
}

func combine(op string, conds []Condition) Condition {
	var kept []Condition
	for _, c := range conds {
		if !c.Empty() {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return Condition{}
	case 1:
		return kept[0]
	}

	parts := make([]string, 0, len(kept))
	var args []interface{}
	for _, c := range kept {
		parts = append(parts, "("+c.SQL+")")
		args = append(args, c.Args...)
	}
	return Condition{SQL: strings.Join(parts, " "+op+" "), Args: args}
}

// Build turns the super search parameters into one condition.
// Entries of one group are joined by AND when InnerExactMatch is set,
// groups are joined by AND when ExactMatch is set, OR otherwise.
func Build(ctx context.Context, db *gorm.DB, p Params) (Condition, error) {
	inner, outer := Or, Or
	if p.InnerExactMatch {
		inner = And
	}
	if p.ExactMatch {
		outer = And
	}

	var groups []Condition
	for _, pg := range []struct {
		group  Group
		values []string
	}{
		{GenreGroup, p.Genres},
		{SubgenreGroup, p.Subgenres},
		{SpecificationGroup, p.Specifications},
		{KeywordGroup, p.Keywords},
		{ActionTimeGroup, p.ActionTimes},
	} {
		var conds []Condition
		for _, r := range ParseRanges(pg.values) {
			conds = append(conds, Match(pg.group, r.Key, r.Min, r.Max))
		}
		groups = append(groups, inner(conds...))
	}

	groups = append(groups,
		inner(keyConditions(p.Actors, HasActor)...),
		inner(keyConditions(p.Directors, HasDirector)...),
		inner(keyConditions(p.Characters, HasCharacter)...),
		inner(keyConditions(p.SharedUniverses, InSharedUniverse)...),
	)

	if len(p.VisualProfiles) > 0 {
		var ids []uint
		err := db.WithContext(ctx).Model(&database.VisualProfileCategory{}).
			Where("key IN ?", p.VisualProfiles).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil {
			return Condition{}, fmt.Errorf("failed to resolve visual profile categories: %w", err)
		}
		var conds []Condition
		for _, id := range ids {
			conds = append(conds, HasVisualProfileCategory(id))
		}
		groups = append(groups, inner(conds...))
	}

	return outer(groups...), nil
}

func keyConditions(keys []string, fn func(string) Condition) []Condition {
	var conds []Condition
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			conds = append(conds, fn(k))
		}
	}
	return conds
}
