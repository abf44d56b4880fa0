package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// =============================================================================
// TRANSLATIONS
// =============================================================================

// Translatable is implemented by every per-language row
type Translatable interface {
	Lang() types.Language
}

// PickTranslation returns the row for lang, falling back to the first row.
// The bool reports whether the requested language was present.
func PickTranslation[T Translatable](rows []T, lang types.Language) (T, bool) {
	for _, row := range rows {
		if row.Lang() == lang {
			return row, true
		}
	}
	var zero T
	if len(rows) > 0 {
		return rows[0], false
	}
	return zero, false
}

// NamedTranslation is the localized name/description pair shared by taxonomy rows
type NamedTranslation struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	Language    types.Language `gorm:"size:2;not null;index" json:"language"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	SearchName  string         `gorm:"index" json:"-"` // normalized Name for search
}

func (t NamedTranslation) Lang() types.Language { return t.Language }

func (t *NamedTranslation) BeforeSave(tx *gorm.DB) error {
	t.SearchName = utils.NormalizeSearch(t.Name)
	return nil
}

// PersonTranslation holds the localized parts of an actor or director
type PersonTranslation struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	Language   types.Language `gorm:"size:2;not null;index" json:"language"`
	FirstName  string         `gorm:"not null" json:"first_name"`
	LastName   string         `json:"last_name"`
	BornIn     string         `json:"born_in"`
	SearchName string         `gorm:"index" json:"-"`
}

func (t PersonTranslation) Lang() types.Language { return t.Language }

// FullName joins first and last name
func (t PersonTranslation) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

func (t *PersonTranslation) BeforeSave(tx *gorm.DB) error {
	t.SearchName = utils.NormalizeSearch(t.FullName())
	return nil
}

// =============================================================================
// MOVIES
// =============================================================================

// Movie is the central catalog entity
type Movie struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	Key             string                `gorm:"size:255;uniqueIndex;not null" json:"key"`
	ReleaseDate     time.Time             `gorm:"index" json:"release_date"`
	Duration        int                   `json:"duration"` // minutes
	Budget          int64                 `json:"budget"`
	DomesticGross   int64                 `json:"domestic_gross"`
	WorldwideGross  int64                 `json:"worldwide_gross"`
	Poster          string                `json:"poster"`
	AverageRating   float64               `gorm:"not null;default:0" json:"average_rating"`
	RatingsCount    int                   `gorm:"not null;default:0" json:"ratings_count"`
	RatingCriterion types.RatingCriterion `gorm:"size:32;not null;default:basic" json:"rating_criterion"`
	IsDeleted       bool                  `gorm:"not null;default:false;index" json:"is_deleted"`

	SharedUniverseID    *uint           `gorm:"index" json:"shared_universe_id,omitempty"`
	SharedUniverse      *SharedUniverse `gorm:"foreignKey:SharedUniverseID" json:"shared_universe,omitempty"`
	SharedUniverseOrder *int            `json:"shared_universe_order,omitempty"`

	RelationType          *types.RelationType `gorm:"size:16" json:"relation_type,omitempty"`
	CollectionBaseMovieID *uint               `gorm:"index" json:"collection_base_movie_id,omitempty"`
	CollectionBaseMovie   *Movie              `gorm:"foreignKey:CollectionBaseMovieID" json:"-"`
	CollectionOrder       *int                `json:"collection_order,omitempty"`

	Translations         []MovieTranslation    `gorm:"foreignKey:MovieID" json:"translations,omitempty"`
	Actors               []Actor               `gorm:"many2many:movie_actors" json:"actors,omitempty"`
	Directors            []Director            `gorm:"many2many:movie_directors" json:"directors,omitempty"`
	Characters           []MovieActorCharacter `gorm:"foreignKey:MovieID" json:"characters,omitempty"`
	GenreMatches         []MovieGenre          `gorm:"foreignKey:MovieID" json:"genres,omitempty"`
	SubgenreMatches      []MovieSubgenre       `gorm:"foreignKey:MovieID" json:"subgenres,omitempty"`
	SpecificationMatches []MovieSpecification  `gorm:"foreignKey:MovieID" json:"specifications,omitempty"`
	KeywordMatches       []MovieKeyword        `gorm:"foreignKey:MovieID" json:"keywords,omitempty"`
	ActionTimeMatches    []MovieActionTime     `gorm:"foreignKey:MovieID" json:"action_times,omitempty"`
	Ratings              []Rating              `gorm:"foreignKey:MovieID" json:"-"`
	VisualProfiles       []VisualProfile       `gorm:"foreignKey:MovieID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Translation returns the localized texts for lang
func (m *Movie) Translation(lang types.Language) MovieTranslation {
	t, _ := PickTranslation(m.Translations, lang)
	return t
}

// DisplayName renders "EN title (UK title)" for search results
func (m *Movie) DisplayName() string {
	en, _ := PickTranslation(m.Translations, types.LanguageEN)
	uk, _ := PickTranslation(m.Translations, types.LanguageUK)
	return en.Title + " (" + uk.Title + ")"
}

// MarkAsDeleted soft-deletes the movie and frees its key for reuse
func (m *Movie) MarkAsDeleted(now time.Time) {
	m.IsDeleted = true
	m.Key = DeletedKey(now)
}

// DeletedKey is the placeholder key assigned to soft-deleted rows
func DeletedKey(now time.Time) string {
	return fmt.Sprintf("deleted-%s:%06d", now.Format("06-01-02_15:04:05"), now.Nanosecond()/1000)
}

// MovieTranslation holds localized movie texts
type MovieTranslation struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	MovieID     uint           `gorm:"not null;index" json:"-"`
	Language    types.Language `gorm:"size:2;not null;index" json:"language"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `json:"location"`
	SearchTitle string         `gorm:"index" json:"-"`
}

func (t MovieTranslation) Lang() types.Language { return t.Language }

func (t *MovieTranslation) BeforeSave(tx *gorm.DB) error {
	t.SearchTitle = utils.NormalizeSearch(t.Title)
	return nil
}

// =============================================================================
// PERCENTAGE MATCH JOIN TABLES
// =============================================================================

// MovieGenre links a movie to a genre with a 0-100 weighting
type MovieGenre struct {
	MovieID         uint    `gorm:"primaryKey" json:"movie_id"`
	GenreID         uint    `gorm:"primaryKey" json:"genre_id"`
	PercentageMatch float64 `gorm:"not null;default:0" json:"percentage_match"`
	Genre           *Genre  `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
}

type MovieSubgenre struct {
	MovieID         uint      `gorm:"primaryKey" json:"movie_id"`
	SubgenreID      uint      `gorm:"primaryKey" json:"subgenre_id"`
	PercentageMatch float64   `gorm:"not null;default:0" json:"percentage_match"`
	Subgenre        *Subgenre `gorm:"foreignKey:SubgenreID" json:"subgenre,omitempty"`
}

type MovieSpecification struct {
	MovieID         uint           `gorm:"primaryKey" json:"movie_id"`
	SpecificationID uint           `gorm:"primaryKey" json:"specification_id"`
	PercentageMatch float64        `gorm:"not null;default:0" json:"percentage_match"`
	Specification   *Specification `gorm:"foreignKey:SpecificationID" json:"specification,omitempty"`
}

type MovieKeyword struct {
	MovieID         uint     `gorm:"primaryKey" json:"movie_id"`
	KeywordID       uint     `gorm:"primaryKey" json:"keyword_id"`
	PercentageMatch float64  `gorm:"not null;default:0" json:"percentage_match"`
	Keyword         *Keyword `gorm:"foreignKey:KeywordID" json:"keyword,omitempty"`
}

type MovieActionTime struct {
	MovieID         uint        `gorm:"primaryKey" json:"movie_id"`
	ActionTimeID    uint        `gorm:"primaryKey" json:"action_time_id"`
	PercentageMatch float64     `gorm:"not null;default:0" json:"percentage_match"`
	ActionTime      *ActionTime `gorm:"foreignKey:ActionTimeID" json:"action_time,omitempty"`
}

// =============================================================================
// PEOPLE AND CHARACTERS
// =============================================================================

// Actor appears in movies playing characters
type Actor struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Key          string             `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Born         time.Time          `json:"born"`
	Died         *time.Time         `json:"died,omitempty"`
	Avatar       string             `json:"avatar"`
	Translations []ActorTranslation `gorm:"foreignKey:ActorID" json:"translations,omitempty"`
	Movies       []Movie            `gorm:"many2many:movie_actors" json:"-"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type ActorTranslation struct {
	PersonTranslation
	ActorID uint `gorm:"not null;index" json:"-"`
}

func (a *Actor) Translation(lang types.Language) PersonTranslation {
	t, _ := PickTranslation(a.Translations, lang)
	return t.PersonTranslation
}

func (a *Actor) FullName(lang types.Language) string {
	return a.Translation(lang).FullName()
}

// DisplayName renders "EN name (UK name)"
func (a *Actor) DisplayName() string {
	return a.FullName(types.LanguageEN) + " (" + a.FullName(types.LanguageUK) + ")"
}

func (a *Actor) Age(now time.Time) int {
	return Age(a.Born, a.Died, now)
}

// Director directs movies
type Director struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	Key          string                `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Born         time.Time             `json:"born"`
	Died         *time.Time            `json:"died,omitempty"`
	Avatar       string                `json:"avatar"`
	Translations []DirectorTranslation `gorm:"foreignKey:DirectorID" json:"translations,omitempty"`
	Movies       []Movie               `gorm:"many2many:movie_directors" json:"-"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type DirectorTranslation struct {
	PersonTranslation
	DirectorID uint `gorm:"not null;index" json:"-"`
}

func (d *Director) Translation(lang types.Language) PersonTranslation {
	t, _ := PickTranslation(d.Translations, lang)
	return t.PersonTranslation
}

func (d *Director) FullName(lang types.Language) string {
	return d.Translation(lang).FullName()
}

func (d *Director) DisplayName() string {
	return d.FullName(types.LanguageEN) + " (" + d.FullName(types.LanguageUK) + ")"
}

func (d *Director) Age(now time.Time) int {
	return Age(d.Born, d.Died, now)
}

// Character is a role an actor plays in a movie
type Character struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	Key          string                 `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Translations []CharacterTranslation `gorm:"foreignKey:CharacterID" json:"translations,omitempty"`
	Appearances  []MovieActorCharacter  `gorm:"foreignKey:CharacterID" json:"-"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type CharacterTranslation struct {
	NamedTranslation
	CharacterID uint `gorm:"not null;index" json:"-"`
}

func (c *Character) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(c.Translations, lang)
	return t.NamedTranslation
}

func (c *Character) DisplayName() string {
	return c.Translation(types.LanguageEN).Name + " (" + c.Translation(types.LanguageUK).Name + ")"
}

// MovieActorCharacter records which actor played which character in a movie
type MovieActorCharacter struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MovieID     uint       `gorm:"not null;uniqueIndex:idx_movie_actor_character" json:"movie_id"`
	ActorID     uint       `gorm:"not null;uniqueIndex:idx_movie_actor_character" json:"actor_id"`
	CharacterID uint       `gorm:"not null;uniqueIndex:idx_movie_actor_character" json:"character_id"`
	Order       int        `gorm:"column:display_order;not null;default:0" json:"order"`
	Actor       *Actor     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Character   *Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
}

// =============================================================================
// TAXONOMY
// =============================================================================

type Genre struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Key          string             `gorm:"size:255;uniqueIndex;not null" json:"key"`
	UUID         *string            `gorm:"size:36;uniqueIndex" json:"uuid,omitempty"`
	Translations []GenreTranslation `gorm:"foreignKey:GenreID" json:"translations,omitempty"`
	Subgenres    []Subgenre         `gorm:"foreignKey:ParentGenreID" json:"subgenres,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type GenreTranslation struct {
	NamedTranslation
	GenreID uint `gorm:"not null;index" json:"-"`
}

func (g *Genre) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(g.Translations, lang)
	return t.NamedTranslation
}

type Subgenre struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	Key           string                `gorm:"size:255;uniqueIndex;not null" json:"key"`
	UUID          *string               `gorm:"size:36;uniqueIndex" json:"uuid,omitempty"`
	ParentGenreID uint                  `gorm:"not null;index" json:"parent_genre_id"`
	ParentGenre   *Genre                `gorm:"foreignKey:ParentGenreID" json:"parent_genre,omitempty"`
	Translations  []SubgenreTranslation `gorm:"foreignKey:SubgenreID" json:"translations,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type SubgenreTranslation struct {
	NamedTranslation
	SubgenreID uint `gorm:"not null;index" json:"-"`
}

func (s *Subgenre) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(s.Translations, lang)
	return t.NamedTranslation
}

type Specification struct {
	ID           uint                       `gorm:"primaryKey" json:"id"`
	Key          string                     `gorm:"size:255;uniqueIndex;not null" json:"key"`
	UUID         *string                    `gorm:"size:36;uniqueIndex" json:"uuid,omitempty"`
	Translations []SpecificationTranslation `gorm:"foreignKey:SpecificationID" json:"translations,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

type SpecificationTranslation struct {
	NamedTranslation
	SpecificationID uint `gorm:"not null;index" json:"-"`
}

func (s *Specification) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(s.Translations, lang)
	return t.NamedTranslation
}

type Keyword struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	Key          string               `gorm:"size:255;uniqueIndex;not null" json:"key"`
	UUID         *string              `gorm:"size:36;uniqueIndex" json:"uuid,omitempty"`
	Translations []KeywordTranslation `gorm:"foreignKey:KeywordID" json:"translations,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type KeywordTranslation struct {
	NamedTranslation
	KeywordID uint `gorm:"not null;index" json:"-"`
}

func (k *Keyword) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(k.Translations, lang)
	return t.NamedTranslation
}

// ActionTime is the period a movie's story takes place in
type ActionTime struct {
	ID           uint                    `gorm:"primaryKey" json:"id"`
	Key          string                  `gorm:"size:255;uniqueIndex;not null" json:"key"`
	UUID         *string                 `gorm:"size:36;uniqueIndex" json:"uuid,omitempty"`
	Translations []ActionTimeTranslation `gorm:"foreignKey:ActionTimeID" json:"translations,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type ActionTimeTranslation struct {
	NamedTranslation
	ActionTimeID uint `gorm:"not null;index" json:"-"`
}

func (a *ActionTime) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(a.Translations, lang)
	return t.NamedTranslation
}

// SharedUniverse groups movies from one franchise world
type SharedUniverse struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Key          string                      `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Translations []SharedUniverseTranslation `gorm:"foreignKey:SharedUniverseID" json:"translations,omitempty"`
	Movies       []Movie                     `gorm:"foreignKey:SharedUniverseID" json:"-"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type SharedUniverseTranslation struct {
	NamedTranslation
	SharedUniverseID uint `gorm:"not null;index" json:"-"`
}

func (s *SharedUniverse) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(s.Translations, lang)
	return t.NamedTranslation
}

// =============================================================================
// USERS AND RATINGS
// =============================================================================

// User rates movies; admins and the owner edit the catalog
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UUID              string         `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	FirstName         string         `gorm:"not null" json:"first_name"`
	LastName          string         `json:"last_name"`
	Email             string         `gorm:"index" json:"email"`
	Role              types.UserRole `gorm:"size:16;not null;default:user" json:"role"`
	PasswordHash      string         `json:"-"`
	PreferredLanguage types.Language `gorm:"size:2;not null;default:uk" json:"preferred_language"`
	IsDeleted         bool           `gorm:"not null;default:false" json:"is_deleted"`
	Ratings           []Rating       `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = utils.GenerateUUID()
	}
	if u.Role == "" {
		u.Role = types.RoleUser
	}
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = types.LanguageUK
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Rating is one user's score for one movie
type Rating struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UUID             string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	MovieID          uint      `gorm:"not null;uniqueIndex:idx_rating_movie_user" json:"movie_id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_rating_movie_user;index" json:"user_id"`
	Rating           float64   `gorm:"not null" json:"rating"`
	Comment          string    `gorm:"type:text" json:"comment,omitempty"`
	Acting           float64   `gorm:"not null;default:0" json:"acting"`
	PlotStoryline    float64   `gorm:"not null;default:0" json:"plot_storyline"`
	ScriptDialogue   float64   `gorm:"not null;default:0" json:"script_dialogue"`
	Music            float64   `gorm:"not null;default:0" json:"music"`
	Enjoyment        float64   `gorm:"not null;default:0" json:"enjoyment"`
	ProductionDesign float64   `gorm:"not null;default:0" json:"production_design"`
	VisualEffects    *float64  `json:"visual_effects,omitempty"`
	ScareFactor      *float64  `json:"scare_factor,omitempty"`
	Humor            *float64  `json:"humor,omitempty"`
	AnimationCartoon *float64  `json:"animation_cartoon,omitempty"`
	Movie            *Movie    `gorm:"foreignKey:MovieID" json:"-"`
	User             *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = utils.GenerateUUID()
	}
	return nil
}

// RatedAt is the later of creation and last update
func (r *Rating) RatedAt() time.Time {
	if r.UpdatedAt.After(r.CreatedAt) {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// =============================================================================
// VISUAL PROFILES
// =============================================================================

// VisualProfileCategory is a named set of criteria, e.g. "Dark fantasy look"
type VisualProfileCategory struct {
	ID           uint                               `gorm:"primaryKey" json:"id"`
	UUID         string                             `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Key          string                             `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Translations []VisualProfileCategoryTranslation `gorm:"foreignKey:CategoryID" json:"translations,omitempty"`
	Criteria     []VisualProfileCriterion           `gorm:"many2many:visual_profile_category_criteria" json:"criteria,omitempty"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

type VisualProfileCategoryTranslation struct {
	NamedTranslation
	CategoryID uint `gorm:"not null;index" json:"-"`
}

func (c *VisualProfileCategory) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = utils.GenerateUUID()
	}
	return nil
}

func (c *VisualProfileCategory) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(c.Translations, lang)
	return t.NamedTranslation
}

// VisualProfileCriterion is one scale inside a category, e.g. "Color palette"
type VisualProfileCriterion struct {
	ID           uint                                `gorm:"primaryKey" json:"id"`
	UUID         string                              `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Key          string                              `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Translations []VisualProfileCriterionTranslation `gorm:"foreignKey:CriterionID" json:"translations,omitempty"`
	CreatedAt    time.Time                           `json:"created_at"`
	UpdatedAt    time.Time                           `json:"updated_at"`
}

type VisualProfileCriterionTranslation struct {
	NamedTranslation
	CriterionID uint `gorm:"not null;index" json:"-"`
}

func (c *VisualProfileCriterion) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = utils.GenerateUUID()
	}
	return nil
}

func (c *VisualProfileCriterion) Translation(lang types.Language) NamedTranslation {
	t, _ := PickTranslation(c.Translations, lang)
	return t.NamedTranslation
}

// VisualProfile is a user's per-movie rating against one category
type VisualProfile struct {
	ID         uint                   `gorm:"primaryKey" json:"id"`
	UUID       string                 `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	MovieID    uint                   `gorm:"not null;uniqueIndex:idx_visual_profile_movie_user" json:"movie_id"`
	UserID     uint                   `gorm:"not null;uniqueIndex:idx_visual_profile_movie_user" json:"user_id"`
	CategoryID uint                   `gorm:"not null;index" json:"category_id"`
	Category   *VisualProfileCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Ratings    []VisualProfileRating  `gorm:"foreignKey:ProfileID" json:"ratings,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func (p *VisualProfile) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = utils.GenerateUUID()
	}
	return nil
}

// VisualProfileRating is the score for one criterion of a profile
type VisualProfileRating struct {
	ID          uint                    `gorm:"primaryKey" json:"id"`
	ProfileID   uint                    `gorm:"not null;index" json:"profile_id"`
	CriterionID uint                    `gorm:"not null;index" json:"criterion_id"`
	Criterion   *VisualProfileCriterion `gorm:"foreignKey:CriterionID" json:"criterion,omitempty"`
	Rating      int                     `gorm:"not null;default:0" json:"rating"`
	Order       int                     `gorm:"column:display_order;not null;default:0" json:"order"`
}

// AllModels lists every table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&SharedUniverse{}, &SharedUniverseTranslation{},
		&Genre{}, &GenreTranslation{},
		&Subgenre{}, &SubgenreTranslation{},
		&Specification{}, &SpecificationTranslation{},
		&Keyword{}, &KeywordTranslation{},
		&ActionTime{}, &ActionTimeTranslation{},
		&Actor{}, &ActorTranslation{},
		&Director{}, &DirectorTranslation{},
		&Character{}, &CharacterTranslation{},
		&Movie{}, &MovieTranslation{},
		&MovieGenre{}, &MovieSubgenre{}, &MovieSpecification{}, &MovieKeyword{}, &MovieActionTime{},
		&MovieActorCharacter{},
		&Rating{},
		&VisualProfileCriterion{}, &VisualProfileCriterionTranslation{},
		&VisualProfileCategory{}, &VisualProfileCategoryTranslation{},
		&VisualProfile{}, &VisualProfileRating{},
	}
}
