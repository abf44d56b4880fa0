package sheetsmodule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

// Entity names accepted by Export, ExportFromJSON and AppendLatest
const (
	EntityMovies          = "movies"
	EntityActors          = "actors"
	EntityDirectors       = "directors"
	EntityCharacters      = "characters"
	EntityGenres          = "genres"
	EntitySubgenres       = "subgenres"
	EntitySpecifications  = "specifications"
	EntityKeywords        = "keywords"
	EntityActionTimes     = "action_times"
	EntitySharedUniverses = "shared_universes"
	EntityUsers           = "users"
	EntityRatings         = "ratings"
	EntityTitleCategories = "title_categories"
	EntityTitleCriteria   = "title_criteria"
	EntityVisualProfiles  = "visual_profiles"
	EntityTitleRatings    = "title_ratings"
)

// ExportOrder lists the entities so that every sheet comes after the
// sheets it references
var ExportOrder = []string{
	EntityUsers,
	EntityGenres, EntitySubgenres, EntitySpecifications, EntityKeywords, EntityActionTimes, EntitySharedUniverses,
	EntityActors, EntityDirectors,
	EntityMovies, EntityCharacters,
	EntityRatings,
	EntityTitleCriteria, EntityTitleCategories, EntityVisualProfiles, EntityTitleRatings,
}

// Result summarises one export
type Result struct {
	Entity  string `json:"entity"`
	Read    int    `json:"read"`
	Written int    `json:"written"`
}

type handler interface {
	export(ctx context.Context, s *Service) (Result, error)
	fromJSON(ctx context.Context, s *Service, limit int) (Result, error)
	appendLatest(ctx context.Context, s *Service) error
}

// entity binds a sheet to its record type
type entity[T any] struct {
	name    string
	sheet   string   // range read by export
	target  string   // range appended to; the sheet when empty
	columns []string // header columns that must be present
	parse   func(Row) (T, error)
	write   func(*gorm.DB, []T) (int, error)
	row     func(T) []interface{}
	latest  func(*gorm.DB) (T, error)
}

func (e entity[T]) export(ctx context.Context, s *Service) (Result, error) {
	res := Result{Entity: e.name}
	values, err := s.client.Values(ctx, e.sheet)
	if err != nil {
		return res, err
	}
	table, err := NewTable(values)
	if err != nil {
		return res, fmt.Errorf("%s: %w", e.sheet, err)
	}
	if err := table.Require(e.columns...); err != nil {
		return res, fmt.Errorf("%s: %w", e.sheet, err)
	}

	rows := table.Rows()
	items := make([]T, 0, len(rows))
	for _, r := range rows {
		item, err := e.parse(r)
		if err != nil {
			return res, fmt.Errorf("%s: %w", e.sheet, err)
		}
		items = append(items, item)
	}
	res.Read = len(items)

	path, err := s.dumps.save(e.name, items)
	if err != nil {
		return res, err
	}
	s.log.Info("Sheet data saved", "entity", e.name, "rows", len(items), "file", path)

	res.Written, err = writeAll(ctx, s, e.write, items)
	return res, err
}

func (e entity[T]) fromJSON(ctx context.Context, s *Service, limit int) (Result, error) {
	res := Result{Entity: e.name}
	var items []T
	if err := s.dumps.load(e.name, &items); err != nil {
		return res, err
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	res.Read = len(items)

	var err error
	res.Written, err = writeAll(ctx, s, e.write, items)
	return res, err
}

func (e entity[T]) appendLatest(ctx context.Context, s *Service) error {
	item, err := e.latest(s.db.WithContext(ctx))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: nothing to append", e.name)
	}
	if err != nil {
		return err
	}
	target := e.target
	if target == "" {
		target = e.sheet
	}
	return s.client.Append(ctx, target, [][]interface{}{e.row(item)})
}

func last[M any](tx *gorm.DB, preload ...string) (*M, error) {
	var m M
	q := tx.Order("id DESC")
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// named adapts a translated key/name model to a NamedRecord
type named interface {
	Translation(types.Language) database.NamedTranslation
}

func lastNamed[M any](tx *gorm.DB, id func(*M) (uint, string)) (NamedRecord, error) {
	m, err := last[M](tx, "Translations")
	if err != nil {
		return NamedRecord{}, err
	}
	n, ok := any(m).(named)
	if !ok {
		return NamedRecord{}, fmt.Errorf("%T has no translations", m)
	}
	rid, key := id(m)
	return namedRecord(rid, key, n.Translation(types.LanguageUK), n.Translation(types.LanguageEN)), nil
}

var namedColumns = []string{"key", "name_uk", "name_en"}

func namedEntity(name, sheet string, write func(*gorm.DB, []NamedRecord) (int, error), latest func(*gorm.DB) (NamedRecord, error)) entity[NamedRecord] {
	return entity[NamedRecord]{
		name: name, sheet: sheet, columns: namedColumns,
		parse: parseNamed, write: write, row: NamedRecord.row, latest: latest,
	}
}

var personColumns = []string{"key", "first_name_uk", "first_name_en", "born"}

var registry = map[string]handler{
	EntityMovies: entity[MovieRecord]{
		name:  EntityMovies,
		sheet: "Movies!A1:W",
		columns: []string{
			"title_uk", "title_en", "description_uk", "description_en",
			"release_date", "duration", "budget", "domestic_gross", "worldwide_gross",
		},
		parse: parseMovie, write: writeMovies, row: MovieRecord.row,
		latest: func(tx *gorm.DB) (MovieRecord, error) {
			m, err := last[database.Movie](tx.Where("is_deleted = ?", false),
				"Translations", "Actors", "Directors",
				"GenreMatches", "SubgenreMatches", "SpecificationMatches", "KeywordMatches", "ActionTimeMatches")
			if err != nil {
				return MovieRecord{}, err
			}
			return movieRecord(m), nil
		},
	},
	EntityActors: entity[PersonRecord]{
		name: EntityActors, sheet: "Actors!A1:L", columns: personColumns,
		parse: parsePerson, write: writeActors, row: PersonRecord.row,
		latest: func(tx *gorm.DB) (PersonRecord, error) {
			a, err := last[database.Actor](tx, "Translations")
			if err != nil {
				return PersonRecord{}, err
			}
			return personRecord(a.ID, a.Key, a.Born, a.Died, a.Avatar, a.Translation(types.LanguageUK), a.Translation(types.LanguageEN)), nil
		},
	},
	EntityDirectors: entity[PersonRecord]{
		name: EntityDirectors, sheet: "Directors!A1:L", columns: personColumns,
		parse: parsePerson, write: writeDirectors, row: PersonRecord.row,
		latest: func(tx *gorm.DB) (PersonRecord, error) {
			d, err := last[database.Director](tx, "Translations")
			if err != nil {
				return PersonRecord{}, err
			}
			return personRecord(d.ID, d.Key, d.Born, d.Died, d.Avatar, d.Translation(types.LanguageUK), d.Translation(types.LanguageEN)), nil
		},
	},
	EntityCharacters: entity[CharacterRecord]{
		name: EntityCharacters, sheet: "Characters!A1:G",
		columns: []string{"key", "name_uk", "name_en", "actors_ids", "movies_ids"},
		parse:   parseCharacter, write: writeCharacters, row: CharacterRecord.row,
		latest: func(tx *gorm.DB) (CharacterRecord, error) {
			c, err := last[database.Character](tx, "Translations")
			if err != nil {
				return CharacterRecord{}, err
			}
			var links []database.MovieActorCharacter
			if err := tx.Where("character_id = ?", c.ID).Order("display_order, id").Find(&links).Error; err != nil {
				return CharacterRecord{}, err
			}
			rec := CharacterRecord{
				ID: c.ID, Key: c.Key,
				NameUK: c.Translation(types.LanguageUK).Name, NameEN: c.Translation(types.LanguageEN).Name,
			}
			for _, l := range links {
				rec.ActorsIDs = append(rec.ActorsIDs, l.ActorID)
				rec.MoviesIDs = append(rec.MoviesIDs, l.MovieID)
			}
			return rec, nil
		},
	},
	EntityGenres: namedEntity(EntityGenres, "Genres!A1:G", writeGenres, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(g *database.Genre) (uint, string) { return g.ID, g.Key })
	}),
	EntitySubgenres: entity[NamedRecord]{
		name: EntitySubgenres, sheet: "Subgenres!A1:H",
		columns: append([]string{"parent_genre_id"}, namedColumns...),
		parse:   parseSubgenre, write: writeSubgenres, row: NamedRecord.subgenreRow,
		latest: func(tx *gorm.DB) (NamedRecord, error) {
			s, err := last[database.Subgenre](tx, "Translations")
			if err != nil {
				return NamedRecord{}, err
			}
			rec := namedRecord(s.ID, s.Key, s.Translation(types.LanguageUK), s.Translation(types.LanguageEN))
			rec.ParentGenreID = s.ParentGenreID
			return rec, nil
		},
	},
	EntitySpecifications: namedEntity(EntitySpecifications, "Specifications!A1:G", writeSpecifications, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(s *database.Specification) (uint, string) { return s.ID, s.Key })
	}),
	EntityKeywords: namedEntity(EntityKeywords, "Keywords!A1:G", writeKeywords, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(k *database.Keyword) (uint, string) { return k.ID, k.Key })
	}),
	EntityActionTimes: namedEntity(EntityActionTimes, "Action time!A1:G", writeActionTimes, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(a *database.ActionTime) (uint, string) { return a.ID, a.Key })
	}),
	EntitySharedUniverses: namedEntity(EntitySharedUniverses, "Shared Universe!A1:G", writeSharedUniverses, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(s *database.SharedUniverse) (uint, string) { return s.ID, s.Key })
	}),
	EntityTitleCriteria: namedEntity(EntityTitleCriteria, "Title Criteria!A1:G", writeCriteria, func(tx *gorm.DB) (NamedRecord, error) {
		return lastNamed(tx, func(c *database.VisualProfileCriterion) (uint, string) { return c.ID, c.Key })
	}),
	EntityTitleCategories: entity[NamedRecord]{
		name: EntityTitleCategories, sheet: "Title Categories!A1:H",
		columns: append([]string{"criteria_ids"}, namedColumns...),
		parse:   parseCategory, write: writeCategories, row: NamedRecord.categoryRow,
		latest: func(tx *gorm.DB) (NamedRecord, error) {
			c, err := last[database.VisualProfileCategory](tx, "Translations", "Criteria")
			if err != nil {
				return NamedRecord{}, err
			}
			rec := namedRecord(c.ID, c.Key, c.Translation(types.LanguageUK), c.Translation(types.LanguageEN))
			for _, cr := range c.Criteria {
				rec.CriteriaIDs = append(rec.CriteriaIDs, cr.ID)
			}
			sort.Slice(rec.CriteriaIDs, func(i, j int) bool { return rec.CriteriaIDs[i] < rec.CriteriaIDs[j] })
			return rec, nil
		},
	},
	EntityUsers: entity[UserRecord]{
		name: EntityUsers, sheet: "Users!A1:F",
		columns: []string{"first_name", "last_name", "role", "email"},
		parse:   parseUser, write: writeUsers, row: UserRecord.row,
		latest: func(tx *gorm.DB) (UserRecord, error) {
			u, err := last[database.User](tx.Where("is_deleted = ?", false))
			if err != nil {
				return UserRecord{}, err
			}
			return UserRecord{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Role: string(u.Role), Email: u.Email}, nil
		},
	},
	EntityRatings: entity[RatingRecord]{
		name: EntityRatings, sheet: "Rating!A1:R", target: "Rating Backup!A1:R",
		columns: []string{
			"movie_id", "user_id", "acting", "plot_storyline", "script_dialogue",
			"music", "enjoyment", "production_design", "rating",
		},
		parse: parseRating, write: writeRatings, row: RatingRecord.row,
		latest: func(tx *gorm.DB) (RatingRecord, error) {
			r, err := last[database.Rating](tx)
			if err != nil {
				return RatingRecord{}, err
			}
			return ratingRecord(r), nil
		},
	},
	EntityVisualProfiles: entity[ProfileRecord]{
		name: EntityVisualProfiles, sheet: "Title Visual Profile!A1:E",
		columns: []string{"movie_id", "user_id", "category_id"},
		parse:   parseProfile, write: writeProfiles, row: ProfileRecord.row,
		latest: func(tx *gorm.DB) (ProfileRecord, error) {
			p, err := last[database.VisualProfile](tx)
			if err != nil {
				return ProfileRecord{}, err
			}
			return ProfileRecord{ID: p.ID, MovieID: p.MovieID, UserID: p.UserID, CategoryID: p.CategoryID}, nil
		},
	},
	EntityTitleRatings: entity[ProfileRatingRecord]{
		name: EntityTitleRatings, sheet: "Title Criterion Rating!A1:F",
		columns: []string{"title_visual_profile_id", "criterion_id", "rating", "order"},
		parse:   parseProfileRating, write: writeProfileRatings, row: ProfileRatingRecord.row,
		latest: func(tx *gorm.DB) (ProfileRatingRecord, error) {
			r, err := last[database.VisualProfileRating](tx)
			if err != nil {
				return ProfileRatingRecord{}, err
			}
			return ProfileRatingRecord{ID: r.ID, ProfileID: r.ProfileID, CriterionID: r.CriterionID, Rating: r.Rating, Order: r.Order}, nil
		},
	},
}
