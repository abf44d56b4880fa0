package sheetsmodule

import (
	"errors"
	"fmt"

	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

// ErrEmptyDependency is returned when a sheet references a table that has
// not been exported yet
var ErrEmptyDependency = errors.New("dependent table is empty")

func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireRows(tx *gorm.DB, model interface{}, table, entity string) error {
	var n int64
	if err := tx.Model(model).Limit(1).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s (export %s first)", ErrEmptyDependency, table, entity)
	}
	return nil
}

// knownIDs keeps the ids that exist in model's table, preserving order
func knownIDs(tx *gorm.DB, model interface{}, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(found))
	for _, id := range found {
		set[id] = true
	}
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if set[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func knownMatches(tx *gorm.DB, model interface{}, ms []Match) ([]Match, error) {
	ids := make([]uint, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	ok, err := knownIDs(tx, model, ids)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ok))
	for _, id := range ok {
		set[id] = true
	}
	var out []Match
	for _, m := range ms {
		if set[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

// syncSequence moves a postgres id sequence past rows inserted with
// explicit ids. Other dialects track this themselves.
func syncSequence(tx *gorm.DB, model interface{}) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(model); err != nil {
		return err
	}
	return tx.Exec(fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1))", stmt.Schema.Table,
	)).Error
}

func writeMovies(tx *gorm.DB, movies []MovieRecord) (int, error) {
	created := 0
	for _, rec := range movies {
		found, err := exists(tx, &database.Movie{}, "key = ?", rec.Key)
		if err != nil {
			return created, err
		}
		if found {
			logger.Debug("Movie already exists", "key", rec.Key)
			continue
		}

		criterion, _ := types.ParseRatingCriterion(rec.RatingCriterion)
		movie := database.Movie{
			ID: rec.ID, Key: rec.Key,
			ReleaseDate: rec.ReleaseDate, Duration: int(rec.Duration), Budget: rec.Budget,
			DomesticGross: rec.DomesticGross, WorldwideGross: rec.WorldwideGross,
			Poster: rec.Poster, RatingCriterion: criterion,
			Translations: []database.MovieTranslation{
				{Language: types.LanguageUK, Title: rec.TitleUK, Description: rec.DescriptionUK, Location: rec.LocationUK},
				{Language: types.LanguageEN, Title: rec.TitleEN, Description: rec.DescriptionEN, Location: rec.LocationEN},
			},
		}
		if err := tx.Create(&movie).Error; err != nil {
			return created, fmt.Errorf("movie %s: %w", rec.Key, err)
		}
		if err := linkMovie(tx, &movie, rec); err != nil {
			return created, fmt.Errorf("movie %s: %w", rec.Key, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.Movie{})
}

func linkMovie(tx *gorm.DB, movie *database.Movie, rec MovieRecord) error {
	actorIDs, err := knownIDs(tx, &database.Actor{}, rec.ActorsIDs)
	if err != nil {
		return err
	}
	if len(actorIDs) > 0 {
		var actors []database.Actor
		if err := tx.Find(&actors, actorIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(movie).Association("Actors").Append(&actors); err != nil {
			return err
		}
	}
	directorIDs, err := knownIDs(tx, &database.Director{}, rec.DirectorsIDs)
	if err != nil {
		return err
	}
	if len(directorIDs) > 0 {
		var directors []database.Director
		if err := tx.Find(&directors, directorIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(movie).Association("Directors").Append(&directors); err != nil {
			return err
		}
	}

	genres, err := knownMatches(tx, &database.Genre{}, rec.Genres)
	if err != nil {
		return err
	}
	for _, m := range genres {
		if err := tx.Create(&database.MovieGenre{MovieID: movie.ID, GenreID: m.ID, PercentageMatch: m.Percent}).Error; err != nil {
			return err
		}
	}
	subgenres, err := knownMatches(tx, &database.Subgenre{}, rec.Subgenres)
	if err != nil {
		return err
	}
	for _, m := range subgenres {
		if err := tx.Create(&database.MovieSubgenre{MovieID: movie.ID, SubgenreID: m.ID, PercentageMatch: m.Percent}).Error; err != nil {
			return err
		}
	}
	specs, err := knownMatches(tx, &database.Specification{}, rec.Specifications)
	if err != nil {
		return err
	}
	for _, m := range specs {
		if err := tx.Create(&database.MovieSpecification{MovieID: movie.ID, SpecificationID: m.ID, PercentageMatch: m.Percent}).Error; err != nil {
			return err
		}
	}
	keywords, err := knownMatches(tx, &database.Keyword{}, rec.Keywords)
	if err != nil {
		return err
	}
	for _, m := range keywords {
		if err := tx.Create(&database.MovieKeyword{MovieID: movie.ID, KeywordID: m.ID, PercentageMatch: m.Percent}).Error; err != nil {
			return err
		}
	}
	times, err := knownMatches(tx, &database.ActionTime{}, rec.ActionTimes)
	if err != nil {
		return err
	}
	for _, m := range times {
		if err := tx.Create(&database.MovieActionTime{MovieID: movie.ID, ActionTimeID: m.ID, PercentageMatch: m.Percent}).Error; err != nil {
			return err
		}
	}
	return nil
}

func writeActors(tx *gorm.DB, people []PersonRecord) (int, error) {
	created := 0
	for _, rec := range people {
		found, err := exists(tx, &database.Actor{}, "key = ?", rec.Key)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		uk, en := rec.translations()
		actor := database.Actor{
			ID: rec.ID, Key: rec.Key, Born: rec.Born, Died: rec.Died, Avatar: rec.Avatar,
			Translations: []database.ActorTranslation{{PersonTranslation: uk}, {PersonTranslation: en}},
		}
		if err := tx.Create(&actor).Error; err != nil {
			return created, fmt.Errorf("actor %s: %w", rec.Key, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.Actor{})
}

func writeDirectors(tx *gorm.DB, people []PersonRecord) (int, error) {
	created := 0
	for _, rec := range people {
		found, err := exists(tx, &database.Director{}, "key = ?", rec.Key)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		uk, en := rec.translations()
		director := database.Director{
			ID: rec.ID, Key: rec.Key, Born: rec.Born, Died: rec.Died, Avatar: rec.Avatar,
			Translations: []database.DirectorTranslation{{PersonTranslation: uk}, {PersonTranslation: en}},
		}
		if err := tx.Create(&director).Error; err != nil {
			return created, fmt.Errorf("director %s: %w", rec.Key, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.Director{})
}

// writeCharacters pairs actors_ids with movies_ids by position. Pairs whose
// actor or movie does not exist are dropped.
func writeCharacters(tx *gorm.DB, characters []CharacterRecord) (int, error) {
	if err := requireRows(tx, &database.Actor{}, "actors", "actors"); err != nil {
		return 0, err
	}
	if err := requireRows(tx, &database.Movie{}, "movies", "movies"); err != nil {
		return 0, err
	}

	created := 0
	for _, rec := range characters {
		found, err := exists(tx, &database.Character{}, "key = ?", rec.Key)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		character := database.Character{
			ID: rec.ID, Key: rec.Key,
			Translations: []database.CharacterTranslation{
				{NamedTranslation: database.NamedTranslation{Language: types.LanguageUK, Name: rec.NameUK}},
				{NamedTranslation: database.NamedTranslation{Language: types.LanguageEN, Name: rec.NameEN}},
			},
		}
		if err := tx.Create(&character).Error; err != nil {
			return created, fmt.Errorf("character %s: %w", rec.Key, err)
		}

		actors, err := knownIDs(tx, &database.Actor{}, rec.ActorsIDs)
		if err != nil {
			return created, err
		}
		movies, err := knownIDs(tx, &database.Movie{}, rec.MoviesIDs)
		if err != nil {
			return created, err
		}
		knownActor, knownMovie := toSet(actors), toSet(movies)
		for i := 0; i < len(rec.ActorsIDs) && i < len(rec.MoviesIDs); i++ {
			actorID, movieID := rec.ActorsIDs[i], rec.MoviesIDs[i]
			if !knownActor[actorID] || !knownMovie[movieID] {
				continue
			}
			link := database.MovieActorCharacter{MovieID: movieID, ActorID: actorID, CharacterID: character.ID, Order: i + 1}
			if err := tx.Create(&link).Error; err != nil {
				return created, fmt.Errorf("character %s: %w", rec.Key, err)
			}
		}
		created++
	}
	return created, syncSequence(tx, &database.Character{})
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// namedWriter builds the writer for a key/name/description entity
func namedWriter(table string, model interface{}, build func(rec NamedRecord, uk, en database.NamedTranslation) interface{}) func(*gorm.DB, []NamedRecord) (int, error) {
	return func(tx *gorm.DB, items []NamedRecord) (int, error) {
		created := 0
		for _, rec := range items {
			found, err := exists(tx, model, "key = ?", rec.Key)
			if err != nil {
				return created, err
			}
			if found {
				continue
			}
			uk, en := rec.translations()
			if err := tx.Create(build(rec, uk, en)).Error; err != nil {
				return created, fmt.Errorf("%s %s: %w", table, rec.Key, err)
			}
			created++
		}
		return created, syncSequence(tx, model)
	}
}

var (
	writeGenres = namedWriter("genres", &database.Genre{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.Genre{ID: rec.ID, Key: rec.Key, Translations: []database.GenreTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
	writeSpecifications = namedWriter("specifications", &database.Specification{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.Specification{ID: rec.ID, Key: rec.Key, Translations: []database.SpecificationTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
	writeKeywords = namedWriter("keywords", &database.Keyword{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.Keyword{ID: rec.ID, Key: rec.Key, Translations: []database.KeywordTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
	writeActionTimes = namedWriter("action_times", &database.ActionTime{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.ActionTime{ID: rec.ID, Key: rec.Key, Translations: []database.ActionTimeTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
	writeSharedUniverses = namedWriter("shared_universes", &database.SharedUniverse{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.SharedUniverse{ID: rec.ID, Key: rec.Key, Translations: []database.SharedUniverseTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
	writeCriteria = namedWriter("visual_profile_criteria", &database.VisualProfileCriterion{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.VisualProfileCriterion{ID: rec.ID, Key: rec.Key, Translations: []database.VisualProfileCriterionTranslation{{NamedTranslation: uk}, {NamedTranslation: en}}}
	})
)

func writeSubgenres(tx *gorm.DB, items []NamedRecord) (int, error) {
	if err := requireRows(tx, &database.Genre{}, "genres", "genres"); err != nil {
		return 0, err
	}
	write := namedWriter("subgenres", &database.Subgenre{}, func(rec NamedRecord, uk, en database.NamedTranslation) interface{} {
		return &database.Subgenre{
			ID: rec.ID, Key: rec.Key, ParentGenreID: rec.ParentGenreID,
			Translations: []database.SubgenreTranslation{{NamedTranslation: uk}, {NamedTranslation: en}},
		}
	})
	return write(tx, items)
}

func writeCategories(tx *gorm.DB, items []NamedRecord) (int, error) {
	if err := requireRows(tx, &database.VisualProfileCriterion{}, "visual_profile_criteria", "title_criteria"); err != nil {
		return 0, err
	}
	created := 0
	for _, rec := range items {
		found, err := exists(tx, &database.VisualProfileCategory{}, "key = ?", rec.Key)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		ids, err := knownIDs(tx, &database.VisualProfileCriterion{}, rec.CriteriaIDs)
		if err != nil {
			return created, err
		}
		var criteria []database.VisualProfileCriterion
		if len(ids) > 0 {
			if err := tx.Find(&criteria, ids).Error; err != nil {
				return created, err
			}
		}
		uk, en := rec.translations()
		category := database.VisualProfileCategory{
			ID: rec.ID, Key: rec.Key, Criteria: criteria,
			Translations: []database.VisualProfileCategoryTranslation{{NamedTranslation: uk}, {NamedTranslation: en}},
		}
		if err := tx.Create(&category).Error; err != nil {
			return created, fmt.Errorf("category %s: %w", rec.Key, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.VisualProfileCategory{})
}

// writeUsers skips rows whose id or email is already taken
func writeUsers(tx *gorm.DB, users []UserRecord) (int, error) {
	created := 0
	for _, rec := range users {
		query, args := "id = ?", []interface{}{rec.ID}
		if rec.Email != "" {
			query, args = "id = ? OR email = ?", []interface{}{rec.ID, rec.Email}
		}
		found, err := exists(tx, &database.User{}, query, args...)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		user := database.User{
			ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName,
			Email: rec.Email, Role: types.UserRole(rec.Role),
		}
		if err := tx.Create(&user).Error; err != nil {
			return created, fmt.Errorf("user %d: %w", rec.ID, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.User{})
}

// writeRatings upserts by (user, movie) and refreshes the touched movies'
// averages
func writeRatings(tx *gorm.DB, items []RatingRecord) (int, error) {
	written := 0
	touched := map[uint]bool{}
	for _, rec := range items {
		movieOK, err := exists(tx, &database.Movie{}, "id = ?", rec.MovieID)
		if err != nil {
			return written, err
		}
		userOK, err := exists(tx, &database.User{}, "id = ?", rec.UserID)
		if err != nil {
			return written, err
		}
		if !movieOK || !userOK {
			logger.Warn("Rating references unknown movie or user", "id", rec.ID, "movie_id", rec.MovieID, "user_id", rec.UserID)
			continue
		}

		var rating database.Rating
		err = tx.Where("user_id = ? AND movie_id = ?", rec.UserID, rec.MovieID).First(&rating).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec.apply(&rating)
			err = tx.Create(&rating).Error
		case err == nil:
			rec.apply(&rating)
			err = tx.Save(&rating).Error
		}
		if err != nil {
			return written, fmt.Errorf("rating %d: %w", rec.ID, err)
		}
		touched[rec.MovieID] = true
		written++
	}

	for movieID := range touched {
		if err := ratings.ProcessMovieRating(tx.Statement.Context, tx, movieID); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeProfiles(tx *gorm.DB, items []ProfileRecord) (int, error) {
	if err := requireRows(tx, &database.VisualProfileCategory{}, "visual_profile_categories", "title_categories"); err != nil {
		return 0, err
	}
	created := 0
	for _, rec := range items {
		found, err := exists(tx, &database.VisualProfile{}, "movie_id = ? AND user_id = ?", rec.MovieID, rec.UserID)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		profile := database.VisualProfile{ID: rec.ID, MovieID: rec.MovieID, UserID: rec.UserID, CategoryID: rec.CategoryID}
		if err := tx.Create(&profile).Error; err != nil {
			return created, fmt.Errorf("visual profile %d: %w", rec.ID, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.VisualProfile{})
}

func writeProfileRatings(tx *gorm.DB, items []ProfileRatingRecord) (int, error) {
	if err := requireRows(tx, &database.VisualProfile{}, "visual_profiles", "visual_profiles"); err != nil {
		return 0, err
	}
	created := 0
	for _, rec := range items {
		found, err := exists(tx, &database.VisualProfileRating{}, "id = ? OR (profile_id = ? AND criterion_id = ?)", rec.ID, rec.ProfileID, rec.CriterionID)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}
		row := database.VisualProfileRating{
			ID: rec.ID, ProfileID: rec.ProfileID, CriterionID: rec.CriterionID,
			Rating: rec.Rating, Order: rec.Order,
		}
		if err := tx.Create(&row).Error; err != nil {
			return created, fmt.Errorf("visual profile rating %d: %w", rec.ID, err)
		}
		created++
	}
	return created, syncSequence(tx, &database.VisualProfileRating{})
}
