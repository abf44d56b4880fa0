package sheetsmodule

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/types"
)

type field[T any] struct {
	column string
	dst    *T
}

// readAll reads fields in order and stops at the first error
func readAll[T any](read func(string) (T, error), fields []field[T]) error {
	for _, f := range fields {
		v, err := read(f.column)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// Match is an id with its percentage weighting
type Match struct {
	ID      uint    `json:"id"`
	Percent float64 `json:"percentage_match"`
}

// MovieRecord is one row of the Movies sheet
type MovieRecord struct {
	ID              uint      `json:"id"`
	Key             string    `json:"key"`
	TitleUK         string    `json:"title_uk"`
	TitleEN         string    `json:"title_en"`
	DescriptionUK   string    `json:"description_uk"`
	DescriptionEN   string    `json:"description_en"`
	ReleaseDate     time.Time `json:"release_date"`
	Duration        int64     `json:"duration"`
	Budget          int64     `json:"budget"`
	DomesticGross   int64     `json:"domestic_gross"`
	WorldwideGross  int64     `json:"worldwide_gross"`
	Poster          string    `json:"poster"`
	ActorsIDs       []uint    `json:"actors_ids,omitempty"`
	DirectorsIDs    []uint    `json:"directors_ids,omitempty"`
	Genres          []Match   `json:"genres,omitempty"`
	Subgenres       []Match   `json:"subgenres,omitempty"`
	Specifications  []Match   `json:"specifications,omitempty"`
	Keywords        []Match   `json:"keywords,omitempty"`
	ActionTimes     []Match   `json:"action_times,omitempty"`
	LocationUK      string    `json:"location_uk"`
	LocationEN      string    `json:"location_en"`
	RatingCriterion string    `json:"rating_criterion"`
}

func parseMovie(r Row) (MovieRecord, error) {
	var m MovieRecord
	var err error
	if m.ID, err = r.ID(IDColumn); err != nil {
		return m, err
	}
	if err := readAll(r.Required, []field[string]{
		{"title_uk", &m.TitleUK}, {"title_en", &m.TitleEN},
		{"description_uk", &m.DescriptionUK}, {"description_en", &m.DescriptionEN},
	}); err != nil {
		return m, err
	}
	if m.ReleaseDate, err = r.Date("release_date"); err != nil {
		return m, err
	}
	if err := readAll(r.Int, []field[int64]{
		{"duration", &m.Duration}, {"budget", &m.Budget},
		{"domestic_gross", &m.DomesticGross}, {"worldwide_gross", &m.WorldwideGross},
	}); err != nil {
		return m, err
	}

	// Older sheets carry no key column; the English title stands in
	m.Key = r.String("key")
	if m.Key == "" {
		m.Key = slug.Make(m.TitleEN)
	}
	m.Poster = r.String("poster")
	m.LocationUK = r.String("location_uk")
	m.LocationEN = r.String("location_en")
	m.RatingCriterion = r.String("rating_criterion")
	if m.RatingCriterion == "" {
		m.RatingCriterion = string(types.CriterionBasic)
	}
	if _, err := types.ParseRatingCriterion(m.RatingCriterion); err != nil {
		return m, r.errorf("rating_criterion", "%v", err)
	}

	if m.ActorsIDs, err = r.IDs("actors_ids"); err != nil {
		return m, err
	}
	if m.DirectorsIDs, err = r.IDs("directors_ids"); err != nil {
		return m, err
	}
	if err := readAll(r.Matches, []field[[]Match]{
		{"genres_ids_with_percentage_match", &m.Genres},
		{"subgenres_ids_with_percentage_match", &m.Subgenres},
		{"specifications", &m.Specifications},
		{"keywords", &m.Keywords},
		{"action_times", &m.ActionTimes},
	}); err != nil {
		return m, err
	}
	return m, nil
}

func (m MovieRecord) row() []interface{} {
	return []interface{}{
		m.ID, m.Key, m.TitleUK, m.TitleEN, m.DescriptionUK, m.DescriptionEN,
		FormatDate(&m.ReleaseDate), m.Duration, m.Budget, m.DomesticGross, m.WorldwideGross, m.Poster,
		FormatIDs(m.ActorsIDs), FormatIDs(m.DirectorsIDs),
		FormatMatches(m.Genres), FormatMatches(m.Subgenres), FormatMatches(m.Specifications),
		FormatMatches(m.Keywords), FormatMatches(m.ActionTimes),
		m.LocationUK, m.LocationEN, m.RatingCriterion, m.ID,
	}
}

func movieRecord(mv *database.Movie) MovieRecord {
	uk, _ := database.PickTranslation(mv.Translations, types.LanguageUK)
	en, _ := database.PickTranslation(mv.Translations, types.LanguageEN)
	rec := MovieRecord{
		ID: mv.ID, Key: mv.Key,
		TitleUK: uk.Title, TitleEN: en.Title,
		DescriptionUK: uk.Description, DescriptionEN: en.Description,
		ReleaseDate: mv.ReleaseDate, Duration: int64(mv.Duration), Budget: mv.Budget,
		DomesticGross: mv.DomesticGross, WorldwideGross: mv.WorldwideGross, Poster: mv.Poster,
		LocationUK: uk.Location, LocationEN: en.Location,
		RatingCriterion: string(mv.RatingCriterion),
	}
	for _, a := range mv.Actors {
		rec.ActorsIDs = append(rec.ActorsIDs, a.ID)
	}
	for _, d := range mv.Directors {
		rec.DirectorsIDs = append(rec.DirectorsIDs, d.ID)
	}
	for _, g := range mv.GenreMatches {
		rec.Genres = append(rec.Genres, Match{ID: g.GenreID, Percent: g.PercentageMatch})
	}
	for _, s := range mv.SubgenreMatches {
		rec.Subgenres = append(rec.Subgenres, Match{ID: s.SubgenreID, Percent: s.PercentageMatch})
	}
	for _, s := range mv.SpecificationMatches {
		rec.Specifications = append(rec.Specifications, Match{ID: s.SpecificationID, Percent: s.PercentageMatch})
	}
	for _, k := range mv.KeywordMatches {
		rec.Keywords = append(rec.Keywords, Match{ID: k.KeywordID, Percent: k.PercentageMatch})
	}
	for _, a := range mv.ActionTimeMatches {
		rec.ActionTimes = append(rec.ActionTimes, Match{ID: a.ActionTimeID, Percent: a.PercentageMatch})
	}
	return rec
}

// PersonRecord is one row of the Actors or Directors sheet
type PersonRecord struct {
	ID          uint       `json:"id"`
	Key         string     `json:"key"`
	FirstNameUK string     `json:"first_name_uk"`
	LastNameUK  string     `json:"last_name_uk"`
	FirstNameEN string     `json:"first_name_en"`
	LastNameEN  string     `json:"last_name_en"`
	Born        time.Time  `json:"born"`
	Died        *time.Time `json:"died,omitempty"`
	BornInUK    string     `json:"born_in_uk"`
	BornInEN    string     `json:"born_in_en"`
	Avatar      string     `json:"avatar"`
}

func parsePerson(r Row) (PersonRecord, error) {
	var p PersonRecord
	var err error
	if p.ID, err = r.ID(IDColumn); err != nil {
		return p, err
	}
	if err := readAll(r.Required, []field[string]{
		{"key", &p.Key}, {"first_name_uk", &p.FirstNameUK}, {"first_name_en", &p.FirstNameEN},
	}); err != nil {
		return p, err
	}
	if p.Born, err = r.Date("born"); err != nil {
		return p, err
	}
	if p.Died, err = r.OptionalDate("died"); err != nil {
		return p, err
	}
	p.LastNameUK = r.String("last_name_uk")
	p.LastNameEN = r.String("last_name_en")
	p.BornInUK = r.String("born_in_uk")
	p.BornInEN = r.String("born_in_en")
	p.Avatar = r.String("avatar")
	return p, nil
}

func (p PersonRecord) row() []interface{} {
	return []interface{}{
		p.ID, p.Key, p.FirstNameUK, p.LastNameUK, p.FirstNameEN, p.LastNameEN,
		FormatDate(&p.Born), FormatDate(p.Died), p.BornInUK, p.BornInEN, p.Avatar, p.ID,
	}
}

func (p PersonRecord) translations() (uk, en database.PersonTranslation) {
	uk = database.PersonTranslation{Language: types.LanguageUK, FirstName: p.FirstNameUK, LastName: p.LastNameUK, BornIn: p.BornInUK}
	en = database.PersonTranslation{Language: types.LanguageEN, FirstName: p.FirstNameEN, LastName: p.LastNameEN, BornIn: p.BornInEN}
	return uk, en
}

func personRecord(id uint, key string, born time.Time, died *time.Time, avatar string, uk, en database.PersonTranslation) PersonRecord {
	return PersonRecord{
		ID: id, Key: key,
		FirstNameUK: uk.FirstName, LastNameUK: uk.LastName,
		FirstNameEN: en.FirstName, LastNameEN: en.LastName,
		Born: born, Died: died, BornInUK: uk.BornIn, BornInEN: en.BornIn, Avatar: avatar,
	}
}

// CharacterRecord is one row of the Characters sheet. ActorsIDs and
// MoviesIDs are parallel: the i-th actor plays the character in the i-th movie.
type CharacterRecord struct {
	ID        uint   `json:"id"`
	Key       string `json:"key"`
	NameUK    string `json:"name_uk"`
	NameEN    string `json:"name_en"`
	ActorsIDs []uint `json:"actors_ids"`
	MoviesIDs []uint `json:"movies_ids"`
}

func parseCharacter(r Row) (CharacterRecord, error) {
	var c CharacterRecord
	var err error
	if c.ID, err = r.ID(IDColumn); err != nil {
		return c, err
	}
	if err := readAll(r.Required, []field[string]{{"key", &c.Key}, {"name_uk", &c.NameUK}, {"name_en", &c.NameEN}}); err != nil {
		return c, err
	}
	if c.ActorsIDs, err = r.IDs("actors_ids"); err != nil {
		return c, err
	}
	if c.MoviesIDs, err = r.IDs("movies_ids"); err != nil {
		return c, err
	}
	return c, nil
}

func (c CharacterRecord) row() []interface{} {
	return []interface{}{c.ID, c.Key, c.NameUK, c.NameEN, FormatIDs(c.ActorsIDs), FormatIDs(c.MoviesIDs), c.ID}
}

// NamedRecord is a row of any key/name/description sheet: genres,
// specifications, keywords, action times, shared universes, title criteria
// and, with the extra fields set, subgenres and title categories.
type NamedRecord struct {
	ID            uint   `json:"id"`
	Key           string `json:"key"`
	NameUK        string `json:"name_uk"`
	NameEN        string `json:"name_en"`
	DescriptionUK string `json:"description_uk"`
	DescriptionEN string `json:"description_en"`
	ParentGenreID uint   `json:"parent_genre_id,omitempty"`
	CriteriaIDs   []uint `json:"criteria_ids,omitempty"`
}

func parseNamed(r Row) (NamedRecord, error) {
	var n NamedRecord
	var err error
	if n.ID, err = r.ID(IDColumn); err != nil {
		return n, err
	}
	if err := readAll(r.Required, []field[string]{{"key", &n.Key}, {"name_uk", &n.NameUK}, {"name_en", &n.NameEN}}); err != nil {
		return n, err
	}
	n.DescriptionUK = r.String("description_uk")
	n.DescriptionEN = r.String("description_en")
	return n, nil
}

func parseSubgenre(r Row) (NamedRecord, error) {
	n, err := parseNamed(r)
	if err != nil {
		return n, err
	}
	n.ParentGenreID, err = r.ID("parent_genre_id")
	return n, err
}

func parseCategory(r Row) (NamedRecord, error) {
	n, err := parseNamed(r)
	if err != nil {
		return n, err
	}
	if _, err := r.Required("criteria_ids"); err != nil {
		return n, err
	}
	n.CriteriaIDs, err = r.IDs("criteria_ids")
	return n, err
}

func (n NamedRecord) row() []interface{} {
	return []interface{}{n.ID, n.Key, n.NameUK, n.NameEN, n.DescriptionUK, n.DescriptionEN, n.ID}
}

func (n NamedRecord) subgenreRow() []interface{} {
	return []interface{}{n.ID, n.ParentGenreID, n.Key, n.NameUK, n.NameEN, n.DescriptionUK, n.DescriptionEN, n.ID}
}

func (n NamedRecord) categoryRow() []interface{} {
	return []interface{}{n.ID, n.Key, "[" + FormatIDs(n.CriteriaIDs) + "]", n.NameUK, n.NameEN, n.DescriptionUK, n.DescriptionEN, n.ID}
}

func (n NamedRecord) translations() (uk, en database.NamedTranslation) {
	uk = database.NamedTranslation{Language: types.LanguageUK, Name: n.NameUK, Description: n.DescriptionUK}
	en = database.NamedTranslation{Language: types.LanguageEN, Name: n.NameEN, Description: n.DescriptionEN}
	return uk, en
}

func namedRecord(id uint, key string, uk, en database.NamedTranslation) NamedRecord {
	return NamedRecord{
		ID: id, Key: key,
		NameUK: uk.Name, NameEN: en.Name,
		DescriptionUK: uk.Description, DescriptionEN: en.Description,
	}
}

// UserRecord is one row of the Users sheet
type UserRecord struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Email     string `json:"email"`
}

func parseUser(r Row) (UserRecord, error) {
	var u UserRecord
	var err error
	if u.ID, err = r.ID(IDColumn); err != nil {
		return u, err
	}
	if u.FirstName, err = r.Required("first_name"); err != nil {
		return u, err
	}
	u.LastName = r.String("last_name")
	u.Email = r.String("email")
	u.Role = r.String("role")
	switch types.UserRole(u.Role) {
	case "":
		u.Role = string(types.RoleUser)
	case types.RoleUser, types.RoleAdmin, types.RoleOwner:
	default:
		return u, r.errorf("role", "unknown role %q", u.Role)
	}
	return u, nil
}

func (u UserRecord) row() []interface{} {
	return []interface{}{u.ID, u.FirstName, u.LastName, u.Role, u.Email, u.ID}
}

// RatingRecord is one row of the Rating sheet
type RatingRecord struct {
	ID               uint      `json:"id"`
	MovieID          uint      `json:"movie_id"`
	UserID           uint      `json:"user_id"`
	Acting           float64   `json:"acting"`
	PlotStoryline    float64   `json:"plot_storyline"`
	ScriptDialogue   float64   `json:"script_dialogue"`
	Music            float64   `json:"music"`
	Enjoyment        float64   `json:"enjoyment"`
	ProductionDesign float64   `json:"production_design"`
	VisualEffects    *float64  `json:"visual_effects,omitempty"`
	ScareFactor      *float64  `json:"scare_factor,omitempty"`
	Humor            *float64  `json:"humor,omitempty"`
	AnimationCartoon *float64  `json:"animation_cartoon,omitempty"`
	Rating           float64   `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

func parseRating(r Row) (RatingRecord, error) {
	var rt RatingRecord
	var err error
	if rt.ID, err = r.ID(IDColumn); err != nil {
		return rt, err
	}
	if rt.MovieID, err = r.ID("movie_id"); err != nil {
		return rt, err
	}
	if rt.UserID, err = r.ID("user_id"); err != nil {
		return rt, err
	}
	if err := readAll(r.Float, []field[float64]{
		{"acting", &rt.Acting}, {"plot_storyline", &rt.PlotStoryline}, {"script_dialogue", &rt.ScriptDialogue},
		{"music", &rt.Music}, {"enjoyment", &rt.Enjoyment}, {"production_design", &rt.ProductionDesign},
		{"rating", &rt.Rating},
	}); err != nil {
		return rt, err
	}
	if err := readAll(r.OptionalFloat, []field[*float64]{
		{"visual_effects", &rt.VisualEffects}, {"scare_factor", &rt.ScareFactor},
		{"humor", &rt.Humor}, {"animation_cartoon", &rt.AnimationCartoon},
	}); err != nil {
		return rt, err
	}
	rt.Comment = r.String("comment")
	return rt, nil
}

const ratingTimeLayout = "02.01.2006 15:04:05"

func (rt RatingRecord) row() []interface{} {
	return []interface{}{
		rt.ID, rt.MovieID, rt.UserID,
		rt.Acting, rt.PlotStoryline, rt.ScriptDialogue, rt.Music, rt.Enjoyment, rt.ProductionDesign,
		formatOptional(rt.VisualEffects), formatOptional(rt.ScareFactor),
		formatOptional(rt.Humor), formatOptional(rt.AnimationCartoon),
		rt.Rating, rt.Comment,
		rt.CreatedAt.Format(ratingTimeLayout), rt.UpdatedAt.Format(ratingTimeLayout),
		rt.ID,
	}
}

func (rt RatingRecord) apply(dst *database.Rating) {
	dst.MovieID = rt.MovieID
	dst.UserID = rt.UserID
	dst.Rating = rt.Rating
	dst.Comment = rt.Comment
	dst.Acting = rt.Acting
	dst.PlotStoryline = rt.PlotStoryline
	dst.ScriptDialogue = rt.ScriptDialogue
	dst.Music = rt.Music
	dst.Enjoyment = rt.Enjoyment
	dst.ProductionDesign = rt.ProductionDesign
	dst.VisualEffects = rt.VisualEffects
	dst.ScareFactor = rt.ScareFactor
	dst.Humor = rt.Humor
	dst.AnimationCartoon = rt.AnimationCartoon
}

func ratingRecord(r *database.Rating) RatingRecord {
	return RatingRecord{
		ID: r.ID, MovieID: r.MovieID, UserID: r.UserID,
		Acting: r.Acting, PlotStoryline: r.PlotStoryline, ScriptDialogue: r.ScriptDialogue,
		Music: r.Music, Enjoyment: r.Enjoyment, ProductionDesign: r.ProductionDesign,
		VisualEffects: r.VisualEffects, ScareFactor: r.ScareFactor,
		Humor: r.Humor, AnimationCartoon: r.AnimationCartoon,
		Rating: r.Rating, Comment: r.Comment,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// ProfileRecord is one row of the Title Visual Profile sheet
type ProfileRecord struct {
	ID         uint `json:"id"`
	MovieID    uint `json:"movie_id"`
	UserID     uint `json:"user_id"`
	CategoryID uint `json:"category_id"`
}

func parseProfile(r Row) (ProfileRecord, error) {
	var p ProfileRecord
	if err := readAll(r.ID, []field[uint]{
		{IDColumn, &p.ID}, {"movie_id", &p.MovieID}, {"user_id", &p.UserID}, {"category_id", &p.CategoryID},
	}); err != nil {
		return p, err
	}
	return p, nil
}

func (p ProfileRecord) row() []interface{} {
	return []interface{}{p.ID, p.MovieID, p.UserID, p.CategoryID, p.ID}
}

// ProfileRatingRecord is one row of the Title Criterion Rating sheet
type ProfileRatingRecord struct {
	ID          uint `json:"id"`
	ProfileID   uint `json:"title_visual_profile_id"`
	CriterionID uint `json:"criterion_id"`
	Rating      int  `json:"rating"`
	Order       int  `json:"order"`
}

func parseProfileRating(r Row) (ProfileRatingRecord, error) {
	var p ProfileRatingRecord
	var err error
	if err := readAll(r.ID, []field[uint]{
		{IDColumn, &p.ID}, {"title_visual_profile_id", &p.ProfileID}, {"criterion_id", &p.CriterionID},
	}); err != nil {
		return p, err
	}
	rating, err := r.Int("rating")
	if err != nil {
		return p, err
	}
	order, err := r.Int("order")
	if err != nil {
		return p, err
	}
	p.Rating, p.Order = int(rating), int(order)
	return p, nil
}

func (p ProfileRatingRecord) row() []interface{} {
	return []interface{}{p.ID, p.ProfileID, p.CriterionID, p.Rating, p.Order, p.ID}
}
