package sheetsmodule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mantonx/titleseeker/internal/database"
)

// IDColumn marks rows that belong to the export; rows with a blank ID are skipped
const IDColumn = "ID"

// Table is a sheet range whose first row names the columns
type Table struct {
	header map[string]int
	rows   [][]interface{}
}

// NewTable indexes the header row of values
func NewTable(values [][]interface{}) (*Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no data found")
	}
	header := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	if _, ok := header[IDColumn]; !ok {
		return nil, fmt.Errorf("column %q not found in header", IDColumn)
	}
	return &Table{header: header, rows: values[1:]}, nil
}

// Require fails when any of the columns is missing from the header
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.header[c]; !ok {
			return fmt.Errorf("column %q not found in header", c)
		}
	}
	return nil
}

// Has reports whether the header carries column
func (t *Table) Has(column string) bool {
	_, ok := t.header[column]
	return ok
}

// Rows returns the data rows that carry an ID
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.rows))
	for i, cells := range t.rows {
		r := Row{table: t, cells: cells, line: i + 2}
		if r.String(IDColumn) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Row is one data row. Accessors that take a required column return an
// error naming the row and column when the cell is blank or malformed.
type Row struct {
	table *Table
	cells []interface{}
	line  int
}

func (r Row) errorf(column, format string, args ...interface{}) error {
	return fmt.Errorf("row %d, column %s: %s", r.line, column, fmt.Sprintf(format, args...))
}

// String returns the trimmed cell, empty when the row is short
func (r Row) String(column string) string {
	i, ok := r.table.header[column]
	if !ok || i >= len(r.cells) || r.cells[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(r.cells[i]))
}

func (r Row) Required(column string) (string, error) {
	v := r.String(column)
	if v == "" {
		return "", r.errorf(column, "value is missing")
	}
	return v, nil
}

func (r Row) ID(column string) (uint, error) {
	v, err := r.Required(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, r.errorf(column, "%q is not an id", v)
	}
	return uint(n), nil
}

func (r Row) Int(column string) (int64, error) {
	v, err := r.Required(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(v, " ", ""), 10, 64)
	if err != nil {
		return 0, r.errorf(column, "%q is not a number", v)
	}
	return n, nil
}

// Float parses a required decimal; "7,5" and "7.5" are the same value
func (r Row) Float(column string) (float64, error) {
	v, err := r.Required(column)
	if err != nil {
		return 0, err
	}
	return r.float(column, v)
}

// OptionalFloat is Float that yields nil for a blank cell
func (r Row) OptionalFloat(column string) (*float64, error) {
	v := r.String(column)
	if v == "" {
		return nil, nil
	}
	f, err := r.float(column, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r Row) float(column, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, r.errorf(column, "%q is not a decimal", v)
	}
	return f, nil
}

// Date parses a required dd.mm.yyyy cell
func (r Row) Date(column string) (time.Time, error) {
	v, err := r.Required(column)
	if err != nil {
		return time.Time{}, err
	}
	d, err := database.ParseSheetDate(v)
	if err != nil {
		return time.Time{}, r.errorf(column, "%v", err)
	}
	return *d, nil
}

func (r Row) OptionalDate(column string) (*time.Time, error) {
	d, err := database.ParseSheetDate(r.String(column))
	if err != nil {
		return nil, r.errorf(column, "%v", err)
	}
	return d, nil
}

// IDs parses "1, 2, 3". Brackets are tolerated so "[1, 2]" parses too.
func (r Row) IDs(column string) ([]uint, error) {
	v := strings.Trim(r.String(column), "[] ")
	if v == "" {
		return nil, nil
	}
	var out []uint
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, r.errorf(column, "%q is not an id", part)
		}
		out = append(out, uint(n))
	}
	return out, nil
}

var matchPattern = regexp.MustCompile(`\{\s*['"]?(\d+)['"]?\s*:\s*(-?[\d.,]+)\s*\}`)

// Matches parses "[{1: 60}, {4: 40.5}]" into id/percentage pairs
func (r Row) Matches(column string) ([]Match, error) {
	v := r.String(column)
	if v == "" || v == "[]" {
		return nil, nil
	}
	found := matchPattern.FindAllStringSubmatch(v, -1)
	if len(found) == 0 {
		return nil, r.errorf(column, "%q is not a list of {id: percent}", v)
	}
	out := make([]Match, 0, len(found))
	for _, m := range found {
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return nil, r.errorf(column, "%q is not an id", m[1])
		}
		pct, err := r.float(column, m[2])
		if err != nil {
			return nil, err
		}
		out = append(out, Match{ID: uint(id), Percent: pct})
	}
	return out, nil
}

// FormatIDs renders ids the way the sheet stores them
func FormatIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}

// FormatMatches renders pairs back to "[{1: 60}, {4: 40.5}]"
func FormatMatches(ms []Match) string {
	if len(ms) == 0 {
		return ""
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("{%d: %s}", m.ID, strconv.FormatFloat(m.Percent, 'f', -1, 64))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatDate renders t as dd.mm.yyyy, empty for nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(database.SheetDateLayout)
}

func formatOptional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
