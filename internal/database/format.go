package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mantonx/titleseeker/internal/types"
)

// FormatMoney renders whole dollars with thousands separators: $1,234,567
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + "$" + string(out)
}

// FormatDuration renders minutes as "2h 5m" or "2г 5хв"
func FormatDuration(minutes int, lang types.Language) string {
	h, m := minutes/60, minutes%60
	if lang == types.LanguageEN {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dг %dхв", h, m)
}

// FormatDate renders a calendar date as YYYY-MM-DD, empty for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Age counts full years from born until died or now
func Age(born time.Time, died *time.Time, now time.Time) int {
	if born.IsZero() {
		return 0
	}
	end := now
	if died != nil && !died.IsZero() {
		end = *died
	}
	years := end.Year() - born.Year()
	if end.Month() < born.Month() || (end.Month() == born.Month() && end.Day() < born.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// SheetDateLayout is the dd.mm.yyyy layout used by forms and spreadsheets
const SheetDateLayout = "02.01.2006"

// ParseSheetDate parses a dd.mm.yyyy date. An empty string yields nil.
func ParseSheetDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(SheetDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected dd.mm.yyyy", s)
	}
	return &t, nil
}
