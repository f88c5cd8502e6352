package dataprocessing

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/series"

	"trackstats/pkg/contracts/domain"
)

// releaseDateLayout parses the joined year-month-day parts
const releaseDateLayout = "2006-1-2"

// BuildReleaseDates derives one date per row from released_year,
// released_month and released_day as a text series in domain.DateLayout.
// Rows whose parts are missing or do not form a calendar date get a
// missing cell; invalid counts those rows.
func BuildReleaseDates(t *domain.Table) (dates series.Series, invalid int, err error) {
	parts := make([]series.Series, 0, 3)
	for _, name := range []string{domain.ColReleasedYear, domain.ColReleasedMonth, domain.ColReleasedDay} {
		col, err := t.Series(name)
		if err != nil {
			return series.Series{}, 0, err
		}
		parts = append(parts, col)
	}

	values := make([]string, t.NumRows())
	valid := make([]bool, t.NumRows())
	for i := range values {
		d, ok := composeDate(parts[0].Elem(i), parts[1].Elem(i), parts[2].Elem(i))
		if !ok {
			invalid++
			continue
		}
		values[i] = d.Format(domain.DateLayout)
		valid[i] = true
	}
	return domain.Strings(domain.ColReleaseDate, values, valid), invalid, nil
}

// composeDate joins the three parts with separators and parses the result
func composeDate(year, month, day series.Element) (time.Time, bool) {
	y, ok := domain.IntOf(year)
	if !ok {
		return time.Time{}, false
	}
	m, ok := domain.IntOf(month)
	if !ok {
		return time.Time{}, false
	}
	d, ok := domain.IntOf(day)
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(releaseDateLayout, fmt.Sprintf("%d-%d-%d", y, m, d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
