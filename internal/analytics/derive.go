package analytics

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/series"

	"trackstats/internal/dataprocessing"
	"trackstats/pkg/contracts/domain"
)

// Materialize adds the derived columns release_date, total_playlists and
// total_charts, replacing them when already present. It returns the number
// of rows whose release date is invalid.
func Materialize(t *domain.Table) (int, error) {
	dates, invalid, err := dataprocessing.BuildReleaseDates(t)
	if err != nil {
		return 0, fmt.Errorf("failed to build release dates: %w", err)
	}

	playlists, err := sumColumns(t, domain.ColTotalPlaylists, domain.PlaylistColumns)
	if err != nil {
		return 0, fmt.Errorf("failed to total playlists: %w", err)
	}
	charts, err := sumColumns(t, domain.ColTotalCharts, domain.ChartColumns)
	if err != nil {
		return 0, fmt.Errorf("failed to total charts: %w", err)
	}

	for _, col := range []series.Series{dates, playlists, charts} {
		if err := t.Set(col); err != nil {
			return 0, err
		}
	}
	return invalid, nil
}

// sumColumns adds columns row by row into a series called name. A missing
// or non-numeric operand makes the row's sum missing. Sums of int columns
// stay ints.
func sumColumns(t *domain.Table, name string, names []string) (series.Series, error) {
	cols := make([]series.Series, len(names))
	allInt := true
	for i, col := range names {
		s, err := t.Series(col)
		if err != nil {
			return series.Series{}, err
		}
		cols[i] = s
		allInt = allInt && s.Type() == series.Int
	}

	isums := make([]int64, t.NumRows())
	fsums := make([]float64, t.NumRows())
	valid := make([]bool, t.NumRows())
	for row := range valid {
		valid[row] = true
		for _, col := range cols {
			e := col.Elem(row)
			f, ok := domain.FloatOf(e)
			if !ok {
				valid[row] = false
				fsums[row] = math.NaN()
				break
			}
			fsums[row] += f
			if allInt {
				n, _ := domain.IntOf(e)
				isums[row] += n
			}
		}
	}

	if allInt {
		return domain.Ints(name, isums, valid), nil
	}
	return domain.Floats(name, fsums), nil
}
