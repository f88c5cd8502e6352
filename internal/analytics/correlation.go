package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"trackstats/pkg/contracts/domain"
)

// Series derived from release_date
const (
	SeriesReleaseYear  = "release_year"
	SeriesReleaseMonth = "release_month"
	SeriesReleaseDay   = "release_day"
)

// ModernReleaseYear is the first year of the restricted year/streams correlation
const ModernReleaseYear = 2015

// MatrixColumns is the fixed column set of the correlation matrix
var MatrixColumns = append(append(
	[]string{domain.ColArtistCount, domain.ColStreams, domain.ColBPM},
	domain.PercentageFeatures...),
	domain.ColTotalPlaylists, domain.ColTotalCharts)

// FeatureTargets are the series every percentage feature is correlated with
var FeatureTargets = []string{domain.ColTotalPlaylists, domain.ColTotalCharts, domain.ColStreams, domain.ColBPM}

// Pearson returns the Pearson coefficient of x and y over the positions where
// both are finite, and the number of such positions. Fewer than two positions
// or a constant series on either side yields NaN.
func Pearson(x, y []float64) (domain.Coefficient, int) {
	if len(x) != len(y) {
		return domain.NaN(), 0
	}

	px := make([]float64, 0, len(x))
	py := make([]float64, 0, len(y))
	for i := range x {
		if complete(x[i], y[i]) {
			px = append(px, x[i])
			py = append(py, y[i])
		}
	}
	n := len(px)
	if n < 2 || constant(px) || constant(py) {
		return domain.NaN(), n
	}

	r := stat.Correlation(px, py, nil)
	if math.IsNaN(r) {
		return domain.NaN(), n
	}
	return domain.Coefficient(math.Max(-1, math.Min(1, r))), n
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func complete(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0) && !math.IsNaN(b) && !math.IsInf(b, 0)
}

// Correlate computes the coefficient of two series over every row
func Correlate(t *domain.Table, x, y string) (domain.Correlation, error) {
	return CorrelateWhere(t, x, y, "", nil)
}

// CorrelateWhere computes the coefficient over the rows for which keep returns
// true. A nil keep selects every row. scope labels the restriction.
func CorrelateWhere(t *domain.Table, x, y, scope string, keep func(i int) bool) (domain.Correlation, error) {
	xs, err := Floats(t, x)
	if err != nil {
		return domain.Correlation{}, err
	}
	ys, err := Floats(t, y)
	if err != nil {
		return domain.Correlation{}, err
	}

	if keep != nil {
		fx, fy := xs[:0:0], ys[:0:0]
		for i := range xs {
			if keep(i) {
				fx = append(fx, xs[i])
				fy = append(fy, ys[i])
			}
		}
		xs, ys = fx, fy
	}

	r, n := Pearson(xs, ys)
	return domain.Correlation{X: x, Y: y, Scope: scope, N: n, Value: r}, nil
}

type correlationSpec struct {
	x, y    string
	minYear int
}

// Correlations computes the fixed list of labeled coefficients in report order
func Correlations(t *domain.Table) ([]domain.Correlation, error) {
	specs := []correlationSpec{
		{x: domain.ColArtistCount, y: domain.ColStreams},
		{x: domain.ColArtistCount, y: domain.ColTotalPlaylists},
		{x: domain.ColArtistCount, y: domain.ColTotalCharts},
		{x: domain.ColBPM, y: domain.ColTotalPlaylists},
		{x: domain.ColBPM, y: domain.ColTotalCharts},
		{x: SeriesReleaseYear, y: domain.ColStreams},
		{x: SeriesReleaseYear, y: domain.ColStreams, minYear: ModernReleaseYear},
		{x: SeriesReleaseMonth, y: domain.ColStreams},
		{x: SeriesReleaseDay, y: domain.ColStreams},
		{x: domain.ColArtistCount, y: domain.ColSpeechiness},
	}
	for _, feature := range domain.PercentageFeatures {
		for _, target := range FeatureTargets {
			specs = append(specs, correlationSpec{x: feature, y: target})
		}
	}

	years, err := Floats(t, SeriesReleaseYear)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Correlation, 0, len(specs))
	for _, spec := range specs {
		var (
			c   domain.Correlation
			err error
		)
		if spec.minYear > 0 {
			since := float64(spec.minYear)
			c, err = CorrelateWhere(t, spec.x, spec.y,
				fmt.Sprintf("%s >= %d", domain.ColReleasedYear, spec.minYear),
				func(i int) bool { return years[i] >= since })
		} else {
			c, err = Correlate(t, spec.x, spec.y)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CorrelationMatrix computes the symmetric matrix over MatrixColumns. The
// diagonal is 1 for every column with nonzero variance and NaN otherwise.
func CorrelationMatrix(t *domain.Table) (domain.CorrelationMatrix, error) {
	columns := make([][]float64, len(MatrixColumns))
	for i, name := range MatrixColumns {
		xs, err := Floats(t, name)
		if err != nil {
			return domain.CorrelationMatrix{}, err
		}
		columns[i] = xs
	}

	k := len(MatrixColumns)
	values := make([][]domain.Coefficient, k)
	for i := range values {
		values[i] = make([]domain.Coefficient, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r, _ := Pearson(columns[i], columns[j])
			if i == j && r.Defined() {
				r = 1
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return domain.CorrelationMatrix{
		Columns: append([]string(nil), MatrixColumns...),
		Values:  values,
	}, nil
}

// Series returns a column, or a release_date component as an int series
func Series(t *domain.Table, name string) (series.Series, error) {
	var part func(time.Time) int
	switch name {
	case SeriesReleaseYear:
		part = time.Time.Year
	case SeriesReleaseMonth:
		part = func(d time.Time) int { return int(d.Month()) }
	case SeriesReleaseDay:
		part = time.Time.Day
	default:
		return t.Series(name)
	}

	dates, err := t.Series(domain.ColReleaseDate)
	if err != nil {
		return series.Series{}, err
	}
	values := make([]int64, dates.Len())
	valid := make([]bool, dates.Len())
	for i := range values {
		text, ok := domain.TextOf(dates.Elem(i))
		if !ok {
			continue
		}
		d, err := time.Parse(domain.DateLayout, text)
		if err != nil {
			continue
		}
		values[i] = int64(part(d))
		valid[i] = true
	}
	return domain.Ints(name, values, valid), nil
}

// Floats returns a series as floats; missing and non-numeric cells become NaN
func Floats(t *domain.Table, name string) ([]float64, error) {
	s, err := Series(t, name)
	if err != nil {
		return nil, err
	}
	return domain.FloatValues(s), nil
}
