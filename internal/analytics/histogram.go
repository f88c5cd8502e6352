package analytics

import (
	"math"

	"trackstats/pkg/contracts/domain"
)

// HistogramBins is the number of equal-width bins per feature histogram
const HistogramBins = 20

// FeatureHistograms bins every percentage feature column
func FeatureHistograms(t *domain.Table) ([]domain.Histogram, error) {
	out := make([]domain.Histogram, 0, len(domain.PercentageFeatures))
	for _, name := range domain.PercentageFeatures {
		xs, err := Floats(t, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Histogram(name, xs, HistogramBins))
	}
	return out, nil
}

// Histogram splits the finite values of xs into bins of equal width between
// their minimum and maximum. Bins are half-open except the last, which
// includes the maximum. A constant series is centred in a range of width 1.
func Histogram(name string, xs []float64, bins int) domain.Histogram {
	h := domain.Histogram{Column: name, Bins: []domain.HistogramBin{}}
	if bins < 1 {
		return h
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo > hi {
		return h
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	// A range wider than the largest float is binned on scaled values.
	n := float64(bins)
	scaled := math.IsInf(hi-lo, 0)
	width := (hi - lo) / n
	if scaled {
		width = hi/n - lo/n
	}
	edge := func(i int) float64 {
		if scaled {
			f := float64(i) / n
			return lo*(1-f) + hi*f
		}
		return lo + float64(i)*width
	}

	h.Bins = make([]domain.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = edge(i)
		h.Bins[i].Upper = edge(i + 1)
	}
	h.Bins[bins-1].Upper = hi

	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		pos := (x - lo) / width
		if scaled {
			pos = x/width - lo/width
		}
		i := int(pos)
		switch {
		case i < 0:
			i = 0
		case i >= bins:
			i = bins - 1
		}
		h.Bins[i].Count++
	}
	return h
}
