package domain

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
)

// DateLayout is the canonical rendering of date cells
const DateLayout = "2006-01-02"

// Render formats an element the way it appears in a delimited file.
// Missing elements render as the empty string and floats use their
// shortest exact form.
func Render(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}

// FloatOf returns the value of an int or float element
func FloatOf(e series.Element) (float64, bool) {
	if e.IsNA() {
		return 0, false
	}
	switch e.Type() {
	case series.Int, series.Float:
		return e.Float(), true
	}
	return 0, false
}

// IntOf returns the value of an int element, or of a float element that
// holds an integral value
func IntOf(e series.Element) (int64, bool) {
	f, ok := FloatOf(e)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if e.Type() == series.Int {
		n, err := e.Int()
		return int64(n), err == nil
	}
	return int64(f), true
}

// TextOf returns the content of a string element
func TextOf(e series.Element) (string, bool) {
	if e.IsNA() || e.Type() != series.String {
		return "", false
	}
	return e.String(), true
}

// FloatValues returns the numeric values of s with NaN for missing or
// non-numeric elements
func FloatValues(s series.Series) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		f, ok := FloatOf(s.Elem(i))
		if !ok {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// Ints builds an Int series. Positions where valid is false are missing;
// a nil valid marks every value present.
func Ints(name string, xs []int64, valid []bool) series.Series {
	cells := make([]string, len(xs))
	for i, x := range xs {
		if valid != nil && !valid[i] {
			cells[i] = "NaN"
			continue
		}
		cells[i] = strconv.FormatInt(x, 10)
	}
	return series.New(cells, series.Int, name)
}

// Floats builds a Float series. NaN entries are missing.
func Floats(name string, xs []float64) series.Series {
	cells := make([]string, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			cells[i] = "NaN"
			continue
		}
		cells[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return series.New(cells, series.Float, name)
}

// Strings builds a String series. Positions where valid is false are
// missing; a nil valid marks every value present.
func Strings(name string, xs []string, valid []bool) series.Series {
	cells := make([]interface{}, len(xs))
	for i, x := range xs {
		if valid != nil && !valid[i] {
			continue
		}
		cells[i] = x
	}
	return series.New(cells, series.String, name)
}
