package domain

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a required column is absent from a table
var ErrMissingColumn = errors.New("missing column")

// Table is a typed column table backed by a gota DataFrame. Column order is
// preserved. Mutating methods replace the underlying frame, so a Table is not
// safe for concurrent mutation.
type Table struct {
	df dataframe.DataFrame
}

// NewTable builds a table from equally long series. No series gives an
// empty table with no columns.
func NewTable(cols ...series.Series) (*Table, error) {
	if len(cols) == 0 {
		return &Table{}, nil
	}
	return FromFrame(dataframe.New(cols...))
}

// FromFrame wraps a data frame, surfacing the error it carries
func FromFrame(df dataframe.DataFrame) (*Table, error) {
	if err := df.Error(); err != nil {
		return nil, err
	}
	return &Table{df: df}, nil
}

// Frame returns the underlying data frame
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// NumRows returns the row count
func (t *Table) NumRows() int { return t.df.Nrow() }

// NumCols returns the column count
func (t *Table) NumCols() int { return t.df.Ncol() }

// Names returns the column names in order
func (t *Table) Names() []string { return t.df.Names() }

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Series returns a copy of the named column or an error wrapping ErrMissingColumn
func (t *Table) Series(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return t.df.Col(name), nil
}

// Set replaces the column named s.Name or appends it when absent
func (t *Table) Set(s series.Series) error {
	if err := s.Error(); err != nil {
		return fmt.Errorf("column %s: %w", s.Name, err)
	}
	if t.NumCols() == 0 {
		df := dataframe.New(s)
		if err := df.Error(); err != nil {
			return err
		}
		t.df = df
		return nil
	}
	if s.Len() != t.NumRows() {
		return fmt.Errorf("column %s has %d values, table has %d rows", s.Name, s.Len(), t.NumRows())
	}
	df := t.df.Mutate(s)
	if err := df.Error(); err != nil {
		return fmt.Errorf("column %s: %w", s.Name, err)
	}
	t.df = df
	return nil
}

// Subset returns a new table holding the rows marked true
func (t *Table) Subset(keep []bool) (*Table, error) {
	if len(keep) != t.NumRows() {
		return nil, fmt.Errorf("row mask has %d entries, table has %d rows", len(keep), t.NumRows())
	}
	if t.NumCols() == 0 {
		return &Table{}, nil
	}
	return FromFrame(t.df.Subset(keep))
}

// Filter returns a new table holding the rows whose cell in the named
// column satisfies keep
func (t *Table) Filter(name string, keep func(series.Element) bool) (*Table, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	if t.NumRows() == 0 {
		return t.Clone(), nil
	}
	return FromFrame(t.df.Filter(dataframe.F{
		Colname:    name,
		Comparator: series.CompFunc,
		Comparando: keep,
	}))
}

// Clone returns a deep copy that shares no element storage with t
func (t *Table) Clone() *Table {
	if t.NumCols() == 0 {
		return &Table{}
	}
	return &Table{df: t.df.Copy()}
}

// Row renders row i, missing cells as empty strings
func (t *Table) Row(i int) []string {
	row := make([]string, t.NumCols())
	for j := range row {
		row[j] = Render(t.df.Elem(i, j))
	}
	return row
}

// Head renders up to n leading rows
func (t *Table) Head(n int) [][]string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}
