package dataprocessing

import (
	"strings"

	"github.com/go-gota/gota/dataframe"

	"trackstats/pkg/contracts/domain"
)

// previewRows is the number of leading rows copied into a diagnostic report
const previewRows = 5

// Diagnose inspects a table without modifying it
func Diagnose(t *domain.Table, schema *domain.Schema) domain.DiagnosticReport {
	if schema == nil {
		schema = domain.DefaultSchema()
	}

	report := domain.DiagnosticReport{
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		NullCounts:  []domain.NullCount{},
		Duplicates:  CountDuplicates(t),
		ColumnTypes: make([]domain.ColumnInfo, 0, t.NumCols()),
	}

	for _, name := range t.Names() {
		col, _ := t.Series(name)
		nulls := countNaN(col)
		if nulls > 0 {
			report.NullCounts = append(report.NullCounts, domain.NullCount{Column: name, Count: nulls})
		}
		report.ColumnTypes = append(report.ColumnTypes, domain.ColumnInfo{
			Name:     name,
			Storage:  domain.InferStorage(col, schema.TypeOf(name)),
			Semantic: schema.TypeOf(name),
			NonNull:  col.Len() - nulls,
		})
	}

	report.Head = t.Head(previewRows)

	return report
}

// CountDuplicates counts rows identical in every cell to an earlier row
func CountDuplicates(t *domain.Table) int {
	df := t.Frame()
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for i := 0; i < t.NumRows(); i++ {
		key := rowKey(df, i)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// rowKey joins the rendered cells of row i; missing cells get a marker so
// they never collide with empty text
func rowKey(df dataframe.DataFrame, i int) string {
	var b strings.Builder
	for j := 0; j < df.Ncol(); j++ {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		e := df.Elem(i, j)
		if e.IsNA() {
			b.WriteByte(0)
			continue
		}
		b.WriteString(domain.Render(e))
	}
	return b.String()
}
