package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"trackstats/internal/errors"
	"trackstats/pkg/contracts/domain"
)

// Supported input encodings
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"
)

// nullTokens are cell spellings read as missing values
var nullTokens = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>"}

func isNullToken(cell string) bool {
	return slices.Contains(nullTokens, cell)
}

// LoadOptions configures how a delimited source is decoded
type LoadOptions struct {
	Encoding  string
	Delimiter rune
}

// DefaultLoadOptions matches the encoding the catalog is published in
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Encoding:  EncodingLatin1,
		Delimiter: ',',
	}
}

// Load reads a .csv or .xlsx file into a raw table
func Load(path string, opts LoadOptions) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open input file", err).WithContext("path", path)
	}
	defer f.Close()

	return Read(filepath.Base(path), f, opts)
}

// Read decodes r according to the extension of name
func Read(name string, r io.Reader, opts LoadOptions) (*domain.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(r, opts)
	case ".xlsx":
		return ReadXLSX(r)
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported input type %q", filepath.Ext(name)), nil)
	}
}

// ReadCSV decodes a delimited source whose first record is the header
func ReadCSV(r io.Reader, opts LoadOptions) (*domain.Table, error) {
	decoded, err := decodingReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header row", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read record", err)
		}
		records = append(records, record)
	}

	return buildTable(header, records)
}

// ReadXLSX reads the first sheet of a workbook whose first row is the header
func ReadXLSX(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("input has no header row", nil)
	}

	slog.Debug("Read workbook sheet",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))

	return buildTable(rows[0], rows[1:])
}

// decodingReader strips a byte order mark and converts latin-1 input to UTF-8
func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}

	switch strings.ToLower(encoding) {
	case "", EncodingLatin1, "iso-8859-1", "latin-1":
		return transform.NewReader(br, charmap.ISO8859_1.NewDecoder()), nil
	case EncodingUTF8, "utf-8":
		return br, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported encoding %q", encoding), nil)
	}
}

// buildTable types every column from its raw cells and loads the records
// into a data frame. A column whose non-null cells are all integers holds
// ints, all numbers holds floats, and anything else keeps every cell as text.
func buildTable(header []string, records [][]string) (*domain.Table, error) {
	names := uniqueNames(header)
	width := len(names)
	if width == 0 {
		return nil, errors.NewParsingError("header row has no columns", nil)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, names)
	for i, record := range records {
		if len(record) > width {
			return nil, errors.NewParsingError(
				fmt.Sprintf("record %d has %d fields, header has %d", i+1, len(record), width), nil)
		}
		row := make([]string, width)
		copy(row, record)
		rows = append(rows, row)
	}

	types := make(map[string]series.Type, width)
	for j, name := range names {
		cells := make([]string, len(records))
		for i := range cells {
			cells[i] = rows[i+1][j]
		}
		types[name] = columnType(cells)
		if types[name] == series.String {
			continue
		}
		for i := range cells {
			rows[i+1][j] = strings.TrimSpace(cells[i])
		}
	}

	if len(records) == 0 {
		cols := make([]series.Series, width)
		for j, name := range names {
			cols[j] = series.New([]string{}, types[name], name)
		}
		return domain.NewTable(cols...)
	}

	df := dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
		dataframe.NaNValues(nullTokens),
	)
	table, err := domain.FromFrame(df)
	if err != nil {
		return nil, errors.NewParsingError("failed to load records", err)
	}
	return table, nil
}

// columnType picks the narrowest type holding every non-null cell
func columnType(cells []string) series.Type {
	integral := true
	for _, cell := range cells {
		if isNullToken(cell) {
			continue
		}
		_, isInt, ok := ParseNumber(cell)
		if !ok {
			return series.String
		}
		integral = integral && isInt
	}
	if integral {
		return series.Int
	}
	return series.Float
}

// numericColumn converts text cells to an Int series when every parsed cell
// is an integer literal, and to a Float series otherwise. Null tokens and
// cells that do not parse become missing.
func numericColumn(name string, cells []string) series.Series {
	canon := make([]string, len(cells))
	integral := true
	for i, cell := range cells {
		canon[i] = "NaN"
		if isNullToken(cell) {
			continue
		}
		v, isInt, ok := ParseNumber(cell)
		if !ok {
			continue
		}
		if isInt {
			canon[i] = strings.TrimSpace(cell)
			continue
		}
		integral = false
		canon[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if integral {
		return series.New(canon, series.Int, name)
	}
	return series.New(canon, series.Float, name)
}

// ParseNumber parses a decimal integer or float literal. Surrounding
// whitespace is ignored; thousands separators are not accepted. integral
// reports a plain integer literal.
func ParseNumber(s string) (value float64, integral bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_pP") {
		return 0, false, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, false
	}
	return f, false, true
}

// uniqueNames trims the header and suffixes repeated names with .1, .2, ...
func uniqueNames(header []string) []string {
	seen := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}
