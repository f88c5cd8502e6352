package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/go-gota/gota/series"

	"trackstats/pkg/contracts/domain"
)

// CatalogColumns is the column order of the published track catalog
var CatalogColumns = []string{
	domain.ColTrackName,
	domain.ColArtistName,
	domain.ColArtistCount,
	domain.ColReleasedYear,
	domain.ColReleasedMonth,
	domain.ColReleasedDay,
	domain.ColSpotifyPlaylists,
	domain.ColSpotifyCharts,
	domain.ColStreams,
	domain.ColApplePlaylists,
	domain.ColAppleCharts,
	domain.ColDeezerPlaylists,
	domain.ColDeezerCharts,
	domain.ColShazamCharts,
	domain.ColBPM,
	domain.ColKey,
	domain.ColMode,
	domain.ColDanceability,
	domain.ColValence,
	domain.ColEnergy,
	domain.ColAcousticness,
	domain.ColInstrumentalness,
	domain.ColLiveness,
	domain.ColSpeechiness,
}

// Track is one catalog row. Zero identity fields get defaults; Set overrides
// any column by name and a nil override produces a null cell.
type Track struct {
	Name        string
	Artist      string
	ArtistCount int64
	Year        int64
	Month       int64
	Day         int64
	Streams     int64
	BPM         int64
	Key         string
	Mode        string

	SpotifyPlaylists int64
	ApplePlaylists   int64
	DeezerPlaylists  int64
	SpotifyCharts    int64
	AppleCharts      int64
	DeezerCharts     int64
	ShazamCharts     int64

	Danceability     int64
	Valence          int64
	Energy           int64
	Acousticness     int64
	Instrumentalness int64
	Liveness         int64
	Speechiness      int64

	Set map[string]any
}

func (tr Track) cells() map[string]any {
	name, artist := tr.Name, tr.Artist
	if name == "" {
		name = "Track"
	}
	if artist == "" {
		artist = "Artist"
	}
	key, mode := tr.Key, tr.Mode
	if key == "" {
		key = "C#"
	}
	if mode == "" {
		mode = "Major"
	}

	cells := map[string]any{
		domain.ColTrackName:        name,
		domain.ColArtistName:       artist,
		domain.ColArtistCount:      orDefault(tr.ArtistCount, 1),
		domain.ColReleasedYear:     orDefault(tr.Year, 2020),
		domain.ColReleasedMonth:    orDefault(tr.Month, 1),
		domain.ColReleasedDay:      orDefault(tr.Day, 1),
		domain.ColSpotifyPlaylists: tr.SpotifyPlaylists,
		domain.ColSpotifyCharts:    tr.SpotifyCharts,
		domain.ColStreams:          tr.Streams,
		domain.ColApplePlaylists:   tr.ApplePlaylists,
		domain.ColAppleCharts:      tr.AppleCharts,
		domain.ColDeezerPlaylists:  tr.DeezerPlaylists,
		domain.ColDeezerCharts:     tr.DeezerCharts,
		domain.ColShazamCharts:     tr.ShazamCharts,
		domain.ColBPM:              orDefault(tr.BPM, 120),
		domain.ColKey:              key,
		domain.ColMode:             mode,
		domain.ColDanceability:     tr.Danceability,
		domain.ColValence:          tr.Valence,
		domain.ColEnergy:           tr.Energy,
		domain.ColAcousticness:     tr.Acousticness,
		domain.ColInstrumentalness: tr.Instrumentalness,
		domain.ColLiveness:         tr.Liveness,
		domain.ColSpeechiness:      tr.Speechiness,
	}
	for k, v := range tr.Set {
		cells[k] = v
	}
	return cells
}

func orDefault(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}

// TrackTable builds a catalog table from tracks
func TrackTable(tracks ...Track) *domain.Table {
	rows := make([][]any, len(tracks))
	for i, tr := range tracks {
		cells := tr.cells()
		row := make([]any, len(CatalogColumns))
		for j, name := range CatalogColumns {
			row[j] = cells[name]
		}
		rows[i] = row
	}
	return TableFromRows(CatalogColumns, rows...)
}

// TableFromRows builds a table from plain Go values. Each column takes the
// type a loader would give it: ints, floats when any float is present, and
// text when any string is present. nil cells are missing. It panics when a
// row does not match the header.
func TableFromRows(names []string, rows ...[]any) *domain.Table {
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cells := make([]any, len(rows))
		for i, row := range rows {
			if len(row) != len(names) {
				panic(fmt.Sprintf("row %d has %d cells, header has %d", i, len(row), len(names)))
			}
			cells[i] = row[j]
		}
		cols[j] = columnOf(name, cells)
	}
	table, err := domain.NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return table
}

func columnOf(name string, cells []any) series.Series {
	typ := series.Int
	for _, cell := range cells {
		switch cell.(type) {
		case nil, int, int64:
		case float64:
			if typ == series.Int {
				typ = series.Float
			}
		case string:
			typ = series.String
		default:
			panic(fmt.Sprintf("unsupported fixture value %T", cell))
		}
	}

	text := make([]string, len(cells))
	for i, cell := range cells {
		switch x := cell.(type) {
		case nil:
			text[i] = "NaN"
		case int:
			text[i] = strconv.Itoa(x)
		case int64:
			text[i] = strconv.FormatInt(x, 10)
		case float64:
			text[i] = strconv.FormatFloat(x, 'g', -1, 64)
		case string:
			text[i] = x
		}
	}
	if typ != series.String {
		return series.New(text, typ, name)
	}
	valid := make([]bool, len(cells))
	for i, cell := range cells {
		valid[i] = cell != nil
	}
	return domain.Strings(name, text, valid)
}

// Column returns the cells of a column as plain Go values; missing cells are nil
func Column(t *domain.Table, name string) []any {
	col, err := t.Series(name)
	if err != nil {
		return nil
	}
	out := make([]any, col.Len())
	for i := range out {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		switch e.Type() {
		case series.Int:
			out[i], _ = domain.IntOf(e)
		case series.Float:
			out[i] = e.Float()
		default:
			out[i] = e.String()
		}
	}
	return out
}

// CSV renders a table as UTF-8 CSV text with a header row
func CSV(t *domain.Table) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(t.Names())
	for i := 0; i < t.NumRows(); i++ {
		_ = w.Write(t.Row(i))
	}
	w.Flush()
	return buf.Bytes()
}
