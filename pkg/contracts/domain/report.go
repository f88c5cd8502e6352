package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Coefficient is a statistic that may be undefined. NaN marshals to JSON null
// and JSON null unmarshals back to NaN.
type Coefficient float64

// NaN returns the undefined coefficient
func NaN() Coefficient { return Coefficient(math.NaN()) }

// Defined reports whether the coefficient holds a number
func (c Coefficient) Defined() bool { return !math.IsNaN(float64(c)) }

// MarshalJSON implements json.Marshaler
func (c Coefficient) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Coefficient) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Coefficient(f)
	return nil
}

// NullCount is the number of nulls found in one column
type NullCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// ColumnInfo describes one column of an inspected table
type ColumnInfo struct {
	Name     string       `json:"name"`
	Storage  StorageType  `json:"storage"`
	Semantic SemanticType `json:"semantic"`
	NonNull  int          `json:"non_null"`
}

// DiagnosticReport is a read-only inspection of a table
type DiagnosticReport struct {
	Rows        int          `json:"rows"`
	Columns     int          `json:"columns"`
	NullCounts  []NullCount  `json:"null_counts"`
	Duplicates  int          `json:"duplicates"`
	ColumnTypes []ColumnInfo `json:"column_types"`
	Head        [][]string   `json:"head,omitempty"`
}

// TotalNulls sums the reported null counts
func (r DiagnosticReport) TotalNulls() int {
	n := 0
	for _, nc := range r.NullCounts {
		n += nc.Count
	}
	return n
}

// NoisyColumnReport records what normalization did to one noisy numeric column
type NoisyColumnReport struct {
	Name       string `json:"name"`
	Present    bool   `json:"present"`
	Normalized int    `json:"normalized"`
	Nulls      int    `json:"nulls"`
}

// CleaningReport audits every row and cell the cleaner touched
type CleaningReport struct {
	RowsBefore            int                 `json:"rows_before"`
	NullRowsRemoved       int                 `json:"null_rows_removed"`
	TextColumnsTrimmed    int                 `json:"text_columns_trimmed"`
	CellsTrimmed          int                 `json:"cells_trimmed"`
	NoisyColumns          []NoisyColumnReport `json:"noisy_columns"`
	StreamsRowsRemoved    int                 `json:"streams_rows_removed"`
	NumericColumnsCleaned int                 `json:"numeric_columns_cleaned"`
	RowsAfter             int                 `json:"rows_after"`
	Final                 DiagnosticReport    `json:"final"`
}

// RowsRemoved is the total number of rows dropped by cleaning
func (r CleaningReport) RowsRemoved() int {
	return r.NullRowsRemoved + r.StreamsRowsRemoved
}

// Correlation is one labeled Pearson coefficient
type Correlation struct {
	X     string      `json:"x"`
	Y     string      `json:"y"`
	Scope string      `json:"scope,omitempty"`
	N     int         `json:"n"`
	Value Coefficient `json:"value"`
}

// Label names the pair, including the row scope when restricted
func (c Correlation) Label() string {
	label := c.X + " vs " + c.Y
	if c.Scope != "" {
		label += " (" + c.Scope + ")"
	}
	return label
}

// CategoryCount is one bar of a frequency series
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Distribution is a frequency series ordered by category ascending
type Distribution struct {
	Column string          `json:"column"`
	Counts []CategoryCount `json:"counts"`
}

// BucketShare is the share analysis of one artist_count bucket
type BucketShare struct {
	Bucket      string  `json:"bucket"`
	ArtistCount int     `json:"artist_count"`
	Tracks      int     `json:"tracks"`
	TrackShare  float64 `json:"track_share"`
	Streams     float64 `json:"streams"`
	StreamShare float64 `json:"stream_share"`
	MeanStreams float64 `json:"mean_streams"`
}

// BucketReport holds the four named buckets and the rows outside them
type BucketReport struct {
	Buckets          []BucketShare `json:"buckets"`
	TotalTracks      int           `json:"total_tracks"`
	TotalStreams     float64       `json:"total_streams"`
	UnbucketedTracks int           `json:"unbucketed_tracks"`
}

// CategoryShare is the share of each total held by one category value
type CategoryShare struct {
	Category       string  `json:"category"`
	Tracks         int     `json:"tracks"`
	TrackShare     float64 `json:"track_share"`
	StreamsShare   float64 `json:"streams_share"`
	PlaylistsShare float64 `json:"playlists_share"`
	ChartsShare    float64 `json:"charts_share"`
}

// GroupMean is the mean streams of the tracks sharing one tempo
type GroupMean struct {
	BPM         float64 `json:"bpm"`
	Tracks      int     `json:"tracks"`
	MeanStreams float64 `json:"mean_streams"`
}

// HistogramBin is a half-open interval [Lower, Upper); the last bin is closed
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an equal-width histogram of one column
type Histogram struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
}

// CorrelationMatrix is a symmetric grid of Pearson coefficients
type CorrelationMatrix struct {
	Columns []string        `json:"columns"`
	Values  [][]Coefficient `json:"values"`
}

// At returns the coefficient for the named pair
func (m CorrelationMatrix) At(a, b string) (Coefficient, bool) {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return NaN(), false
	}
	return m.Values[i][j], true
}

// AnalysisReport collects every statistic computed over a cleaned table
type AnalysisReport struct {
	Rows                int               `json:"rows"`
	InvalidReleaseDates int               `json:"invalid_release_dates"`
	Correlations        []Correlation     `json:"correlations"`
	Distributions       []Distribution    `json:"distributions"`
	ArtistBuckets       BucketReport      `json:"artist_buckets"`
	KeyShares           []CategoryShare   `json:"key_shares"`
	BPMStreamMeans      []GroupMean       `json:"bpm_stream_means"`
	Histograms          []Histogram       `json:"histograms"`
	Matrix              CorrelationMatrix `json:"correlation_matrix"`
}

// RunResult is the outcome of one end-to-end pipeline run
type RunResult struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	CreatedAt   time.Time        `json:"created_at"`
	Diagnostics DiagnosticReport `json:"diagnostics"`
	Cleaning    CleaningReport   `json:"cleaning"`
	Analysis    AnalysisReport   `json:"analysis"`
}

// RunSummary is the stored header of a run
type RunSummary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	RowsBefore int       `json:"rows_before"`
	RowsAfter  int       `json:"rows_after"`
}
