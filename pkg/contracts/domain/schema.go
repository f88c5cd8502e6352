package domain

import "github.com/go-gota/gota/series"

// SemanticType declares how a column is interpreted by the cleaner and the analyzer
type SemanticType string

const (
	SemanticInteger      SemanticType = "integer"
	SemanticNumeric      SemanticType = "numeric"
	SemanticNoisyNumeric SemanticType = "noisy_numeric"
	SemanticCategorical  SemanticType = "categorical"
	SemanticPercentage   SemanticType = "percentage"
	SemanticText         SemanticType = "text"
	SemanticDate         SemanticType = "date"
)

// StorageType is the physical type observed in a column, named after the
// dtypes a data-frame library would report for the same file.
type StorageType string

const (
	StorageInt64    StorageType = "int64"
	StorageFloat64  StorageType = "float64"
	StorageObject   StorageType = "object"
	StorageDatetime StorageType = "datetime64"
	StorageBool     StorageType = "bool"
)

// Column names of the track catalog
const (
	ColTrackName          = "track_name"
	ColArtistName         = "artist(s)_name"
	ColArtistCount        = "artist_count"
	ColReleasedYear       = "released_year"
	ColReleasedMonth      = "released_month"
	ColReleasedDay        = "released_day"
	ColSpotifyPlaylists   = "in_spotify_playlists"
	ColSpotifyCharts      = "in_spotify_charts"
	ColStreams            = "streams"
	ColApplePlaylists     = "in_apple_playlists"
	ColAppleCharts        = "in_apple_charts"
	ColDeezerPlaylists    = "in_deezer_playlists"
	ColDeezerCharts       = "in_deezer_charts"
	ColShazamCharts       = "in_shazam_charts"
	ColBPM                = "bpm"
	ColKey                = "key"
	ColMode               = "mode"
	ColDanceability       = "danceability_%"
	ColValence            = "valence_%"
	ColEnergy             = "energy_%"
	ColAcousticness       = "acousticness_%"
	ColInstrumentalness   = "instrumentalness_%"
	ColLiveness           = "liveness_%"
	ColSpeechiness        = "speechiness_%"
	ColReleaseDate        = "release_date"
	ColTotalPlaylists     = "total_playlists"
	ColTotalCharts        = "total_charts"
)

// PercentageFeatures lists the audio feature columns in analysis order
var PercentageFeatures = []string{
	ColSpeechiness,
	ColLiveness,
	ColInstrumentalness,
	ColAcousticness,
	ColEnergy,
	ColValence,
	ColDanceability,
}

// PlaylistColumns are summed into total_playlists
var PlaylistColumns = []string{ColSpotifyPlaylists, ColDeezerPlaylists, ColApplePlaylists}

// ChartColumns are summed into total_charts
var ChartColumns = []string{ColSpotifyCharts, ColAppleCharts, ColDeezerCharts, ColShazamCharts}

// NoisyNumericColumns arrive as text with separators and stray characters
var NoisyNumericColumns = []string{ColDeezerPlaylists, ColShazamCharts}

// Schema maps column names to their declared semantic type.
// Columns that are not declared are free-form text.
type Schema struct {
	types map[string]SemanticType
	order []string
}

// NewSchema builds a schema from name/type pairs in declaration order
func NewSchema(decls ...ColumnDecl) *Schema {
	s := &Schema{types: make(map[string]SemanticType, len(decls))}
	for _, d := range decls {
		if _, dup := s.types[d.Name]; !dup {
			s.order = append(s.order, d.Name)
		}
		s.types[d.Name] = d.Type
	}
	return s
}

// ColumnDecl declares one column
type ColumnDecl struct {
	Name string       `json:"name" yaml:"name"`
	Type SemanticType `json:"type" yaml:"type"`
}

// TypeOf returns the declared type of a column, or SemanticText when undeclared
func (s *Schema) TypeOf(name string) SemanticType {
	if t, ok := s.types[name]; ok {
		return t
	}
	return SemanticText
}

// Declared reports whether the column has an explicit declaration
func (s *Schema) Declared(name string) bool {
	_, ok := s.types[name]
	return ok
}

// Columns returns the declared column names in declaration order
func (s *Schema) Columns() []string {
	return append([]string(nil), s.order...)
}

// RequiredColumns lists every column the analysis reads
func RequiredColumns() []string {
	cols := []string{
		ColArtistCount, ColStreams,
		ColSpotifyPlaylists, ColApplePlaylists, ColDeezerPlaylists,
		ColSpotifyCharts, ColAppleCharts, ColDeezerCharts, ColShazamCharts,
		ColBPM, ColKey, ColMode,
		ColReleasedYear, ColReleasedMonth, ColReleasedDay,
	}
	return append(cols, PercentageFeatures...)
}

// DefaultSchema declares the track catalog
func DefaultSchema() *Schema {
	decls := []ColumnDecl{
		{ColTrackName, SemanticText},
		{ColArtistName, SemanticText},
		{ColArtistCount, SemanticInteger},
		{ColReleasedYear, SemanticInteger},
		{ColReleasedMonth, SemanticInteger},
		{ColReleasedDay, SemanticInteger},
		{ColSpotifyPlaylists, SemanticNumeric},
		{ColSpotifyCharts, SemanticNumeric},
		{ColStreams, SemanticNumeric},
		{ColApplePlaylists, SemanticNumeric},
		{ColAppleCharts, SemanticNumeric},
		{ColDeezerPlaylists, SemanticNoisyNumeric},
		{ColDeezerCharts, SemanticNumeric},
		{ColShazamCharts, SemanticNoisyNumeric},
		{ColBPM, SemanticInteger},
		{ColKey, SemanticCategorical},
		{ColMode, SemanticCategorical},
		{ColReleaseDate, SemanticDate},
		{ColTotalPlaylists, SemanticNumeric},
		{ColTotalCharts, SemanticNumeric},
	}
	for _, f := range PercentageFeatures {
		decls = append(decls, ColumnDecl{f, SemanticPercentage})
	}
	return NewSchema(decls...)
}

// InferStorage reports the physical type of a column, named the way a
// data-frame library would report it for the same file. Integer columns
// holding missing values report float64, and text columns declared as
// dates report datetime64.
func InferStorage(s series.Series, semantic SemanticType) StorageType {
	switch s.Type() {
	case series.Int:
		if s.HasNaN() {
			return StorageFloat64
		}
		return StorageInt64
	case series.Float:
		return StorageFloat64
	case series.Bool:
		return StorageBool
	}
	if semantic == SemanticDate {
		return StorageDatetime
	}
	return StorageObject
}
