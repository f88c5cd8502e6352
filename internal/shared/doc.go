// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and builders for
// catalog tables so that cleaner, analyzer and service tests describe rows by
// field instead of by column position:
//
//	table := testutil.TrackTable(
//	    testutil.Track{ArtistCount: 2, Streams: 1000},
//	    testutil.Track{Set: map[string]any{domain.ColKey: nil}},
//	)
package shared
