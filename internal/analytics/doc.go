// Package analytics computes the fixed battery of statistics over a cleaned
// track catalog: labeled Pearson correlations, categorical distributions,
// artist-count bucket shares, per-key shares, tempo group means, feature
// histograms and the correlation matrix.
//
// Materialize must run once before any query; it adds release_date,
// total_playlists and total_charts to the table. Every other function is a
// pure read. Analyzer.Analyze runs the whole battery and is the entry point
// used by the services layer.
package analytics
