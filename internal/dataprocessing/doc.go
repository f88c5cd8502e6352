// Package dataprocessing turns a raw track catalog into an analysis-ready table.
//
// # Stages
//
//  1. Loader: decodes a latin-1 or UTF-8 CSV, or the first sheet of a
//     workbook, into a domain.Table with typed cells.
//  2. Diagnose: read-only inspection of shape, nulls, duplicates and column types.
//  3. Cleaner: drops rows with nulls, trims text columns, normalizes the noisy
//     numeric columns and coerces streams, reporting every change.
//  4. BuildReleaseDates: composes a release date per row; rows that do not
//     form a calendar date get a null cell.
//
// # Usage
//
//	raw, err := dataprocessing.Load("spotify-2023.csv", dataprocessing.DefaultLoadOptions())
//	if err != nil {
//	    return err
//	}
//	diag := dataprocessing.Diagnose(raw, domain.DefaultSchema())
//	cleaned, report, err := dataprocessing.NewCleaner(nil, logger).Clean(ctx, raw)
//
// Cleaning never mutates its input. Nulls left by noisy column normalization
// stay in the cleaned table; rows whose streams do not parse are removed.
package dataprocessing
