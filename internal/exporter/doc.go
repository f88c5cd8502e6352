// Package exporter renders pipeline results for people and for other tools.
//
// WriteText prints a run as bordered tables for a terminal. ReportSeries
// flattens a run into named series that CSVWriter writes as one file each
// and WriteWorkbook writes as one sheet each. CSVWriter also streams a
// cleaned table to disk.
package exporter
