package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trackstats/internal/exporter"
	"trackstats/internal/store"
	"trackstats/pkg/contracts/domain"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Format  string
	XLSX    string
	CSV     bool
	CSVDir  string
	NoStore bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run diagnostics, cleaning and analysis over a catalog",
		Long: `Run the full pipeline over a catalog and print the report.

The run is stored in the run history unless --no-store is given or storage
is disabled. --xlsx writes the report as a workbook with one sheet per
series; --csv writes one CSV file per series into the export directory,
which --csv-dir overrides.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json)")
	cmd.Flags().StringVar(&opts.XLSX, "xlsx", "", "write the report to this .xlsx workbook")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "write every report series as CSV into the export directory")
	cmd.Flags().StringVar(&opts.CSVDir, "csv-dir", "", "directory for CSV series (implies --csv)")
	cmd.Flags().BoolVar(&opts.NoStore, "no-store", false, "do not save the run in the run history")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions, path string) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	if err := opts.validateOutputs(); err != nil {
		return err
	}

	table, err := opts.loadInput(path)
	if err != nil {
		return err
	}

	var runStore store.RunStore
	if !opts.NoStore && opts.Config.Storage.Enabled {
		st, err := opts.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		runStore = st
	}

	result, err := opts.newService(runStore).Run(cmd.Context(), filepath.Base(path), table)
	if err != nil {
		return WrapExitError(ExitFailure, "analysis failed", err)
	}

	if err := writeRun(cmd, opts.Format, result); err != nil {
		return err
	}

	if opts.XLSX != "" {
		if err := writeWorkbookFile(opts.XLSX, result); err != nil {
			return WrapExitError(ExitCommandError, "failed to write workbook", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "workbook written to %s\n", opts.XLSX)
	}

	if dir := opts.csvDir(); dir != "" {
		paths, err := exporter.NewCSVWriter(dir, opts.Logger).ExportReport(result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to export CSV series", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d CSV files written to %s\n", len(paths), dir)
	}

	return nil
}

// csvDir returns where CSV series go, or "" when CSV export is off
func (o *AnalyzeOptions) csvDir() string {
	if o.CSVDir != "" {
		return o.CSVDir
	}
	if o.CSV {
		return o.Config.Export.Dir
	}
	return ""
}

// validateOutputs fails before the pipeline runs when an export target is
// not writable
func (o *AnalyzeOptions) validateOutputs() error {
	if o.XLSX != "" {
		if err := o.files().ValidateOutputFile(o.XLSX); err != nil {
			return WrapExitError(ExitCommandError, "invalid workbook path", err)
		}
	}
	if dir := o.csvDir(); dir != "" {
		if err := o.files().ValidateOutputDirectory(dir); err != nil {
			return WrapExitError(ExitCommandError, "invalid CSV directory", err)
		}
	}
	return nil
}

// writeRun prints a run in the requested format
func writeRun(cmd *cobra.Command, format string, result *domain.RunResult) error {
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return exporter.WriteText(cmd.OutOrStdout(), result)
}

func writeWorkbookFile(path string, result *domain.RunResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return exporter.WriteWorkbook(f, result)
}
