package cli

import (
	"github.com/spf13/cobra"

	"trackstats/internal/exporter"
)

// DiagnoseOptions holds flags for the diagnose command.
type DiagnoseOptions struct {
	*RootOptions
	Format string
}

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiagnoseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diagnose <file>",
		Short: "Report shape, missing values, duplicates and column types",
		Long: `Inspect a raw catalog without modifying it.

Prints row and column counts, missing values per column, the number of
duplicate rows and the inferred storage and semantic type of every column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json)")

	return cmd
}

func runDiagnose(cmd *cobra.Command, opts *DiagnoseOptions, path string) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	table, err := opts.loadInput(path)
	if err != nil {
		return err
	}

	report := opts.newService(nil).Diagnose(cmd.Context(), table)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return exporter.WriteDiagnostics(cmd.OutOrStdout(), report)
}
