package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackstats/internal/exporter"
)

// CleanOptions holds flags for the clean command.
type CleanOptions struct {
	*RootOptions
	Output string
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Clean a catalog and print what each step removed",
		Long: `Run the cleaning steps over a raw catalog.

Rows with missing values are dropped, text is trimmed, the noisy numeric
columns are normalized and rows whose streams value is not a number are
removed. With --output the cleaned table is written as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the cleaned table to this CSV file")

	return cmd
}

func runClean(cmd *cobra.Command, opts *CleanOptions, path string) error {
	if opts.Output != "" {
		if err := opts.files().ValidateOutputFile(opts.Output); err != nil {
			return WrapExitError(ExitCommandError, "invalid output", err)
		}
	}

	table, err := opts.loadInput(path)
	if err != nil {
		return err
	}

	cleaned, report, err := opts.newService(nil).Clean(cmd.Context(), table)
	if err != nil {
		return WrapExitError(ExitFailure, "cleaning failed", err)
	}

	if err := exporter.WriteCleaning(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if opts.Output == "" {
		return nil
	}
	if err := exporter.NewCSVWriter("", opts.Logger).WriteTable(opts.Output, cleaned); err != nil {
		return WrapExitError(ExitCommandError, "failed to write cleaned table", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "cleaned table written to %s\n", opts.Output)
	return nil
}
