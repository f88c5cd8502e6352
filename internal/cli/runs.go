package cli

import (
	"github.com/spf13/cobra"

	"trackstats/internal/exporter"
	"trackstats/internal/store"
)

// RunsOptions holds flags for the runs commands.
type RunsOptions struct {
	*RootOptions
	Format string
	Limit  int
}

// NewRunsCommand creates the runs command and its list and show subcommands.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the stored run history",
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(cmd, opts)
		},
	}
	list.Flags().IntVarP(&opts.Limit, "limit", "n", store.DefaultListLimit, "maximum number of runs to list")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the full report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd, opts, args[0])
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func runRunsList(cmd *cobra.Command, opts *RunsOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}
	if opts.Limit < 1 {
		return NewExitError(ExitCommandError, "--limit must be at least 1")
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	return exporter.WriteRuns(cmd.OutOrStdout(), runs)
}

func runRunsShow(cmd *cobra.Command, opts *RunsOptions, id string) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.GetRun(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load run", err)
	}
	return writeRun(cmd, opts.Format, result)
}
