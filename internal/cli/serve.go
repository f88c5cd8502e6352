package cli

import (
	"github.com/spf13/cobra"

	"trackstats/internal/app"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Start the HTTP API. Uploads to /api/v1/analyses run the pipeline,
/healthz and /readyz report health and /metrics exposes Prometheus metrics.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port, overrides the config")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	if opts.Port < 0 || opts.Port > 65535 {
		return NewExitError(ExitCommandError, "--port must be between 1 and 65535")
	}
	if opts.Port > 0 {
		opts.Config.Server.Port = opts.Port
	}

	application, err := app.NewApplication(opts.Config, opts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start application", err)
	}
	return application.Run(cmd.Context())
}
