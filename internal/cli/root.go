package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"trackstats/internal/config"
	"trackstats/internal/dataprocessing"
	"trackstats/internal/infrastructure"
	"trackstats/internal/services"
	"trackstats/internal/store"
	"trackstats/internal/validation"
	"trackstats/pkg/contracts"
	"trackstats/pkg/contracts/domain"
)

// RootOptions holds global flags and the state every command shares once
// PersistentPreRunE has loaded it.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	Config *config.Config
	Logger *slog.Logger
}

// ValidLogLevels defines the accepted --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the trackstats CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "trackstats",
		Short:         "trackstats - streaming catalog statistics",
		Long:          "Diagnose, clean and analyze a catalog of popular streaming tracks.",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return infrastructure.CloseLogFile()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides the config")

	// Add subcommands
	cmd.AddCommand(NewDiagnoseCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// setup loads the configuration and builds the logger. Console logs go to
// the command's stderr so they never mix with report output.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.LogLevel != "" && !isOneOf(strings.ToLower(o.LogLevel), ValidLogLevels) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid log level %q: must be one of %v", o.LogLevel, ValidLogLevels))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.LogLevel)
	}

	logger := infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	if cfg.Logging.Output != "console" {
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return WrapExitError(ExitCommandError, "failed to initialize logger", err)
		}
	}

	o.Config = cfg
	o.Logger = logger
	return nil
}

// loadOptions maps the input config onto the loader
func (o *RootOptions) loadOptions() dataprocessing.LoadOptions {
	return dataprocessing.LoadOptions{
		Encoding:  o.Config.Input.Encoding,
		Delimiter: o.Config.Input.DelimiterRune(),
	}
}

// loadInput validates path and decodes it into a raw table. A path that is
// missing or unsupported is a command error; content the loader rejects is
// a pipeline failure.
func (o *RootOptions) loadInput(path string) (*domain.Table, error) {
	if err := o.files().ValidateInputFile(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid input", err)
	}
	table, err := dataprocessing.Load(path, o.loadOptions())
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("failed to read %s", path), err)
	}
	return table, nil
}

func (o *RootOptions) files() *validation.FileValidator {
	return validation.NewFileValidator(o.Logger)
}

// openStore opens the run history, or returns a command error when storage
// is disabled
func (o *RootOptions) openStore() (*store.SQLiteStore, error) {
	if !o.Config.Storage.Enabled {
		return nil, NewExitError(ExitCommandError, "run storage is disabled in the configuration")
	}
	st, err := store.NewSQLiteStore(o.Config.Storage.DatabasePath, o.Logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open run store", err)
	}
	return st, nil
}

// newService builds an analysis service, persisting runs when st is not nil
func (o *RootOptions) newService(st store.RunStore) *services.AnalysisService {
	var opts []services.Option
	if st != nil {
		opts = append(opts, services.WithStore(st))
	}
	return services.NewAnalysisService(o.Logger, opts...)
}

// isOneOf checks if value is one of the allowed values.
func isOneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func validateFormat(format string) error {
	if !isOneOf(format, ValidFormats) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats))
	}
	return nil
}
