package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/config"
	"github.com/roach88/routines/internal/schedule"
)

// RootOptions holds global flags for all commands and the settings
// resolved from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"; empty defers to the config
	Storage    string // storage directory; empty defers to the config
	ConfigFile string
	DotEnv     string

	// Environment replaces the process environment when non-nil.
	Environment map[string]string

	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for routinectl.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{DotEnv: ".env"})
}

// NewRootCommandWithOptions creates the root command around opts.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routinectl",
		Short: "Manage users and routines in a schedule storage directory",
		Long: `routinectl reads and edits a schedule storage directory holding
index.cfg (users) and routines.cfg (public and personal routines).

Recurring routines are expanded into occurrences when a time range is
listed. Every command locks the directory, applies its change and flushes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Storage, "storage", "s", "", "storage directory")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewRoutineCommand(opts))
	cmd.AddCommand(NewPublicCommand(opts))
	cmd.AddCommand(NewRangeCommand(opts))
	cmd.AddCommand(NewFlushCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// resolve loads the config, lets explicit flags override it and sets up
// logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Sources{
		File:        o.ConfigFile,
		DotEnv:      o.DotEnv,
		Environment: o.Environment,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeInput, "failed to load config", err)
	}

	if o.Format != "" {
		cfg.Format = o.Format
	}
	if o.Storage != "" {
		cfg.Storage = o.Storage
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, ErrCodeInput,
			fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}
	o.Format = cfg.Format
	o.Config = cfg

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) storageDir() (string, error) {
	if o.Config.Storage == "" {
		return "", NewExitError(ExitCommandError, ErrCodeInput,
			"no storage directory: use --storage or "+config.EnvPrefix+"STORAGE")
	}
	return o.Config.Storage, nil
}

// withStore connects a store to the storage directory, runs fn and flushes.
// A flush failure is reported unless fn already failed.
func (o *RootOptions) withStore(fn func(st *schedule.Store) error) error {
	dir, err := o.storageDir()
	if err != nil {
		return err
	}

	storeOpts := []schedule.Option{schedule.WithLogger(o.Logger)}
	if o.Config.Journal {
		storeOpts = append(storeOpts, schedule.WithJournal())
	}
	st, err := schedule.New(storeOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to create store", err)
	}
	if err := st.Connect(dir, false); err != nil {
		return connectError(err)
	}

	fnErr := fn(st)
	if err := st.Close(); err != nil {
		if fnErr != nil {
			o.Logger.Error("flush failed", "error", err)
			return fnErr
		}
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to flush storage", err)
	}
	return fnErr
}

func connectError(err error) *ExitError {
	if errors.Is(err, schedule.ErrStorageCorrupted) {
		return WrapExitError(ExitCommandError, ErrCodeCorrupted, "storage corrupted", err)
	}
	return WrapExitError(ExitCommandError, ErrCodeStorage, "storage not accessible", err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the root command with args and reports any error in the
// configured format. It returns the process exit code.
func Execute(cmd *cobra.Command, opts *RootOptions, args []string) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	format := opts.Format
	if !isValidFormat(format) {
		format = "text"
	}
	f := &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return f.Report(err)
}
