package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/memberreg/internal/config"
	"github.com/roach88/memberreg/internal/host"
	"github.com/roach88/memberreg/internal/ir"
	"github.com/roach88/memberreg/internal/store"
)

// RootOptions holds global flags for all commands, and the settings
// resolved from them before any command runs.
type RootOptions struct {
	ConfigPath string
	Database   string
	Sender     string
	Format     string // "json" | "text"
	Verbose    bool

	// Resolved in PersistentPreRunE.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the memberreg CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "memberreg",
		Short: "Owner-managed membership registry",
		Long: `memberreg keeps a list of members, each with a priority, that only
the registry owner may change. State and the transaction log live in a
local SQLite database.

Settings come from defaults, then the --config TOML file (or
$MEMBERREG_CONFIG), then MEMBERREG_* environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to TOML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "memberreg.db", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Sender, "sender", "", "caller identity for mutating commands")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewInstantiateCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads config and applies explicitly set flags on top.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		if o.Database == "" {
			return NewExitError(ExitCommandError, "--db must not be empty")
		}
		cfg.Database = o.Database
	}
	if flags.Changed("sender") {
		cfg.Sender = o.Sender
	}
	if flags.Changed("format") {
		cfg.Format = o.Format
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

// formatter returns an OutputFormatter bound to the command's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// sender returns the configured caller identity.
func (o *RootOptions) sender() (ir.Addr, error) {
	if o.Config.Sender == "" {
		return "", NewExitError(ExitCommandError, "sender is required (use --sender or MEMBERREG_SENDER)")
	}
	return ir.Addr(o.Config.Sender), nil
}

// openHost opens the database and a host over it.
// The returned close function must be called when the command is done.
func (o *RootOptions) openHost(ctx context.Context) (*host.Host, func(), error) {
	o.Logger.Debug("opening database", "path", o.Config.Database)
	st, err := store.Open(o.Config.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			o.Logger.Error("error closing database", "error", err)
		}
	}

	hostOpts := []host.Option{host.WithLogger(o.Logger)}
	if o.Config.TxIDs == config.IDSchemeUUIDv7 {
		hostOpts = append(hostOpts, host.WithTxIDGenerator(host.UUIDv7Generator{}))
	}

	h, err := host.New(ctx, st, hostOpts...)
	if err != nil {
		closeFn()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start host", err)
	}
	return h, closeFn, nil
}

// commandContext returns the command's context, or Background if unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
