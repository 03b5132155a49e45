package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/flock/internal/store"
)

// EnvPrefix prefixes every environment variable bound to a global flag,
// so --db may be given as FLOCK_DB.
const EnvPrefix = "FLOCK"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Driver   string
	User     string
	Password string
	Config   string
	EnvFile  string

	// Clock overrides time.Now (for testing).
	Clock func() time.Time

	// Logger is configured before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flock CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "flock",
		Short: "flock - attendance analytics for church service",
		Long: `Track who attends which activities and see who is drifting away.

flock reads departments, classes, students, servants, activities and
attendance from a SQLite file or a Postgres database. Every command signs in
as a servant and only shows the students that servant may see.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(v, opts); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Logger = setupLogging(opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Database, "db", "", "database path or DSN")
	flags.StringVar(&opts.Driver, "driver", store.DriverSQLite, "database driver (sqlite3|pgx)")
	flags.StringVarP(&opts.User, "user", "u", "", "servant name to sign in as")
	flags.StringVar(&opts.Password, "password", "", "servant password")
	flags.StringVar(&opts.Config, "config", "", "settings file (YAML)")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded when present")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewTrendCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewStudentsCommand(opts))
	cmd.AddCommand(NewRosterCommand(opts))
	cmd.AddCommand(NewRiskCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewTargetsCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewAttendCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadEnv loads the dotenv file, if any, and resolves every global flag
// from the command line first, then FLOCK_* variables, then defaults.
func loadEnv(v *viper.Viper, opts *RootOptions) error {
	path := v.GetString("env-file")
	opts.EnvFile = path
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to stat %s", path), err)
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.Database = v.GetString("db")
	opts.Driver = v.GetString("driver")
	opts.User = v.GetString("user")
	opts.Password = v.GetString("password")
	opts.Config = v.GetString("config")
	return nil
}

// setupLogging installs the default logger: text to w, debug when verbose.
func setupLogging(verbose bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
