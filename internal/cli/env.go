package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/session"
	"github.com/roach88/flock/internal/settings"
	"github.com/roach88/flock/internal/store"
)

// newFormatter builds the formatter for one command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the configured database. Unless create is set, a local
// database file must already exist.
func openStore(opts *RootOptions, create bool) (*store.Store, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database given: set --db or "+EnvPrefix+"_DB")
	}
	if opts.Driver == store.DriverSQLite && !create {
		if _, err := os.Stat(opts.Database); errors.Is(err, fs.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s (run flock init)", opts.Database))
		}
	}

	st, err := store.Open(opts.Driver, opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadSettings returns the settings file named by --config, or defaults.
func loadSettings(opts *RootOptions) (*settings.Settings, error) {
	if opts.Config == "" {
		return settings.Default(), nil
	}
	cfg, err := settings.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	return cfg, nil
}

// openSession opens the store and signs in as --user. The returned close
// function releases the store.
func openSession(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter) (*session.Session, func(), error) {
	if opts.User == "" {
		return nil, nil, NewExitError(ExitCommandError, "no user given: set --user or "+EnvPrefix+"_USER")
	}
	cfg, err := loadSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(opts, false)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}

	sess, err := session.Open(commandContext(cmd), st, session.Login{Name: opts.User, Secret: opts.Password}, session.Options{
		Settings: cfg,
		Logger:   opts.logger(),
		Clock:    opts.Clock,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	f.SessionID = sess.ID
	f.VerboseLog("Signed in as %s (%s), %d visible students", sess.Identity.Name, sess.Identity.Role, len(sess.Visible()))
	return sess, closeStore, nil
}

// withSession runs fn inside a signed-in session and reports any error
// through the formatter.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(sess *session.Session, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)
	sess, done, err := openSession(cmd, opts, f)
	if err != nil {
		return fail(f, err)
	}
	defer done()

	if err := fn(sess, f); err != nil {
		return fail(f, err)
	}
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
