package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/session"
)

// AttendOptions holds flags for the attend command.
type AttendOptions struct {
	*RootOptions
	Activity string
	Date     string
}

// AttendResult is the JSON payload of attend.
type AttendResult struct {
	Activity string `json:"activity"`
	Date     string `json:"date"`
	Recorded int    `json:"recorded"`
}

// NewAttendCommand creates the attend command.
func NewAttendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "attend [student...]",
		Short: "Record who was present at an activity",
		Long: `Record one attendance per named student of your class. Only servants
assigned to a class may record, and only for students currently in it.
Naming nobody records nothing.

Example:
  flock attend --activity "Sunday Meeting" --date 2026-10-11 Mina Sara -u George --password secret`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runAttend(opts, args, cmd, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Activity, "activity", "", "activity (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "date, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func runAttend(opts *AttendOptions, names []string, cmd *cobra.Command, sess *session.Session, f *OutputFormatter) error {
	act, err := lookupActivity(sess.Snapshot(), opts.Activity)
	if err != nil {
		return err
	}
	date := sess.Now()
	if opts.Date != "" {
		if date, err = model.ParseDate(opts.Date); err != nil {
			return fmt.Errorf("%w: %v", session.ErrInvalid, err)
		}
	}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		st, err := lookupStudent(sess.Students(), name)
		if err != nil {
			return err
		}
		ids = append(ids, st.StudentID)
	}

	n, err := sess.RecordAttendance(commandContext(cmd), session.Entry{ActivityID: act.ID, Date: date, StudentIDs: ids})
	if err != nil {
		return err
	}
	res := AttendResult{Activity: act.Name, Date: model.Truncate(date).Format(model.DateLayout), Recorded: n}
	return f.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Recorded %d attendance(s) for %s on %s\n", res.Recorded, res.Activity, res.Date)
	})
}

// NewActivityCommand creates the activity command group.
func NewActivityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List, add or delete activities",
	}
	cmd.AddCommand(newActivityListCommand(rootOpts))
	cmd.AddCommand(newActivityAddCommand(rootOpts))
	cmd.AddCommand(newActivityDeleteCommand(rootOpts))
	return cmd
}

func newActivityListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List activities",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				acts := sess.Snapshot().Activities
				if acts == nil {
					acts = []model.Activity{}
				}
				return f.Render(acts, func(w io.Writer) {
					fmt.Fprintln(w, "ID\tNAME\tTYPE")
					for _, a := range acts {
						fmt.Fprintf(w, "%d\t%s\t%s\n", a.ID, a.Name, orDash(string(a.Type)))
					}
				})
			})
		},
	}
}

func newActivityAddCommand(rootOpts *RootOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an activity (managers and priests)",
		Long: `Add an activity. Names are trimmed and must not match an existing
activity, ignoring case.

Example:
  flock activity add Choir --type Core -u Maria --password secret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				t, err := model.ParseActivityType(typ)
				if err != nil {
					return fmt.Errorf("%w: %v", session.ErrInvalid, err)
				}
				id, err := sess.AddActivity(commandContext(cmd), args[0], t)
				if err != nil {
					return err
				}
				a, _ := sess.Snapshot().ActivityByID(id)
				return f.Render(a, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Added activity %q (id %d)\n", a.Name, a.ID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(model.ActivityCore), "Core or Selective")
	return cmd
}

func newActivityDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an activity without attendance (managers and priests)",
		Long: `Delete an activity by name. An activity that still has attendance
cannot be deleted.

Example:
  flock activity delete Choir -u Maria --password secret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				if err := sess.DeleteActivity(commandContext(cmd), args[0]); err != nil {
					return err
				}
				res := map[string]string{"deleted": args[0]}
				return f.Render(res, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Deleted activity %q\n", args[0])
				})
			})
		},
	}
}
