package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/profile"
	"github.com/roach88/flock/internal/session"
)

// ProfileOptions holds flags for the profile command.
type ProfileOptions struct {
	*RootOptions
	Months     []string
	Activities []string
}

// ProfileResult is the JSON payload of profile.
type ProfileResult struct {
	Profile   profile.Profile   `json:"profile"`
	Breakdown profile.Breakdown `json:"breakdown"`
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profile <student>",
		Short: "Show one student's attendance at a glance",
		Long: `Show a visible student's total attendance, last visit, favourite
activity and how long since each watched activity, followed by counts per
activity and the visit history. --month and --activity narrow the counts and
history; they may be repeated.

Example:
  flock profile Sara -u George --password secret --month 2026-10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runProfile(opts, args[0], sess, f)
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.Months, "month", nil, "only these months, YYYY-MM")
	cmd.Flags().StringSliceVar(&opts.Activities, "activity", nil, "only these activities")

	return cmd
}

func runProfile(opts *ProfileOptions, name string, sess *session.Session, f *OutputFormatter) error {
	st, err := lookupStudent(sess.Visible(), name)
	if err != nil {
		return err
	}
	months, err := monthFlags(opts.Months)
	if err != nil {
		return err
	}

	p := profile.Build(sess.Attendance(), st, sess.Settings, sess.Now())
	b := p.Breakdown(profile.Filter{Months: months, Activities: opts.Activities})

	return f.Render(ProfileResult{Profile: p, Breakdown: b}, func(w io.Writer) {
		fmt.Fprintf(w, "%s (class %s, %s)\n", st.StudentName, st.ClassName, st.DepartmentName)
		fmt.Fprintf(w, "Total attendance\t%d\n", p.Total)
		last := "never"
		if p.LastSeen != nil {
			last = p.LastSeen.Format(model.DateLayout)
		}
		fmt.Fprintf(w, "Last seen\t%s\n", last)
		fmt.Fprintf(w, "Favourite activity\t%s\n", orDash(p.Favourite))
		for _, wt := range p.Watched {
			if wt.Never() {
				fmt.Fprintf(w, "%s\tnever\n", wt.Activity)
				continue
			}
			fmt.Fprintf(w, "%s\t%d days ago\n", wt.Activity, *wt.DaysSince)
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "ACTIVITY\tCOUNT\n")
		for _, c := range b.Counts {
			fmt.Fprintf(w, "%s\t%d\n", c.Activity, c.Count)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DATE\tACTIVITY")
		for _, v := range b.History {
			fmt.Fprintf(w, "%s\t%s\n", v.Date.Format(model.DateLayout), v.Activity)
		}
	})
}

// monthFlags parses repeated --month values.
func monthFlags(values []string) ([]model.Month, error) {
	months := make([]model.Month, 0, len(values))
	for _, v := range values {
		m, err := model.ParseMonth(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", session.ErrInvalid, err)
		}
		months = append(months, m)
	}
	return months, nil
}
