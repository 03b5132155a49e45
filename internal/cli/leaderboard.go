package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/leaderboard"
	"github.com/roach88/flock/internal/scope"
	"github.com/roach88/flock/internal/session"
	"github.com/roach88/flock/internal/target"
)

// LeaderboardOptions holds flags for the leaderboard command.
type LeaderboardOptions struct {
	*RootOptions
	Period     string
	Department string
	Size       int
}

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LeaderboardOptions{RootOptions: rootOpts}

	periods := make([]string, len(leaderboard.Periods))
	for i, p := range leaderboard.Periods {
		periods[i] = string(p)
	}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank the most faithful attendees of a period",
		Long: fmt.Sprintf(`Rank visible students by total attendance since the start of a period.
Students with no attendance in the period are left out.

Periods: %s

Example:
  flock leaderboard --period last-30 -u Daniel --password secret`, strings.Join(periods, ", ")),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runLeaderboard(opts, cmd, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Period, "period", string(leaderboard.ThisMonth), "ranking period")
	cmd.Flags().StringVar(&opts.Department, "department", "", "limit to one department")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "number of students shown (default from settings)")

	return cmd
}

func runLeaderboard(opts *LeaderboardOptions, cmd *cobra.Command, sess *session.Session, f *OutputFormatter) error {
	period, err := leaderboard.ParsePeriod(opts.Period)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalid, err)
	}
	size := sess.Settings.LeaderboardSize
	if cmd.Flags().Changed("size") {
		if opts.Size < 1 {
			return fmt.Errorf("%w: --size must be positive", session.ErrInvalid)
		}
		size = opts.Size
	}
	population, err := sess.Population(opts.Department)
	if err != nil {
		return err
	}

	board := leaderboard.Build(sess.Attendance(), population, period, sess.Now(), size)
	return f.Render(board, func(w io.Writer) {
		if board.Empty() {
			fmt.Fprintf(w, "No attendance in period %s.\n", board.Period)
			return
		}
		fmt.Fprintln(w, "RANK\tSTUDENT\tCLASS\tTOTAL")
		for _, e := range board.Entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", e.Rank, e.StudentName, e.ClassName, e.Total)
		}
	})
}

// TargetsOptions holds flags for the targets command.
type TargetsOptions struct {
	*RootOptions
	Department string
	Class      string
	Month      string
	Targets    map[string]int
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TargetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Grade a class against the monthly attendance targets",
		Long: `Sum the monthly target of every activity and grade each student of a
class on their attendance that month: Met at or above the total, Partial at
half or more, Behind otherwise.

Servants assigned to a class default to it. Only a Priest may change targets
with --target.

Example:
  flock targets --class A --month 2026-10 -u George --password secret`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runTargets(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "department of --class")
	cmd.Flags().StringVar(&opts.Class, "class", "", "class to grade (default your class)")
	cmd.Flags().StringVar(&opts.Month, "month", "", "month, YYYY-MM (default current)")
	cmd.Flags().StringToIntVar(&opts.Targets, "target", nil, "set a target, activity=count (Priest only)")

	return cmd
}

func runTargets(opts *TargetsOptions, sess *session.Session, f *OutputFormatter) error {
	names := make([]string, 0, len(opts.Targets))
	for name := range opts.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := sess.Settings.SetTarget(sess.Identity.Role, name, opts.Targets[name]); err != nil {
			return invalidSetting(err)
		}
	}

	snap := sess.Snapshot()
	var classID int64
	if opts.Class != "" {
		c, err := lookupClassIn(snap, opts.Department, opts.Class)
		if err != nil {
			return err
		}
		classID = c.ID
	} else if id, ok := scope.AssignedClass(snap, sess.Identity.ServantID); ok {
		classID = id
	} else {
		return NewExitError(ExitCommandError, "--class is required for servants without a class")
	}
	month, err := parseMonth(opts.Month, sess)
	if err != nil {
		return err
	}

	a := target.Analyze(visibleRows(sess), sess.Visible(), snap, sess.Settings, classID, month)
	className := ""
	if c, ok := snap.ClassByID(classID); ok {
		className = c.Name
	}
	return f.Render(a, func(w io.Writer) {
		fmt.Fprintf(w, "Class %s, %s: target %d per student\n", orDash(className), a.Month, a.Total)
		if a.NoTargets() {
			fmt.Fprintln(w, "Every activity target is zero; nobody is graded.")
			return
		}
		fmt.Fprintln(w, "STUDENT\tATTENDANCE\tDELTA\tSTATUS")
		for _, p := range a.Students {
			fmt.Fprintf(w, "%s\t%d\t%+d\t%s\n", p.StudentName, p.Attendance, p.Delta, p.Status)
		}
	})
}
