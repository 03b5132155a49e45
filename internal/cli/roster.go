package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/risk"
	"github.com/roach88/flock/internal/roster"
	"github.com/roach88/flock/internal/session"
)

// RosterOptions holds flags for the roster command.
type RosterOptions struct {
	*RootOptions
	Department string
	Class      string
	StaleDays  int
}

// RosterResult is the JSON payload of roster.
type RosterResult struct {
	StalenessDays int            `json:"staleness_days"`
	Entries       []roster.Entry `json:"entries"`
}

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RosterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Rank students by how long since they joined a selective activity",
		Long: `Rank every visible student by their last participation in any Selective
activity (retreats, trips). Students who never took part come first with
High priority; those inactive longer than the staleness threshold are
Medium; the rest are Low.

Only a Priest may override the staleness threshold.

Example:
  flock roster -u Maria --password secret --department Youth`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runRoster(opts, cmd, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "limit to one department")
	cmd.Flags().StringVar(&opts.Class, "class", "", "limit to one class")
	cmd.Flags().IntVar(&opts.StaleDays, "stale-days", 0, "override the staleness threshold (Priest only)")

	return cmd
}

func runRoster(opts *RosterOptions, cmd *cobra.Command, sess *session.Session, f *OutputFormatter) error {
	if cmd.Flags().Changed("stale-days") {
		if err := sess.Settings.SetStaleness(sess.Identity.Role, opts.StaleDays); err != nil {
			return invalidSetting(err)
		}
	}
	population, err := population(sess, opts.Department, opts.Class)
	if err != nil {
		return err
	}

	entries, err := roster.Build(population, sess.Snapshot(), sess.Settings, sess.Now())
	if err != nil {
		return err
	}
	res := RosterResult{StalenessDays: sess.Settings.StalenessDays, Entries: entries}
	return f.Render(res, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No students in scope.")
			return
		}
		fmt.Fprintln(w, "RANK\tSTUDENT\tCLASS\tDEPARTMENT\tLAST\tDAYS\tPRIORITY")
		for _, e := range entries {
			last, days := "never", "-"
			if !e.Never() {
				last = e.LastParticipation.Format(model.DateLayout)
				days = fmt.Sprint(*e.DaysSince)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Rank, e.StudentName, e.ClassName, e.DepartmentName, last, days, e.Priority)
		}
	})
}

// RiskOptions holds flags for the risk command.
type RiskOptions struct {
	*RootOptions
	Department string
	Class      string
	Thresholds map[string]int
	Drop       []string
}

// NewRiskCommand creates the risk command.
func NewRiskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RiskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Flag students who never attend or have been absent too long",
		Long: `Evaluate every risk rule (activity and days of absence) over the visible
students. A student is flagged when they never attended a watched activity,
or when their last attendance is more days ago than its threshold. Each
student appears once with all reasons.

Only a Priest may change rules with --threshold or --drop.

Example:
  flock risk -u Daniel --password secret --threshold "Sunday Meeting=14"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runRisk(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "limit to one department")
	cmd.Flags().StringVar(&opts.Class, "class", "", "limit to one class")
	cmd.Flags().StringToIntVar(&opts.Thresholds, "threshold", nil, "set a rule, activity=days (Priest only)")
	cmd.Flags().StringSliceVar(&opts.Drop, "drop", nil, "remove the rule of an activity (Priest only)")

	return cmd
}

func runRisk(opts *RiskOptions, sess *session.Session, f *OutputFormatter) error {
	role := sess.Identity.Role
	for _, name := range opts.Drop {
		if err := sess.Settings.RemoveThreshold(role, name); err != nil {
			return invalidSetting(err)
		}
	}
	names := make([]string, 0, len(opts.Thresholds))
	for name := range opts.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := sess.Settings.SetThreshold(role, name, opts.Thresholds[name]); err != nil {
			return invalidSetting(err)
		}
	}

	population, err := population(sess, opts.Department, opts.Class)
	if err != nil {
		return err
	}
	report, err := risk.Detect(population, sess.Snapshot(), sess.Settings, sess.Now())
	if err != nil {
		return err
	}
	sess.Logger().Info("risk evaluated", "rules", len(report.Rules), "flagged", report.Count())

	return f.Render(report, func(w io.Writer) {
		if len(report.Rules) == 0 {
			fmt.Fprintln(w, "No risk rules configured.")
			return
		}
		if report.Empty() {
			fmt.Fprintln(w, "✓ No student at risk")
			return
		}
		fmt.Fprintf(w, "%d student(s) at risk\n", report.Count())
		fmt.Fprintln(w, "STUDENT\tCLASS\tDEPARTMENT\tREASON")
		for _, fl := range report.Flags {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fl.StudentName, fl.ClassName, fl.DepartmentName, fl.Reason())
		}
	})
}

// population returns the visible students, narrowed by department and
// class names when given.
func population(sess *session.Session, department, class string) ([]join.StudentFull, error) {
	students, err := sess.Population(department)
	if err != nil {
		return nil, err
	}
	if class == "" {
		return students, nil
	}
	c, err := lookupClassIn(sess.Snapshot(), department, class)
	if err != nil {
		return nil, err
	}
	return join.StudentsInClass(students, c.ID), nil
}
