package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/session"
	"github.com/roach88/flock/internal/trend"
)

// TrendResult is the JSON payload of the trend commands.
type TrendResult struct {
	Subject string       `json:"subject"`
	Months  []string     `json:"months"`
	Series  trend.Series `json:"series"`
}

// NewTrendCommand creates the trend command group.
func NewTrendCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Chart monthly attendance of a student or of a department's classes",
	}
	cmd.AddCommand(newTrendStudentCommand(rootOpts))
	cmd.AddCommand(newTrendClassCommand(rootOpts))
	return cmd
}

func newTrendStudentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "student <name>",
		Short: "Monthly attendance of one student per activity",
		Long: `Count one student's attendance per activity for every month from their
first attendance through the current month. Months without attendance show
zero.

Example:
  flock trend student Sara -u George --password secret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				st, err := lookupStudent(sess.Visible(), args[0])
				if err != nil {
					return err
				}
				s := trend.StudentTrend(sess.Attendance(), st.StudentID, trend.Horizon{Now: sess.Now()})
				return renderSeries(f, st.StudentName, s)
			})
		},
	}
}

// TrendClassOptions holds flags for trend class.
type TrendClassOptions struct {
	*RootOptions
	Department string
	Activity   string
	From       string
}

func newTrendClassCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrendClassOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "class",
		Short: "Monthly attendance of one activity per class of a department",
		Long: `Count attendance of one activity for every class of a department, month
by month. The chart starts at the department's first attendance of the
activity unless --from is given.

Example:
  flock trend class --department Youth --activity "Sunday Meeting" -u Maria --password secret`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runTrendClass(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "department (required)")
	cmd.Flags().StringVar(&opts.Activity, "activity", "", "activity (required)")
	cmd.Flags().StringVar(&opts.From, "from", "", "first month, YYYY-MM")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func runTrendClass(opts *TrendClassOptions, sess *session.Session, f *OutputFormatter) error {
	snap := sess.Snapshot()
	dep, err := lookupDepartment(snap, opts.Department)
	if err != nil {
		return err
	}
	act, err := lookupActivity(snap, opts.Activity)
	if err != nil {
		return err
	}
	h := trend.Horizon{Now: sess.Now()}
	if opts.From != "" {
		m, err := model.ParseMonth(opts.From)
		if err != nil {
			return fmt.Errorf("%w: %v", session.ErrInvalid, err)
		}
		h.Start = m.Start()
	}

	s := trend.ClassTrend(visibleRows(sess), snap, dep.ID, act.ID, h)
	return renderSeries(f, fmt.Sprintf("%s / %s", dep.Name, act.Name), s)
}

// renderSeries prints one row per month and one column per category.
func renderSeries(f *OutputFormatter, subject string, s trend.Series) error {
	res := TrendResult{Subject: subject, Months: s.Labels(), Series: s}
	return f.Render(res, func(w io.Writer) {
		if s.Empty() {
			fmt.Fprintf(w, "%s: no attendance recorded\n", subject)
			return
		}
		fmt.Fprintln(w, subject)
		fmt.Fprintf(w, "MONTH\t%s\n", strings.ToUpper(strings.Join(s.Categories, "\t")))
		for _, m := range s.Months {
			cells := make([]string, len(s.Categories))
			for i, c := range s.Categories {
				cells[i] = fmt.Sprint(s.Count(m, c))
			}
			fmt.Fprintf(w, "%s\t%s\n", m.Label(), strings.Join(cells, "\t"))
		}
	})
}

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Department string
	Activity   string
	Month      string
	Classes    []string
}

// CompareResult is the JSON payload of compare.
type CompareResult struct {
	Department string                  `json:"department"`
	Activity   string                  `json:"activity"`
	Month      string                  `json:"month"`
	Classes    []trend.ClassComparison `json:"classes"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare classes of a department for one activity and month",
		Long: `Show each class's attendance of an activity in a month next to its
enrolment and participation rate. Classes without attendance are included.

Example:
  flock compare --department Youth --activity "Sunday Meeting" --month 2026-10 -u Maria --password secret`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runCompare(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "department (required)")
	cmd.Flags().StringVar(&opts.Activity, "activity", "", "activity (required)")
	cmd.Flags().StringVar(&opts.Month, "month", "", "month, YYYY-MM (default current)")
	cmd.Flags().StringSliceVar(&opts.Classes, "class", nil, "classes to compare (default all)")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func runCompare(opts *CompareOptions, sess *session.Session, f *OutputFormatter) error {
	snap := sess.Snapshot()
	dep, err := lookupDepartment(snap, opts.Department)
	if err != nil {
		return err
	}
	act, err := lookupActivity(snap, opts.Activity)
	if err != nil {
		return err
	}
	month, err := parseMonth(opts.Month, sess)
	if err != nil {
		return err
	}
	var classIDs []int64
	for _, name := range opts.Classes {
		c, err := lookupClass(snap, name, dep.ID)
		if err != nil {
			return err
		}
		classIDs = append(classIDs, c.ID)
	}

	res := CompareResult{
		Department: dep.Name,
		Activity:   act.Name,
		Month:      month.Label(),
		Classes:    trend.CompareClasses(visibleRows(sess), sess.Visible(), snap, dep.ID, act.ID, month, classIDs),
	}
	return f.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s / %s / %s\n", res.Department, res.Activity, res.Month)
		fmt.Fprintln(w, "CLASS\tATTENDANCE\tSTUDENTS\tPARTICIPATION")
		for _, c := range res.Classes {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", c.ClassName, c.Attendance, c.Students, c.Participation)
		}
	})
}

// StudentsOptions holds flags for the students command.
type StudentsOptions struct {
	*RootOptions
	Department string
	Class      string
	Activity   string
	Month      string
}

// StudentsResult is the JSON payload of students.
type StudentsResult struct {
	Class    string               `json:"class"`
	Activity string               `json:"activity"`
	Month    string               `json:"month"`
	Students []trend.StudentCount `json:"students"`
}

// NewStudentsCommand creates the students command.
func NewStudentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StudentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "students",
		Short: "Count each student's attendance of an activity in a month",
		Long: `List every student of a class with how often they attended an activity
in a month, most frequent first. Students who never came are listed with 0.

Example:
  flock students --class A --activity "Sunday Meeting" --month 2026-10 -u George --password secret`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runStudents(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "department of --class")
	cmd.Flags().StringVar(&opts.Class, "class", "", "class (required)")
	cmd.Flags().StringVar(&opts.Activity, "activity", "", "activity (required)")
	cmd.Flags().StringVar(&opts.Month, "month", "", "month, YYYY-MM (default current)")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("activity")

	return cmd
}

func runStudents(opts *StudentsOptions, sess *session.Session, f *OutputFormatter) error {
	snap := sess.Snapshot()
	class, err := lookupClassIn(snap, opts.Department, opts.Class)
	if err != nil {
		return err
	}
	act, err := lookupActivity(snap, opts.Activity)
	if err != nil {
		return err
	}
	month, err := parseMonth(opts.Month, sess)
	if err != nil {
		return err
	}

	counts := trend.StudentCounts(visibleRows(sess), sess.Visible(), class.ID, act.ID, month)
	if counts == nil {
		counts = []trend.StudentCount{}
	}
	res := StudentsResult{Class: class.Name, Activity: act.Name, Month: month.Label(), Students: counts}
	return f.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s / %s / %s\n", res.Class, res.Activity, res.Month)
		fmt.Fprintln(w, "STUDENT\tCOUNT")
		for _, s := range res.Students {
			fmt.Fprintf(w, "%s\t%d\n", s.StudentName, s.Count)
		}
	})
}
