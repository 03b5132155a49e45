package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/flock/internal/dashboard"
	"github.com/roach88/flock/internal/session"
)

// DashboardOptions holds flags for the dashboard command.
type DashboardOptions struct {
	*RootOptions
	Department string
	Class      string
	Kind       string
}

// DashboardResult is the JSON payload of dashboard. Without a department it
// carries the overview; with one, the class distribution and listing.
type DashboardResult struct {
	Overview     *dashboard.Overview `json:"overview,omitempty"`
	Department   string              `json:"department,omitempty"`
	Kind         dashboard.Kind      `json:"kind,omitempty"`
	Distribution []dashboard.Count   `json:"distribution,omitempty"`
	Class        string              `json:"class,omitempty"`
	People       []dashboard.Person  `json:"people,omitempty"`
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DashboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show headcounts across departments and classes",
		Long: `Show table sizes and how students and servants spread over departments.

With --department, break that department down by class and list its
students (or servants, with --kind servants). --class narrows the listing.

Example:
  flock dashboard -u Daniel --password secret
  flock dashboard -u Daniel --password secret --department Youth --kind servants`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runDashboard(opts, sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "department to break down")
	cmd.Flags().StringVar(&opts.Class, "class", "", "class to list (requires --department)")
	cmd.Flags().StringVar(&opts.Kind, "kind", string(dashboard.KindStudents), "students or servants")

	return cmd
}

func runDashboard(opts *DashboardOptions, sess *session.Session, f *OutputFormatter) error {
	snap := sess.Snapshot()

	if opts.Department == "" {
		if opts.Class != "" {
			return NewExitError(ExitCommandError, "--class requires --department")
		}
		ov := dashboard.Summarize(snap)
		return f.Render(DashboardResult{Overview: &ov}, func(w io.Writer) {
			k := ov.KPIs
			fmt.Fprintf(w, "Departments\t%d\n", k.Departments)
			fmt.Fprintf(w, "Classes\t%d\n", k.Classes)
			fmt.Fprintf(w, "Servants\t%d\n", k.Servants)
			fmt.Fprintf(w, "Students\t%d\n", k.Students)
			fmt.Fprintf(w, "Activities\t%d\n", k.Activities)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "DEPARTMENT\tSTUDENTS")
			for _, c := range ov.StudentsPerDepartment {
				fmt.Fprintf(w, "%s\t%d\n", c.Group, c.Count)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "DEPARTMENT\tSERVANTS")
			for _, c := range ov.ServantsPerDepartment {
				fmt.Fprintf(w, "%s\t%d\n", c.Group, c.Count)
			}
		})
	}

	kind, err := dashboard.ParseKind(opts.Kind)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalid, err)
	}
	dep, err := lookupDepartment(snap, opts.Department)
	if err != nil {
		return err
	}
	var classID int64
	if opts.Class != "" {
		c, err := lookupClass(snap, opts.Class, dep.ID)
		if err != nil {
			return err
		}
		classID = c.ID
	}

	res := DashboardResult{
		Department:   dep.Name,
		Kind:         kind,
		Distribution: dashboard.ClassDistribution(snap, dep.ID, kind),
		Class:        opts.Class,
		People:       dashboard.People(snap, dep.ID, classID, kind),
	}
	return f.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s per class\n", res.Department, res.Kind)
		fmt.Fprintln(w, "CLASS\tCOUNT")
		for _, c := range res.Distribution {
			fmt.Fprintf(w, "%s\t%d\n", c.Group, c.Count)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ID\tNAME\tCLASS")
		for _, p := range res.People {
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.ClassName)
		}
	})
}
