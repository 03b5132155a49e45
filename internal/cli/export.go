package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/leaderboard"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/risk"
	"github.com/roach88/flock/internal/roster"
	"github.com/roach88/flock/internal/session"
)

// Sheet names of the exported workbook.
const (
	SheetAttendance  = "Attendance"
	SheetLeaderboard = "Leaderboard"
	SheetRoster      = "Roster"
	SheetRisk        = "Risk"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Department string
}

// ExportResult is the JSON payload of export.
type ExportResult struct {
	Path    string         `json:"path"`
	Sheets  map[string]int `json:"sheets"`
	Skipped []string       `json:"skipped,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write attendance and reports for visible students to a workbook",
		Long: `Write an Excel workbook with one sheet each for the visible attendance,
the all-time leaderboard, the selective-activity roster and the risk report.
Roster and risk are skipped when activities have no type.

Example:
  flock export ./youth.xlsx --department Youth -u Maria --password secret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(sess *session.Session, f *OutputFormatter) error {
				return runExport(opts, args[0], sess, f)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Department, "department", "", "limit to one department")
	return cmd
}

func runExport(opts *ExportOptions, path string, sess *session.Session, f *OutputFormatter) error {
	population, err := sess.Population(opts.Department)
	if err != nil {
		return err
	}
	rows := join.AttendanceOf(sess.Attendance(), join.StudentIDs(population))
	snap, now := sess.Snapshot(), sess.Now()

	sheets := map[string][][]any{
		SheetAttendance:  attendanceSheet(rows),
		SheetLeaderboard: leaderboardSheet(leaderboard.Build(rows, population, leaderboard.AllTime, now, len(population))),
	}
	order := []string{SheetAttendance, SheetLeaderboard}
	var skipped []string

	entries, err := roster.Build(population, snap, sess.Settings, now)
	switch {
	case model.IsPreconditionError(err):
		skipped = append(skipped, SheetRoster, SheetRisk)
		sess.Logger().Warn("export skips typed reports", "error", err)
	case err != nil:
		return err
	default:
		report, err := risk.Detect(population, snap, sess.Settings, now)
		if err != nil {
			return err
		}
		sheets[SheetRoster] = rosterSheet(entries)
		sheets[SheetRisk] = riskSheet(report)
		order = append(order, SheetRoster, SheetRisk)
	}

	if err := writeWorkbook(path, order, sheets); err != nil {
		return WrapExitError(ExitFailure, "failed to write workbook", err)
	}

	res := ExportResult{Path: path, Sheets: make(map[string]int, len(order)), Skipped: skipped}
	for _, name := range order {
		res.Sheets[name] = len(sheets[name]) - 1
	}
	sess.Logger().Info("workbook exported", "path", path, "sheets", len(order))
	return f.Render(res, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Exported %s\n", path)
		fmt.Fprintln(w, "SHEET\tROWS")
		for _, name := range order {
			fmt.Fprintf(w, "%s\t%d\n", name, res.Sheets[name])
		}
		for _, name := range skipped {
			fmt.Fprintf(w, "%s\tskipped (activities have no type)\n", name)
		}
	})
}

// writeWorkbook writes each sheet, header row first, in order.
func writeWorkbook(path string, order []string, sheets map[string][][]any) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	for i, name := range order {
		if i == 0 {
			if err := wb.SetSheetName(wb.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return err
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := wb.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
	}
	return wb.SaveAs(path)
}

func attendanceSheet(rows []join.AttendanceFull) [][]any {
	out := [][]any{{"Date", "Student", "Activity", "Type", "Class", "Department"}}
	for _, r := range rows {
		out = append(out, []any{r.Date.Format(model.DateLayout), r.StudentName, r.ActivityName, string(r.ActivityType), r.ClassName, r.DepartmentName})
	}
	return out
}

func leaderboardSheet(b leaderboard.Board) [][]any {
	out := [][]any{{"Rank", "Student", "Class", "Total"}}
	for _, e := range b.Entries {
		out = append(out, []any{e.Rank, e.StudentName, e.ClassName, e.Total})
	}
	return out
}

func rosterSheet(entries []roster.Entry) [][]any {
	out := [][]any{{"Rank", "Student", "Class", "Department", "Last participation", "Days since", "Priority"}}
	for _, e := range entries {
		last, days := any(""), any("")
		if !e.Never() {
			last, days = e.LastParticipation.Format(model.DateLayout), *e.DaysSince
		}
		out = append(out, []any{e.Rank, e.StudentName, e.ClassName, e.DepartmentName, last, days, string(e.Priority)})
	}
	return out
}

func riskSheet(r risk.Report) [][]any {
	out := [][]any{{"Student", "Class", "Department", "Reason"}}
	for _, fl := range r.Flags {
		out = append(out, []any{fl.StudentName, fl.ClassName, fl.DepartmentName, fl.Reason()})
	}
	return out
}
