package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Capture and report attendance",
}

var attendanceMarkCmd = &cobra.Command{
	Use:   "mark <session-id-or-code> <image>",
	Short: "Mark attendance from a capture photo",
	Long: `Detect every face in the photo, match each against the enrolled
students and mark the recognized ones present in the session. A student
already marked today is reported, not marked twice.`,
	Args: cobra.ExactArgs(2),
	RunE: runAttendanceMark,
}

var attendanceReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show who was present on a date",
	RunE:  runAttendanceReport,
}

var attendanceStatsCmd = &cobra.Command{
	Use:   "stats <session-id-or-code>",
	Short: "Show per-student attendance percentages for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttendanceStats,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceMarkCmd)
	attendanceCmd.AddCommand(attendanceReportCmd)
	attendanceCmd.AddCommand(attendanceStatsCmd)

	attendanceReportCmd.Flags().String("date", "", "Date to report (YYYY-MM-DD, default today)")
	attendanceReportCmd.Flags().String("session", "", "Restrict to one session (id or code)")
}

func runAttendanceMark(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.findSession(ctx, args[0])
	if err != nil {
		return err
	}
	data, err := loadPhoto(args[1])
	if err != nil {
		return err
	}

	outcomes, err := a.service.MatchAndRecordAll(ctx, session.ID, data)
	if err != nil {
		return err
	}

	marked := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("Face %d: %v\n", o.FaceIndex, o.Err)
		case o.Outcome.AlreadyMarked:
			fmt.Printf("Face %d: %s already marked on %s\n", o.FaceIndex, o.Outcome.Match.Name, o.Outcome.Date)
		default:
			fmt.Printf("Face %d: %s marked present (distance %.3f)\n", o.FaceIndex, o.Outcome.Match.Name, o.Outcome.Match.Distance)
			marked++
		}
	}
	fmt.Printf("\n%d of %d faces newly marked in %s\n", marked, len(outcomes), session.Code)
	return nil
}

func runAttendanceReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	date := mustGetString(cmd, "date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	sessionID := ""
	if ref := mustGetString(cmd, "session"); ref != "" {
		session, err := a.findSession(ctx, ref)
		if err != nil {
			return err
		}
		sessionID = session.ID
	}

	rows, err := a.reporter.DailyReport(ctx, date, sessionID)
	if err != nil {
		return fmt.Errorf("loading report: %w", err)
	}
	if len(rows) == 0 {
		fmt.Printf("No attendance recorded on %s.\n", date)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tROLL\tNAME\tSESSION")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Time, row.RollNumber, row.StudentName, row.SessionCode)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d present on %s\n", len(rows), date)
	return nil
}

func runAttendanceStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.findSession(ctx, args[0])
	if err != nil {
		return err
	}
	stats, err := a.reporter.SessionStats(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("computing statistics: %w", err)
	}

	fmt.Printf("%s (%s): %d classes held\n\n", stats.SessionName, stats.SessionCode, stats.Days)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL\tNAME\tPRESENT\tPERCENT")
	for _, s := range stats.Students {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\n", s.RollNumber, s.StudentName, s.Present, s.Percentage)
	}
	return w.Flush()
}
