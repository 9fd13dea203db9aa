package attendance

import (
	"context"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
)

// StudentStat is one student's attendance rate in a session.
type StudentStat struct {
	StudentID   string
	StudentName string
	RollNumber  string
	Present     int
	Percentage  float64
}

// SessionStats summarizes attendance for one session across every enrolled
// student.
type SessionStats struct {
	SessionID   string
	SessionCode string
	SessionName string
	// Days is the number of distinct dates with at least one record, i.e.
	// the number of classes held.
	Days     int
	Students []StudentStat
}

// DaySummary is the headcount for one calendar date across all sessions.
type DaySummary struct {
	Date     string
	Present  int
	Enrolled int
}

// Reporter answers attendance report and statistics queries.
type Reporter struct {
	records  database.AttendanceRepository
	students database.StudentRepository
	sessions database.SessionRepository
}

// NewReporter creates a reporter over the given repositories.
func NewReporter(records database.AttendanceRepository, students database.StudentRepository, sessions database.SessionRepository) *Reporter {
	return &Reporter{
		records:  records,
		students: students,
		sessions: sessions,
	}
}

// DailyReport returns the attendance rows for a date, optionally filtered to
// one session. An empty sessionID means all sessions.
func (r *Reporter) DailyReport(ctx context.Context, date, sessionID string) ([]database.AttendanceRow, error) {
	return r.records.ListAttendance(ctx, date, sessionID)
}

// StudentHistory returns every attendance row for one student.
func (r *Reporter) StudentHistory(ctx context.Context, studentID string) ([]database.AttendanceRow, error) {
	if _, err := r.students.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return r.records.ListAttendanceByStudent(ctx, studentID)
}

// SessionStats computes the attendance percentage of every enrolled student
// for one session. A student's rate is their recorded days over the number
// of classes held. With no classes held yet every rate is zero.
func (r *Reporter) SessionStats(ctx context.Context, sessionID string) (*SessionStats, error) {
	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	days, err := r.records.CountSessionDays(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("counting session days: %w", err)
	}

	students, err := r.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	stats := &SessionStats{
		SessionID:   session.ID,
		SessionCode: session.Code,
		SessionName: session.Name,
		Days:        days,
		Students:    make([]StudentStat, 0, len(students)),
	}
	for _, st := range students {
		present, err := r.records.CountStudentAttendance(ctx, st.ID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("counting attendance for %s: %w", st.ID, err)
		}
		var pct float64
		if days > 0 {
			pct = float64(present) / float64(days) * 100
		}
		stats.Students = append(stats.Students, StudentStat{
			StudentID:   st.ID,
			StudentName: st.Name,
			RollNumber:  st.RollNumber,
			Present:     present,
			Percentage:  pct,
		})
	}
	return stats, nil
}

// DaySummary returns how many of the enrolled students were seen on a date,
// across all sessions.
func (r *Reporter) DaySummary(ctx context.Context, date string) (*DaySummary, error) {
	present, err := r.records.CountPresentOnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("counting presence: %w", err)
	}
	students, err := r.students.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return &DaySummary{
		Date:     date,
		Present:  present,
		Enrolled: len(students),
	}, nil
}
