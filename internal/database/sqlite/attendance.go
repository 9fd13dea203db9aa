package sqlite

import (
	"context"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
)

// InsertAttendance stores a presence record. The composite UNIQUE index on
// (student_id, session_id, date) makes the insert the only one that can
// ever succeed for that key; the violation maps to ErrAttendanceConflict.
func (s *Store) InsertAttendance(ctx context.Context, rec *database.AttendanceRecord) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO attendance (id, student_id, session_id, date, time, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StudentID,
		rec.SessionID,
		rec.Date,
		rec.Time,
		rec.Status,
		formatTimestamp(rec.CreatedAt),
	)
	if uniqueViolation(err, "attendance.student_id") {
		return database.ErrAttendanceConflict
	}
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

const attendanceRowColumns = `
	SELECT a.id, a.student_id, st.name, st.roll_number,
	       a.session_id, se.code, se.name,
	       a.date, a.time, a.status
	FROM attendance a
	JOIN students st ON st.id = a.student_id
	JOIN sessions se ON se.id = a.session_id
`

// ListAttendance returns joined report rows for a date, optionally filtered
// by session, ordered by time of day.
func (s *Store) ListAttendance(ctx context.Context, date, sessionID string) ([]database.AttendanceRow, error) {
	query := attendanceRowColumns + " WHERE a.date = ?"
	args := []any{date}
	if sessionID != "" {
		query += " AND a.session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY a.time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()
	return scanAttendanceRows(rows)
}

// ListAttendanceByStudent returns joined report rows for one student,
// newest date first.
func (s *Store) ListAttendanceByStudent(ctx context.Context, studentID string) ([]database.AttendanceRow, error) {
	query := attendanceRowColumns + " WHERE a.student_id = ? ORDER BY a.date DESC, a.time"

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query attendance by student: %w", err)
	}
	defer rows.Close()
	return scanAttendanceRows(rows)
}

// CountSessionDays returns the number of distinct dates with attendance for
// a session.
func (s *Store) CountSessionDays(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(DISTINCT date) FROM attendance WHERE session_id = ?",
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session days: %w", err)
	}
	return count, nil
}

// CountStudentAttendance returns the number of records for a
// (student, session) pair.
func (s *Store) CountStudentAttendance(ctx context.Context, studentID, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM attendance WHERE student_id = ? AND session_id = ?",
		studentID, sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count student attendance: %w", err)
	}
	return count, nil
}

// CountPresentOnDate returns the number of distinct students with a record
// on the given date.
func (s *Store) CountPresentOnDate(ctx context.Context, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(DISTINCT student_id) FROM attendance WHERE date = ?",
		date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count present on date: %w", err)
	}
	return count, nil
}

type sqlRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAttendanceRows(rows sqlRows) ([]database.AttendanceRow, error) {
	var result []database.AttendanceRow
	for rows.Next() {
		var r database.AttendanceRow
		if err := rows.Scan(
			&r.RecordID, &r.StudentID, &r.StudentName, &r.RollNumber,
			&r.SessionID, &r.SessionCode, &r.SessionName,
			&r.Date, &r.Time, &r.Status,
		); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}
	return result, nil
}
