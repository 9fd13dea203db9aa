// Package attendance records presence: it turns a recognized face into at
// most one attendance record per student, session and day.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/rollcall/internal/database"
)

// DuplicateAttendanceError reports a mark rejected because the student is
// already recorded for that session and date. Single-subject captures surface
// it to the caller; group captures fold it into a benign per-face outcome,
// since the same student showing up twice in one photo is expected.
type DuplicateAttendanceError struct {
	StudentID   string
	StudentName string
	Date        string
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("%s is already marked present on %s", e.StudentName, e.Date)
}

// Ledger writes attendance records. Uniqueness of the (student, session,
// date) key is enforced by the storage layer, so concurrent marks for the
// same student race safely: exactly one insert wins.
type Ledger struct {
	records  database.AttendanceRepository
	students database.StudentRepository
	now      func() time.Time
}

// NewLedger creates a ledger over the given repositories.
func NewLedger(records database.AttendanceRepository, students database.StudentRepository) *Ledger {
	return &Ledger{
		records:  records,
		students: students,
		now:      time.Now,
	}
}

// Mark records the student present in the session for today. Returns
// DuplicateAttendanceError if a record for today already exists.
func (l *Ledger) Mark(ctx context.Context, studentID, sessionID string) (*database.AttendanceRecord, error) {
	now := l.now()
	rec := &database.AttendanceRecord{
		ID:        uuid.NewString(),
		StudentID: studentID,
		SessionID: sessionID,
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		Status:    database.StatusPresent,
		CreatedAt: now.UTC(),
	}

	if err := l.records.InsertAttendance(ctx, rec); err != nil {
		if errors.Is(err, database.ErrAttendanceConflict) {
			return nil, &DuplicateAttendanceError{
				StudentID:   studentID,
				StudentName: l.studentName(ctx, studentID),
				Date:        rec.Date,
			}
		}
		return nil, fmt.Errorf("storing attendance: %w", err)
	}
	return rec, nil
}

// studentName resolves a display name for error messages, falling back to
// the id when the lookup fails. The duplicate outcome must not turn into a
// lookup error.
func (l *Ledger) studentName(ctx context.Context, studentID string) string {
	st, err := l.students.GetStudent(ctx, studentID)
	if err != nil {
		return studentID
	}
	return st.Name
}
