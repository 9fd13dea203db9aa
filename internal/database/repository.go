package database

import (
	"context"
)

// StudentRepository provides access to enrolled students.
type StudentRepository interface {
	// CreateStudent inserts a new student. Returns ErrRollNumberConflict if
	// the roll number is already taken.
	CreateStudent(ctx context.Context, s *Student) error
	// GetStudent retrieves a student by id, returns ErrNotFound if absent.
	GetStudent(ctx context.Context, id string) (*Student, error)
	// ListStudents returns all students including their embeddings.
	ListStudents(ctx context.Context) ([]Student, error)
	// DeleteStudent removes a student and cascades to their attendance
	// records. Returns ErrNotFound if the student does not exist.
	DeleteStudent(ctx context.Context, id string) error
}

// SessionRepository provides access to class sessions.
type SessionRepository interface {
	// CreateSession inserts a new session. Returns ErrSessionCodeConflict if
	// the code is already taken.
	CreateSession(ctx context.Context, s *Session) error
	// GetSession retrieves a session by id, returns ErrNotFound if absent.
	GetSession(ctx context.Context, id string) (*Session, error)
	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]Session, error)
	// DeleteSession removes a session and cascades to its attendance
	// records. Returns ErrNotFound if the session does not exist.
	DeleteSession(ctx context.Context, id string) error
}

// AttendanceRepository provides access to attendance records. Insertion is
// conflict-checked by the storage engine: of N concurrent inserts for the
// same (student, session, date) key exactly one succeeds and the rest
// receive ErrAttendanceConflict.
type AttendanceRepository interface {
	// InsertAttendance stores a new record. Returns ErrAttendanceConflict if
	// a record already exists for the (student, session, date) key.
	InsertAttendance(ctx context.Context, rec *AttendanceRecord) error
	// ListAttendance returns joined report rows for a date, optionally
	// filtered by session (empty sessionID means all sessions), ordered by
	// time of day.
	ListAttendance(ctx context.Context, date, sessionID string) ([]AttendanceRow, error)
	// ListAttendanceByStudent returns joined report rows for one student.
	ListAttendanceByStudent(ctx context.Context, studentID string) ([]AttendanceRow, error)
	// CountSessionDays returns the number of distinct dates a session has
	// attendance on, i.e. the number of classes held.
	CountSessionDays(ctx context.Context, sessionID string) (int, error)
	// CountStudentAttendance returns the number of records for a
	// (student, session) pair.
	CountStudentAttendance(ctx context.Context, studentID, sessionID string) (int, error)
	// CountPresentOnDate returns the number of distinct students with a
	// record on the given date, across all sessions.
	CountPresentOnDate(ctx context.Context, date string) (int, error)
}

// Repository is the full persistence surface used by the application.
type Repository interface {
	StudentRepository
	SessionRepository
	AttendanceRepository

	Close() error
}
