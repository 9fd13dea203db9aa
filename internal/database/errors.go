package database

import "errors"

// Storage-level sentinels. Backends map their driver-specific conflict and
// not-found signals to these so the domain layer can tell a business rule
// violation apart from a system malfunction. Any other error returned by a
// repository is a storage fault and must be propagated unchanged.
var (
	// ErrNotFound is returned when a student, session or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRollNumberConflict is returned when inserting a student whose roll
	// number is already taken.
	ErrRollNumberConflict = errors.New("roll number already exists")

	// ErrSessionCodeConflict is returned when inserting a session whose code
	// is already taken.
	ErrSessionCodeConflict = errors.New("session code already exists")

	// ErrAttendanceConflict is returned when inserting an attendance record
	// for a (student, session, date) key that already has one.
	ErrAttendanceConflict = errors.New("attendance already recorded")
)
