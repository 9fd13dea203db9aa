package database

import (
	"time"
)

// StatusPresent is the only attendance status the system records.
// A wrong mark is corrected by deleting the student or session, never by update.
const StatusPresent = "present"

// Student represents an enrolled identity with its face embedding.
type Student struct {
	ID         string
	Name       string
	RollNumber string
	Embedding  []float32
	ImagePath  string
	CreatedAt  time.Time
}

// Session represents a subject/class offering attendance is recorded against.
type Session struct {
	ID          string
	Code        string
	Name        string
	Faculty     string
	Description string
	CreatedAt   time.Time
}

// AttendanceRecord is a single presence event. At most one record exists
// per (StudentID, SessionID, Date); the storage layer enforces this.
type AttendanceRecord struct {
	ID        string
	StudentID string
	SessionID string
	Date      string // calendar date, "2006-01-02"
	Time      string // local time of day, "15:04:05"
	Status    string
	CreatedAt time.Time
}

// AttendanceRow is a report row joining a record with its student and session.
type AttendanceRow struct {
	RecordID    string
	StudentID   string
	StudentName string
	RollNumber  string
	SessionID   string
	SessionCode string
	SessionName string
	Date        string
	Time        string
	Status      string
}
