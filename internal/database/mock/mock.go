// Package mock provides an in-memory Repository implementation for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/kozaktomas/rollcall/internal/database"
)

// Repository is an in-memory implementation of database.Repository.
// Uniqueness is enforced under a mutex so the concurrency properties of the
// real backends hold here too.
type Repository struct {
	mu       sync.Mutex
	students map[string]*database.Student
	sessions map[string]*database.Session
	records  map[string]*database.AttendanceRecord
	markKeys map[[3]string]bool // (studentID, sessionID, date)

	// Error injection
	CreateStudentError    error
	GetStudentError       error
	ListStudentsError     error
	DeleteStudentError    error
	CreateSessionError    error
	GetSessionError       error
	ListSessionsError     error
	DeleteSessionError    error
	InsertAttendanceError error
	ListAttendanceError   error
	CountError            error
}

// NewRepository creates an empty mock repository.
func NewRepository() *Repository {
	return &Repository{
		students: make(map[string]*database.Student),
		sessions: make(map[string]*database.Session),
		records:  make(map[string]*database.AttendanceRecord),
		markKeys: make(map[[3]string]bool),
	}
}

// Close implements database.Repository.
func (m *Repository) Close() error { return nil }

// CreateStudent inserts a student, enforcing roll number uniqueness.
func (m *Repository) CreateStudent(ctx context.Context, s *database.Student) error {
	if m.CreateStudentError != nil {
		return m.CreateStudentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.RollNumber == s.RollNumber {
			return database.ErrRollNumberConflict
		}
	}
	cp := *s
	m.students[s.ID] = &cp
	return nil
}

// GetStudent retrieves a student by id.
func (m *Repository) GetStudent(ctx context.Context, id string) (*database.Student, error) {
	if m.GetStudentError != nil {
		return nil, m.GetStudentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ListStudents returns all students ordered by roll number.
func (m *Repository) ListStudents(ctx context.Context) ([]database.Student, error) {
	if m.ListStudentsError != nil {
		return nil, m.ListStudentsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RollNumber < result[j].RollNumber })
	return result, nil
}

// DeleteStudent removes a student and cascades to their attendance records.
func (m *Repository) DeleteStudent(ctx context.Context, id string) error {
	if m.DeleteStudentError != nil {
		return m.DeleteStudentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.students, id)
	for recID, rec := range m.records {
		if rec.StudentID == id {
			delete(m.markKeys, [3]string{rec.StudentID, rec.SessionID, rec.Date})
			delete(m.records, recID)
		}
	}
	return nil
}

// CreateSession inserts a session, enforcing code uniqueness.
func (m *Repository) CreateSession(ctx context.Context, s *database.Session) error {
	if m.CreateSessionError != nil {
		return m.CreateSessionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.Code == s.Code {
			return database.ErrSessionCodeConflict
		}
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

// GetSession retrieves a session by id.
func (m *Repository) GetSession(ctx context.Context, id string) (*database.Session, error) {
	if m.GetSessionError != nil {
		return nil, m.GetSessionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ListSessions returns all sessions ordered by code.
func (m *Repository) ListSessions(ctx context.Context) ([]database.Session, error) {
	if m.ListSessionsError != nil {
		return nil, m.ListSessionsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.Session
	for _, s := range m.sessions {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// DeleteSession removes a session and cascades to its attendance records.
func (m *Repository) DeleteSession(ctx context.Context, id string) error {
	if m.DeleteSessionError != nil {
		return m.DeleteSessionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.sessions, id)
	for recID, rec := range m.records {
		if rec.SessionID == id {
			delete(m.markKeys, [3]string{rec.StudentID, rec.SessionID, rec.Date})
			delete(m.records, recID)
		}
	}
	return nil
}

// InsertAttendance stores a record, enforcing the (student, session, date)
// uniqueness key atomically under the mutex.
func (m *Repository) InsertAttendance(ctx context.Context, rec *database.AttendanceRecord) error {
	if m.InsertAttendanceError != nil {
		return m.InsertAttendanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [3]string{rec.StudentID, rec.SessionID, rec.Date}
	if m.markKeys[key] {
		return database.ErrAttendanceConflict
	}
	m.markKeys[key] = true
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

// ListAttendance returns joined report rows for a date.
func (m *Repository) ListAttendance(ctx context.Context, date, sessionID string) ([]database.AttendanceRow, error) {
	if m.ListAttendanceError != nil {
		return nil, m.ListAttendanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.AttendanceRow
	for _, rec := range m.records {
		if rec.Date != date {
			continue
		}
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		result = append(result, m.joinRow(rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result, nil
}

// ListAttendanceByStudent returns joined report rows for one student.
func (m *Repository) ListAttendanceByStudent(ctx context.Context, studentID string) ([]database.AttendanceRow, error) {
	if m.ListAttendanceError != nil {
		return nil, m.ListAttendanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []database.AttendanceRow
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			result = append(result, m.joinRow(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

// CountSessionDays returns the number of distinct dates for a session.
func (m *Repository) CountSessionDays(ctx context.Context, sessionID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dates := make(map[string]bool)
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			dates[rec.Date] = true
		}
	}
	return len(dates), nil
}

// CountStudentAttendance returns the number of records for a
// (student, session) pair.
func (m *Repository) CountStudentAttendance(ctx context.Context, studentID, sessionID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, rec := range m.records {
		if rec.StudentID == studentID && rec.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// CountPresentOnDate returns the number of distinct students with a record
// on the given date.
func (m *Repository) CountPresentOnDate(ctx context.Context, date string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	students := make(map[string]bool)
	for _, rec := range m.records {
		if rec.Date == date {
			students[rec.StudentID] = true
		}
	}
	return len(students), nil
}

// RecordCount returns the total number of attendance records. Test helper.
func (m *Repository) RecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *Repository) joinRow(rec *database.AttendanceRecord) database.AttendanceRow {
	row := database.AttendanceRow{
		RecordID:  rec.ID,
		StudentID: rec.StudentID,
		SessionID: rec.SessionID,
		Date:      rec.Date,
		Time:      rec.Time,
		Status:    rec.Status,
	}
	if st, ok := m.students[rec.StudentID]; ok {
		row.StudentName = st.Name
		row.RollNumber = st.RollNumber
	}
	if sess, ok := m.sessions[rec.SessionID]; ok {
		row.SessionCode = sess.Code
		row.SessionName = sess.Name
	}
	return row
}
