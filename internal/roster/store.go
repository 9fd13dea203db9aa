// Package roster maintains the in-memory view of enrolled students the
// matcher runs against, and the enrollment flow that feeds it.
package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/recognition"
)

// Store holds the enrolled students and hands out immutable snapshots for
// matching. Mutations and snapshots are serialized by a single lock, so a
// match started against one snapshot is never affected by a concurrent
// enrollment or removal.
type Store struct {
	mu         sync.RWMutex
	students   []database.Student
	byID       map[string]int
	byRoll     map[string]string // roll number -> student id
	generation uint64
	dim        int
}

// NewStore creates an empty store for embeddings of the given dimension.
func NewStore(dim int) *Store {
	return &Store{
		byID:   make(map[string]int),
		byRoll: make(map[string]string),
		dim:    dim,
	}
}

// Load replaces the store contents with all students from the repository.
// Called once at startup; the store is authoritative afterwards.
func (s *Store) Load(ctx context.Context, repo database.StudentRepository) error {
	students, err := repo.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("loading students: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = s.students[:0]
	s.byID = make(map[string]int, len(students))
	s.byRoll = make(map[string]string, len(students))
	for _, st := range students {
		if err := database.ValidateEmbedding(st.Embedding, s.dim); err != nil {
			return fmt.Errorf("student %s (%s): %w", st.Name, st.ID, err)
		}
		s.byID[st.ID] = len(s.students)
		s.byRoll[st.RollNumber] = st.ID
		s.students = append(s.students, st)
	}
	s.generation++
	return nil
}

// Insert adds a student to the store. Returns ErrRollNumberConflict if the
// roll number is already present, so in-memory state mirrors the storage
// constraint even before the database is consulted.
func (s *Store) Insert(st database.Student) error {
	if err := database.ValidateEmbedding(st.Embedding, s.dim); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byRoll[st.RollNumber]; taken {
		return database.ErrRollNumberConflict
	}
	s.byID[st.ID] = len(s.students)
	s.byRoll[st.RollNumber] = st.ID
	s.students = append(s.students, st)
	s.generation++
	return nil
}

// Remove deletes a student from the store. Returns false if the id is not
// present.
func (s *Store) Remove(studentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[studentID]
	if !ok {
		return false
	}
	delete(s.byRoll, s.students[i].RollNumber)
	delete(s.byID, studentID)
	s.students = append(s.students[:i], s.students[i+1:]...)
	for j := i; j < len(s.students); j++ {
		s.byID[s.students[j].ID] = j
	}
	s.generation++
	return true
}

// Get returns a copy of the student with the given id.
func (s *Store) Get(studentID string) (database.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[studentID]
	if !ok {
		return database.Student{}, false
	}
	return s.students[i], true
}

// FindByName returns the students whose name matches after normalization,
// so "Jiri Novak" finds an enrollment stored as "Jiří Novák".
func (s *Store) FindByName(name string) []database.Student {
	want := NormalizeStudentName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []database.Student
	for _, st := range s.students {
		if NormalizeStudentName(st.Name) == want {
			found = append(found, st)
		}
	}
	return found
}

// Snapshot returns the current roster as matcher candidates. The slice is
// freshly allocated; embeddings are shared but never mutated after insert.
func (s *Store) Snapshot() []recognition.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := make([]recognition.Candidate, len(s.students))
	for i, st := range s.students {
		roster[i] = recognition.Candidate{
			StudentID:  st.ID,
			Name:       st.Name,
			RollNumber: st.RollNumber,
			Embedding:  st.Embedding,
		}
	}
	return roster
}

// Count returns the number of enrolled students.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}

// Generation returns a counter bumped on every mutation. Consumers caching
// derived structures (like the similarity index) use it to detect staleness.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
