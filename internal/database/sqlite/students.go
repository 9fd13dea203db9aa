package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
)

// CreateStudent inserts a new student. The roll_number UNIQUE constraint is
// the authority on duplicates; a violation maps to ErrRollNumberConflict.
func (s *Store) CreateStudent(ctx context.Context, st *database.Student) error {
	if err := database.ValidateEmbedding(st.Embedding, s.dim); err != nil {
		return fmt.Errorf("validate embedding: %w", err)
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO students (id, name, roll_number, embedding, dim, image_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.Name,
		st.RollNumber,
		database.EncodeVector(st.Embedding),
		len(st.Embedding),
		st.ImagePath,
		formatTimestamp(st.CreatedAt),
	)
	if uniqueViolation(err, "students.roll_number") {
		return database.ErrRollNumberConflict
	}
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by id.
func (s *Store) GetStudent(ctx context.Context, id string) (*database.Student, error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT id, name, roll_number, embedding, dim, image_path, created_at FROM students WHERE id = ?",
		id,
	)
	st, err := s.scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return st, nil
}

// ListStudents returns all students with decoded, dimension-checked embeddings.
func (s *Store) ListStudents(ctx context.Context) ([]database.Student, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT id, name, roll_number, embedding, dim, image_path, created_at FROM students ORDER BY roll_number",
	)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		st, err := s.scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// DeleteStudent removes a student; attendance rows cascade via foreign key.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanStudent decodes a row, rejecting embeddings whose stored dimension
// does not match the configured system dimension.
func (s *Store) scanStudent(row rowScanner) (*database.Student, error) {
	var (
		st        database.Student
		blob      []byte
		dim       int
		createdAt string
	)
	if err := row.Scan(&st.ID, &st.Name, &st.RollNumber, &blob, &dim, &st.ImagePath, &createdAt); err != nil {
		return nil, err
	}

	embedding, err := database.DecodeVector(blob, s.dim)
	if err != nil {
		return nil, fmt.Errorf("student %s: %w", st.ID, err)
	}
	st.Embedding = embedding
	st.CreatedAt = parseTimestamp(createdAt)
	return &st, nil
}
