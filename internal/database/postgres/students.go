package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// uniqueViolation reports whether err is a unique_violation on the named
// constraint.
func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}

// CreateStudent inserts a new student; the students_roll_number_key
// constraint maps to ErrRollNumberConflict.
func (s *Store) CreateStudent(ctx context.Context, st *database.Student) error {
	if err := database.ValidateEmbedding(st.Embedding, s.dim); err != nil {
		return fmt.Errorf("validate embedding: %w", err)
	}

	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO students (id, name, roll_number, embedding, dim, image_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		st.ID,
		st.Name,
		st.RollNumber,
		pgvector.NewVector(st.Embedding),
		len(st.Embedding),
		st.ImagePath,
		st.CreatedAt,
	)
	if uniqueViolation(err, "students_roll_number_key") {
		return database.ErrRollNumberConflict
	}
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by id.
func (s *Store) GetStudent(ctx context.Context, id string) (*database.Student, error) {
	row := s.pool.QueryRow(
		ctx,
		"SELECT id, name, roll_number, embedding, image_path, created_at FROM students WHERE id = $1",
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

// ListStudents returns all students with dimension-checked embeddings.
func (s *Store) ListStudents(ctx context.Context) ([]database.Student, error) {
	rows, err := s.pool.Query(
		ctx,
		"SELECT id, name, roll_number, embedding, image_path, created_at FROM students ORDER BY roll_number",
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

// DeleteStudent removes a student; attendance rows cascade.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
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

func (s *Store) scanStudent(row rowScanner) (*database.Student, error) {
	var (
		st  database.Student
		vec pgvector.Vector
	)
	if err := row.Scan(&st.ID, &st.Name, &st.RollNumber, &vec, &st.ImagePath, &st.CreatedAt); err != nil {
		return nil, err
	}

	embedding := vec.Slice()
	if err := database.ValidateEmbedding(embedding, s.dim); err != nil {
		return nil, fmt.Errorf("student %s: %w", st.ID, err)
	}
	st.Embedding = embedding
	return &st, nil
}
