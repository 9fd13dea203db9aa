package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
)

// CreateSession inserts a new session; the sessions_code_key constraint
// maps to ErrSessionCodeConflict.
func (s *Store) CreateSession(ctx context.Context, sess *database.Session) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO sessions (id, code, name, faculty, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID,
		sess.Code,
		sess.Name,
		sess.Faculty,
		sess.Description,
		sess.CreatedAt,
	)
	if uniqueViolation(err, "sessions_code_key") {
		return database.ErrSessionCodeConflict
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*database.Session, error) {
	var sess database.Session
	err := s.pool.QueryRow(
		ctx,
		"SELECT id, code, name, faculty, description, created_at FROM sessions WHERE id = $1",
		id,
	).Scan(&sess.ID, &sess.Code, &sess.Name, &sess.Faculty, &sess.Description, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]database.Session, error) {
	rows, err := s.pool.Query(
		ctx,
		"SELECT id, code, name, faculty, description, created_at FROM sessions ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []database.Session
	for rows.Next() {
		var sess database.Session
		if err := rows.Scan(&sess.ID, &sess.Code, &sess.Name, &sess.Faculty, &sess.Description, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session; attendance rows cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}
