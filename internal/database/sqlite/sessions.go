package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/database"
)

// CreateSession inserts a new session. The code UNIQUE constraint maps to
// ErrSessionCodeConflict.
func (s *Store) CreateSession(ctx context.Context, sess *database.Session) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (id, code, name, faculty, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Code,
		sess.Name,
		sess.Faculty,
		sess.Description,
		formatTimestamp(sess.CreatedAt),
	)
	if uniqueViolation(err, "sessions.code") {
		return database.ErrSessionCodeConflict
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*database.Session, error) {
	var (
		sess      database.Session
		createdAt string
	)
	err := s.db.QueryRowContext(
		ctx,
		"SELECT id, code, name, faculty, description, created_at FROM sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.Code, &sess.Name, &sess.Faculty, &sess.Description, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = parseTimestamp(createdAt)
	return &sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]database.Session, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT id, code, name, faculty, description, created_at FROM sessions ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []database.Session
	for rows.Next() {
		var (
			sess      database.Session
			createdAt string
		)
		if err := rows.Scan(&sess.ID, &sess.Code, &sess.Name, &sess.Faculty, &sess.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.CreatedAt = parseTimestamp(createdAt)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session; attendance rows cascade via foreign key.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM sessions WHERE id = ?", id)
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
