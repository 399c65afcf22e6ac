package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

const sessionColumns = `id, user_id, book_id, start_page, end_page, started_at, ended_at, duration_seconds, pages_read, created_at, updated_at`

// CreateSession inserts an in-progress reading session.
func (s *Store) CreateSession(ctx context.Context, session *domain.ReadingSession) error {
	query := fmt.Sprintf(`INSERT INTO reading_sessions (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, sessionColumns)

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.BookID,
		session.StartPage,
		nullInt(session.EndPage),
		formatTime(session.StartedAt),
		nullTimeString(session.EndedAt),
		session.DurationSeconds,
		session.PagesRead,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", mapConstraintError(err))
	}
	return nil
}

// GetSession retrieves a reading session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.ReadingSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM reading_sessions WHERE id = ?`, sessionColumns)

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

// FinalizeSession writes the end-of-session fields of an unfinalized row.
// The ended_at guard makes finalization single-shot: a row that was already
// finalized matches zero rows and the call returns ErrNotFound.
func (s *Store) FinalizeSession(ctx context.Context, session *domain.ReadingSession) error {
	query := `UPDATE reading_sessions
		SET end_page = ?, ended_at = ?, duration_seconds = ?, pages_read = ?, updated_at = ?
		WHERE id = ? AND ended_at IS NULL`

	res, err := s.db.ExecContext(ctx, query,
		nullInt(session.EndPage),
		nullTimeString(session.EndedAt),
		session.DurationSeconds,
		session.PagesRead,
		formatTime(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize session rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteSession removes a session row. Used when a user abandons an
// in-progress session without finalizing it.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reading_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListFinalizedSessions returns a user's finalized sessions, newest first.
func (s *Store) ListFinalizedSessions(ctx context.Context, userID string) ([]*domain.ReadingSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM reading_sessions
		WHERE user_id = ? AND ended_at IS NOT NULL
		ORDER BY started_at DESC, id`, sessionColumns)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ReadingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*domain.ReadingSession, error) {
	var (
		session            domain.ReadingSession
		endPage            sql.NullInt64
		endedAt            sql.NullString
		started            string
		createdAt, updated string
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.BookID,
		&session.StartPage,
		&endPage,
		&started,
		&endedAt,
		&session.DurationSeconds,
		&session.PagesRead,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	if endPage.Valid {
		v := int(endPage.Int64)
		session.EndPage = &v
	}
	if session.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if session.EndedAt, err = parseNullableTime(endedAt); err != nil {
		return nil, fmt.Errorf("parse ended_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &session, nil
}
