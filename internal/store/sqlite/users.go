package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

const userColumns = `id, email, display_name, created_at, updated_at`

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO users (%s) VALUES (?, ?, ?, ?, ?)`, userColumns)

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConstraintError(err))
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, userColumns)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user               domain.User
		createdAt, updated string
	)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &createdAt, &updated)
	if err != nil {
		return nil, err
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &user, nil
}
