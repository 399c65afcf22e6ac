package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

const reminderColumns = `user_id, enabled, time_of_day, updated_at`

const subscriptionColumns = `id, user_id, endpoint, keys, created_at`

// GetReminderPreference retrieves a user's reminder setting.
func (s *Store) GetReminderPreference(ctx context.Context, userID string) (*domain.ReminderPreference, error) {
	query := fmt.Sprintf(`SELECT %s FROM reminder_preferences WHERE user_id = ?`, reminderColumns)

	pref, err := scanReminderPreference(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query reminder preference: %w", err)
	}
	return pref, nil
}

// UpsertReminderPreference writes a user's reminder setting.
func (s *Store) UpsertReminderPreference(ctx context.Context, pref *domain.ReminderPreference) error {
	query := fmt.Sprintf(`INSERT INTO reminder_preferences (%s) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			enabled = excluded.enabled,
			time_of_day = excluded.time_of_day,
			updated_at = excluded.updated_at`, reminderColumns)

	_, err := s.db.ExecContext(ctx, query,
		pref.UserID,
		boolToInt(pref.Enabled),
		pref.TimeOfDay,
		formatTime(pref.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert reminder preference: %w", err)
	}
	return nil
}

// ListReminderPreferences returns every stored reminder preference. The
// dispatch loop filters for enabled ones itself.
func (s *Store) ListReminderPreferences(ctx context.Context) ([]*domain.ReminderPreference, error) {
	query := fmt.Sprintf(`SELECT %s FROM reminder_preferences ORDER BY user_id`, reminderColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reminder preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*domain.ReminderPreference
	for rows.Next() {
		pref, err := scanReminderPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder preference: %w", err)
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

// CreatePushSubscription registers a push endpoint for a user.
func (s *Store) CreatePushSubscription(ctx context.Context, sub *domain.PushSubscription) error {
	query := fmt.Sprintf(`INSERT INTO push_subscriptions (%s) VALUES (?, ?, ?, ?, ?)`, subscriptionColumns)

	_, err := s.db.ExecContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Endpoint,
		sub.Keys,
		formatTime(sub.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert push subscription: %w", mapConstraintError(err))
	}
	return nil
}

// DeletePushSubscription removes a push endpoint.
func (s *Store) DeletePushSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete push subscription rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListPushSubscriptions returns a user's registered push endpoints.
func (s *Store) ListPushSubscriptions(ctx context.Context, userID string) ([]*domain.PushSubscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM push_subscriptions WHERE user_id = ? ORDER BY created_at, id`, subscriptionColumns)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		sub, err := scanPushSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanReminderPreference(row rowScanner) (*domain.ReminderPreference, error) {
	var (
		pref    domain.ReminderPreference
		enabled int
		updated string
	)
	err := row.Scan(&pref.UserID, &enabled, &pref.TimeOfDay, &updated)
	if err != nil {
		return nil, err
	}

	pref.Enabled = enabled != 0
	if pref.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &pref, nil
}

func scanPushSubscription(row rowScanner) (*domain.PushSubscription, error) {
	var (
		sub       domain.PushSubscription
		createdAt string
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.Keys, &createdAt)
	if err != nil {
		return nil, err
	}

	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &sub, nil
}
