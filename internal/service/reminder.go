package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
	"github.com/pagepace/pagepace-server/internal/push"
	"github.com/pagepace/pagepace-server/internal/store"
)

const (
	reminderTitle        = "Time to read!"
	reminderTag          = "reading-reminder"
	reminderFallbackBody = "Don't forget your daily reading session"
)

const minutesPerDay = 24 * 60

// ReminderService matches users whose preferred reading time falls inside the
// dispatch window and delivers push reminders to them.
type ReminderService struct {
	store         store.Store
	transport     push.Transport
	clk           clock.Clock
	loc           *time.Location
	windowMinutes int
	logger        *slog.Logger
}

// NewReminderService creates a reminder service. loc is the reference
// timezone preferred times are interpreted in.
func NewReminderService(store store.Store, transport push.Transport, clk clock.Clock, loc *time.Location, windowMinutes int, logger *slog.Logger) *ReminderService {
	return &ReminderService{
		store:         store,
		transport:     transport,
		clk:           clk,
		loc:           loc,
		windowMinutes: windowMinutes,
		logger:        logger,
	}
}

// Preference returns a user's reminder setting, falling back to the disabled
// default when none has been saved yet.
func (s *ReminderService) Preference(ctx context.Context, userID string) (*domain.ReminderPreference, error) {
	pref, err := s.store.GetReminderPreference(ctx, userID)
	if domainerrors.Is(err, store.ErrNotFound) {
		return domain.NewReminderPreference(userID, s.clk.Now().UTC()), nil
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	return pref, nil
}

// SetPreference validates and saves a user's reminder setting.
func (s *ReminderService) SetPreference(ctx context.Context, userID string, enabled bool, timeOfDay string) (*domain.ReminderPreference, error) {
	if _, err := domain.ParseTimeOfDay(timeOfDay); err != nil {
		return nil, domainerrors.Validationf("time_of_day must be HH:MM, got %q", timeOfDay)
	}

	pref := &domain.ReminderPreference{
		UserID:    userID,
		Enabled:   enabled,
		TimeOfDay: timeOfDay,
		UpdatedAt: s.clk.Now().UTC(),
	}
	if err := s.store.UpsertReminderPreference(ctx, pref); err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	return pref, nil
}

// Subscribe registers a push endpoint for a user.
func (s *ReminderService) Subscribe(ctx context.Context, sub *domain.PushSubscription) error {
	if err := s.store.CreatePushSubscription(ctx, sub); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Conflict("push endpoint already registered")
		}
		return domainerrors.StorageUnavailable(err)
	}
	return nil
}

// Unsubscribe removes a push endpoint.
func (s *ReminderService) Unsubscribe(ctx context.Context, id string) error {
	if err := s.store.DeletePushSubscription(ctx, id); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("push subscription not found")
		}
		return domainerrors.StorageUnavailable(err)
	}
	return nil
}

// Subscriptions lists a user's registered push endpoints.
func (s *ReminderService) Subscriptions(ctx context.Context, userID string) ([]*domain.PushSubscription, error) {
	subs, err := s.store.ListPushSubscriptions(ctx, userID)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	return subs, nil
}

// SelectDue returns the enabled preferences whose time of day falls within
// the window around now. The window is inclusive on both edges. A preference
// that fails to parse is skipped, never fatal.
func (s *ReminderService) SelectDue(ctx context.Context, now time.Time) ([]*domain.ReminderPreference, error) {
	prefs, err := s.store.ListReminderPreferences(ctx)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	local := now.In(s.loc)
	nowMinutes := local.Hour()*60 + local.Minute()

	var due []*domain.ReminderPreference
	for _, pref := range prefs {
		if !pref.Enabled {
			continue
		}
		prefMinutes, err := pref.MinutesSinceMidnight()
		if err != nil {
			s.logger.Warn("skipping unparseable reminder preference",
				"user_id", pref.UserID,
				"time_of_day", pref.TimeOfDay,
				"error", err)
			continue
		}
		if clockDistance(nowMinutes, prefMinutes) <= s.windowMinutes {
			due = append(due, pref)
		}
	}
	return due, nil
}

// clockDistance is the distance in minutes between two times of day, going
// the short way around midnight.
func clockDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	return min(d, minutesPerDay-d)
}

// DispatchReport summarizes one reminder dispatch run.
type DispatchReport struct {
	RunID       string `json:"run_id"`
	UsersDue    int    `json:"users_due"`
	UsersFailed int    `json:"users_failed"`
	Delivered   int    `json:"delivered"`
	Failed      int    `json:"failed"`
}

// DispatchDue finds every user due a reminder right now and sends a push to
// each of their registered endpoints. One user's failure never blocks the
// rest of the batch.
func (s *ReminderService) DispatchDue(ctx context.Context) (*DispatchReport, error) {
	report := &DispatchReport{RunID: uuid.NewString()}

	due, err := s.SelectDue(ctx, s.clk.Now())
	if err != nil {
		return nil, err
	}
	report.UsersDue = len(due)

	for _, pref := range due {
		delivered, failed, err := s.dispatchToUser(ctx, pref.UserID)
		if err != nil {
			report.UsersFailed++
			s.logger.Warn("reminder dispatch failed for user",
				"run_id", report.RunID,
				"user_id", pref.UserID,
				"error", err)
			continue
		}
		report.Delivered += delivered
		report.Failed += failed
	}

	s.logger.Info("reminder dispatch run finished",
		"run_id", report.RunID,
		"users_due", report.UsersDue,
		"users_failed", report.UsersFailed,
		"delivered", report.Delivered,
		"failed", report.Failed)
	return report, nil
}

// dispatchToUser sends the reminder to all of one user's endpoints and
// returns per-subscription delivered/failed counts.
func (s *ReminderService) dispatchToUser(ctx context.Context, userID string) (delivered, failed int, err error) {
	subs, err := s.store.ListPushSubscriptions(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return 0, 0, nil
	}

	notification := push.Notification{
		Title: reminderTitle,
		Body:  s.reminderBody(ctx, userID),
		Tag:   reminderTag,
	}

	for _, sub := range subs {
		if err := s.transport.Send(ctx, sub, notification); err != nil {
			failed++
			s.logger.Warn("push delivery failed",
				"user_id", userID,
				"subscription_id", sub.ID,
				"error", err)
			continue
		}
		delivered++
	}
	return delivered, failed, nil
}

// reminderBody names the book the user is currently reading when there is
// one; any lookup trouble falls back to the generic nudge.
func (s *ReminderService) reminderBody(ctx context.Context, userID string) string {
	book, err := s.store.GetCurrentlyReadingBook(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to look up current book for reminder",
			"user_id", userID,
			"error", err)
		return reminderFallbackBody
	}
	if book == nil {
		return reminderFallbackBody
	}
	return fmt.Sprintf("Continue reading %q", book.Title)
}
