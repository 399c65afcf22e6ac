package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/service"
)

// SessionCleanupJob periodically abandons sessions whose timer checkpoint
// went stale, usually because the client disappeared mid-session.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic stale session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Session.CleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := sessionService.CleanupStale(ctx, cfg.Session.StaleAfter); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "abandoned", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessionService.CleanupStale(ctx, cfg.Session.StaleAfter); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "abandoned", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started", "interval", cfg.Session.CleanupInterval)

	return &SessionCleanupJob{cancel: cancel}, nil
}

// ReminderDispatchJob periodically sends reminders to users whose preferred
// reading time falls inside the match window.
type ReminderDispatchJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *ReminderDispatchJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideReminderDispatchJob provides the periodic reminder dispatch job.
// When the worker is disabled, dispatch is expected to come from an external
// scheduler running the remind binary.
func ProvideReminderDispatchJob(i do.Injector) (*ReminderDispatchJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	reminderService := do.MustInvoke[*service.ReminderService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	if !cfg.Reminder.Enabled {
		log.Info("Reminder dispatch worker disabled by configuration")
		return &ReminderDispatchJob{cancel: cancel}, nil
	}

	go func() {
		ticker := time.NewTicker(cfg.Reminder.DispatchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				report, err := reminderService.DispatchDue(ctx)
				if err != nil {
					log.Warn("Reminder dispatch failed", "error", err)
					continue
				}
				if report.UsersDue > 0 {
					log.Info("Reminder dispatch completed",
						"run_id", report.RunID,
						"users_due", report.UsersDue,
						"users_failed", report.UsersFailed,
						"delivered", report.Delivered,
						"failed", report.Failed,
					)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Reminder dispatch job started",
		"interval", cfg.Reminder.DispatchInterval,
		"window_minutes", cfg.Reminder.WindowMinutes,
	)

	return &ReminderDispatchJob{cancel: cancel}, nil
}
