// Package main provides a one-shot reminder dispatch run.
//
// It performs a single pass over reminder preferences, sends notifications to
// users whose preferred reading time falls inside the match window, prints a
// short report, and exits. Intended for external schedulers (cron, systemd
// timers) when the in-process dispatch worker is disabled:
//
//	REMINDER_ENABLED=false pagepace-api &
//	*/10 * * * * pagepace-remind
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/push"
	"github.com/pagepace/pagepace-server/internal/service"
	"github.com/pagepace/pagepace-server/internal/store/sqlite"

	"github.com/pagepace/pagepace-server/internal/clock"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "remind: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	s, err := sqlite.Open(cfg.Data.DatabasePath, log.Logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	transport := push.NewHTTPTransport(
		cfg.Push.TTLSeconds,
		cfg.Push.RatePerSecond,
		cfg.Push.Burst,
		cfg.Push.Timeout,
		log.Logger,
	)
	defer transport.Stop()

	svc := service.NewReminderService(
		s,
		transport,
		clock.Real{},
		cfg.Reminder.Location(),
		cfg.Reminder.WindowMinutes,
		log.Logger,
	)

	report, err := svc.DispatchDue(context.Background())
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	fmt.Printf("run %s: %d users due, %d failed, %d notifications delivered, %d failed\n",
		report.RunID, report.UsersDue, report.UsersFailed, report.Delivered, report.Failed)

	// A partial delivery failure is worth surfacing to the scheduler.
	if report.UsersFailed > 0 {
		os.Exit(2)
	}
	return nil
}
