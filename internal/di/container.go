// Package di provides dependency injection configuration for the PagePace server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/di/providers"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/service"
	"github.com/pagepace/pagepace-server/internal/timer"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideClock)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideTimerStore)
	do.Provide(injector, providers.ProvideKeeper)

	// Push delivery
	do.Provide(injector, providers.ProvidePushTransport)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideReminderService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideReminderDispatchJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once everything is running.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.TimerStoreHandle](injector)
	_ = do.MustInvoke[*timer.Keeper](injector)
	_ = do.MustInvoke[*providers.PushTransportHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.ReminderService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.ReminderDispatchJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
