package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/service"
	"github.com/pagepace/pagepace-server/internal/timer"
)

// ProvideSessionService provides the reading session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	keeper := do.MustInvoke[*timer.Keeper](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, keeper, clk, log.Logger), nil
}

// ProvideBookService provides the shelf service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, clk, log.Logger), nil
}

// ProvideStatsService provides the reading stats service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, clk, cfg.Reminder.Location(), log.Logger), nil
}

// ProvideReminderService provides the reminder service.
func ProvideReminderService(i do.Injector) (*service.ReminderService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	transportHandle := do.MustInvoke[*PushTransportHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReminderService(
		storeHandle.Store,
		transportHandle.HTTPTransport,
		clk,
		cfg.Reminder.Location(),
		cfg.Reminder.WindowMinutes,
		log.Logger,
	), nil
}
