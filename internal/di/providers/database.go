package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/store/sqlite"
	"github.com/pagepace/pagepace-server/internal/timer"
)

// StoreHandle wraps the sqlite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Data.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Data.DatabasePath)

	return &StoreHandle{Store: db}, nil
}

// TimerStoreHandle wraps the timer checkpoint store with shutdown capability.
type TimerStoreHandle struct {
	*timer.Store
}

// Shutdown implements do.Shutdownable.
func (h *TimerStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideTimerStore provides the badger-backed timer checkpoint store.
func ProvideTimerStore(i do.Injector) (*TimerStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ts, err := timer.Open(cfg.Data.TimerPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Timer store initialized", "path", cfg.Data.TimerPath)

	return &TimerStoreHandle{Store: ts}, nil
}

// ProvideKeeper provides the timer keeper on top of the checkpoint store.
func ProvideKeeper(i do.Injector) (*timer.Keeper, error) {
	tsHandle := do.MustInvoke[*TimerStoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	return timer.NewKeeper(tsHandle.Store, clk, log.Logger), nil
}
