package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/api"
	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := api.Services{
		Session:  do.MustInvoke[*service.SessionService](i),
		Book:     do.MustInvoke[*service.BookService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
		Reminder: do.MustInvoke[*service.ReminderService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, clk, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
