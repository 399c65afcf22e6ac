package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/push"
)

// PushTransportHandle wraps the push transport with shutdown capability.
type PushTransportHandle struct {
	*push.HTTPTransport
}

// Shutdown implements do.Shutdownable.
func (h *PushTransportHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvidePushTransport provides the outbound push delivery transport.
func ProvidePushTransport(i do.Injector) (*PushTransportHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	transport := push.NewHTTPTransport(
		cfg.Push.TTLSeconds,
		cfg.Push.RatePerSecond,
		cfg.Push.Burst,
		cfg.Push.Timeout,
		log.Logger,
	)

	return &PushTransportHandle{HTTPTransport: transport}, nil
}
