package app

import (
	"context"
	"fmt"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

var newRedisBus = bus.NewRedisBus

// resolveBus picks the change-feed transport. A single replica can use the
// in-process bus; several replicas need Redis so every SSE hub hears every
// write.
func resolveBus(ctx context.Context, log *logger.Logger, cfg Config) (bus.Bus, error) {
	switch cfg.RealtimeBus {
	case "", RealtimeBusMemory:
		log.Info("Realtime bus: memory")
		return bus.NewMemoryBus(log), nil
	case RealtimeBusRedis:
		b, err := newRedisBus(ctx, log, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		log.Info("Realtime bus: redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
		return b, nil
	default:
		return nil, fmt.Errorf("unknown REALTIME_BUS %q", cfg.RealtimeBus)
	}
}
