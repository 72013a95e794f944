package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

func TestResolveBus(t *testing.T) {
	log := testutil.Logger(t)

	cfg := testConfig()
	b, err := resolveBus(context.Background(), log, cfg)
	if err != nil || b == nil {
		t.Fatalf("memory bus: %v", err)
	}
	_ = b.Close()

	cfg.RealtimeBus = "nats"
	if _, err := resolveBus(context.Background(), log, cfg); err == nil {
		t.Fatalf("unknown bus should fail")
	}
}

func TestResolveBusRedisFailure(t *testing.T) {
	orig := newRedisBus
	t.Cleanup(func() { newRedisBus = orig })
	var got bus.RedisConfig
	newRedisBus = func(_ context.Context, _ *logger.Logger, cfg bus.RedisConfig) (bus.Bus, error) {
		got = cfg
		return nil, errors.New("connection refused")
	}

	cfg := testConfig()
	cfg.RealtimeBus = RealtimeBusRedis
	cfg.Redis = bus.RedisConfig{Addr: "redis:6379", Channel: "belajar-alkitab:sse"}
	if _, err := resolveBus(context.Background(), testutil.Logger(t), cfg); err == nil {
		t.Fatalf("expected redis init failure")
	}
	if got.Addr != "redis:6379" || got.Channel != "belajar-alkitab:sse" {
		t.Fatalf("redis config not forwarded: %+v", got)
	}
}
