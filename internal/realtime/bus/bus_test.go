package bus

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/goleak"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

func TestMemoryBusFanOutAndUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewMemoryBus(logger.Nop())
	defer b.Close()

	var gotA, gotB []realtime.SSEEvent
	ctxA, cancelA := context.WithCancel(context.Background())
	if err := b.StartForwarder(ctxA, func(m realtime.SSEMessage) { gotA = append(gotA, m.Event) }); err != nil {
		t.Fatalf("StartForwarder A: %v", err)
	}
	ctxB, cancelB := context.WithCancel(context.Background())
	defer cancelB()
	if err := b.StartForwarder(ctxB, func(m realtime.SSEMessage) { gotB = append(gotB, m.Event) }); err != nil {
		t.Fatalf("StartForwarder B: %v", err)
	}

	ctx := context.Background()
	if err := b.Publish(ctx, realtime.SSEMessage{Channel: realtime.ChannelContent, Event: realtime.SSEEventModuleChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	cancelA()
	waitFor(t, func() bool { return subscriberCount(b) == 1 })

	if err := b.Publish(ctx, realtime.SSEMessage{Channel: realtime.ChannelContent, Event: realtime.SSEEventSessionChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(gotA) != 1 || len(gotB) != 2 || gotB[1] != realtime.SSEEventSessionChanged {
		t.Fatalf("gotA=%v gotB=%v", gotA, gotB)
	}
}

func TestMemoryBusClosed(t *testing.T) {
	b := NewMemoryBus(logger.Nop())
	_ = b.Close()
	if err := b.Publish(context.Background(), realtime.SSEMessage{}); err == nil {
		t.Fatalf("Publish after Close should fail")
	}
	if err := b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}); err == nil {
		t.Fatalf("StartForwarder after Close should fail")
	}
	if err := NewMemoryBus(logger.Nop()).StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("nil callback should be rejected")
	}
}

func TestMemoryBusPublishHonoursContext(t *testing.T) {
	b := NewMemoryBus(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, realtime.SSEMessage{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish err=%v want context.Canceled", err)
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(context.Background(), logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("missing address should fail")
	}
}

func TestNewRedisBusPingFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := NewRedisBus(ctx, logger.Nop(), RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("unreachable redis should fail ping")
	}
}

func TestRedisBusUninitialized(t *testing.T) {
	var b *redisBus
	if err := b.Publish(context.Background(), realtime.SSEMessage{}); err == nil {
		t.Fatalf("nil bus Publish should fail")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("nil bus Close: %v", err)
	}
	_ = newRedisBus(logger.Nop(), goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}), "x").Close()
}

func subscriberCount(b Bus) int {
	mb := b.(*memoryBus)
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return len(mb.subs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
