package services

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

// =========================
// Change notifier
// =========================

// ChangeNotifier publishes committed writes on the change feed. Delivery is
// best effort; a failed publish is logged and never fails the write.
type ChangeNotifier interface {
	Notify(ctx context.Context, ev realtime.ChangeEvent)
	// Subscribe registers fn for every event arriving from the feed,
	// including events published by other replicas.
	Subscribe(fn func(realtime.ChangeEvent))
	// Start forwards feed messages to hub and the subscribers until ctx ends.
	Start(ctx context.Context, hub *realtime.SSEHub) error
}

type changeNotifier struct {
	log *logger.Logger
	bus bus.Bus

	mu        sync.RWMutex
	listeners []func(realtime.ChangeEvent)
}

func NewChangeNotifier(baseLog *logger.Logger, b bus.Bus) ChangeNotifier {
	return &changeNotifier{log: baseLog.With("service", "ChangeNotifier"), bus: b}
}

func (n *changeNotifier) Notify(ctx context.Context, ev realtime.ChangeEvent) {
	if n == nil || n.bus == nil || ev.Kind == "" {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	// The write already committed; do not let a cancelled request drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctxutil.Default(ctx)), 5*time.Second)
	defer cancel()
	if err := n.bus.Publish(pubCtx, ev.Message()); err != nil {
		n.log.Warn("change event publish failed", "kind", string(ev.Kind), "error", err)
	}
}

func (n *changeNotifier) Subscribe(fn func(realtime.ChangeEvent)) {
	if n == nil || fn == nil {
		return
	}
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

func (n *changeNotifier) Start(ctx context.Context, hub *realtime.SSEHub) error {
	if n == nil || n.bus == nil {
		return nil
	}
	return n.bus.StartForwarder(ctx, func(msg realtime.SSEMessage) {
		if hub != nil {
			hub.Broadcast(msg)
		}
		ev, ok := realtime.ChangeEventFrom(msg)
		if !ok {
			return
		}
		n.mu.RLock()
		fns := append([]func(realtime.ChangeEvent){}, n.listeners...)
		n.mu.RUnlock()
		for _, fn := range fns {
			fn(ev)
		}
	})
}

func notify(n ChangeNotifier, ctx context.Context, ev realtime.ChangeEvent) {
	if n == nil {
		return
	}
	n.Notify(ctx, ev)
}
