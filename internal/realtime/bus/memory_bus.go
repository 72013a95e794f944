package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

// memoryBus fans messages out in-process. Suitable for a single replica.
type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(realtime.SSEMessage)
	closed bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemorySSEBus"),
		subs: make(map[int]func(realtime.SSEMessage)),
	}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("memory SSE bus closed")
	}
	fns := make([]func(realtime.SSEMessage), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory SSE bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	})
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]func(realtime.SSEMessage))
	return nil
}
