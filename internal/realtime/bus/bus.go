package bus

import (
	"context"

	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	// StartForwarder delivers every published message to onMsg until ctx ends.
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
