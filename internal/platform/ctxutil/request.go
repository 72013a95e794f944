package ctxutil

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is the authenticated identity of the current request as
// carried by the identity provider's access token.
type RequestData struct {
	UserID      uuid.UUID
	Email       string
	TokenString string
	ExpiresAt   time.Time
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

// Default returns ctx, or context.Background when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
