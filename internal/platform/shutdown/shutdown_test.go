package shutdown

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDrainGivesStopItsOwnDeadline(t *testing.T) {
	var deadline time.Time
	err := Drain(0, func(ctx context.Context) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		if !ok {
			t.Fatalf("stop context has no deadline")
		}
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if left := time.Until(deadline); left <= DefaultTimeout/2 {
		t.Fatalf("default timeout not applied, %s left", left)
	}
}

func TestDrainWrapsStopError(t *testing.T) {
	err := Drain(10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) || !strings.HasPrefix(err.Error(), "drain after ") {
		t.Fatalf("Drain: %v", err)
	}
}
