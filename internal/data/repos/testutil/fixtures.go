package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
)

func Ptr[T any](v T) *T { return &v }

func SeedProfile(tb testing.TB, tx *gorm.DB, role string) *types.Profile {
	tb.Helper()
	p := &types.Profile{ID: uuid.New(), Role: role}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedModule(tb testing.TB, tx *gorm.DB, title string) *types.Module {
	tb.Helper()
	m := &types.Module{ID: uuid.New(), Title: title}
	if err := tx.Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

// SeedModuleAt seeds a module with a fixed creation time, for ordering tests.
func SeedModuleAt(tb testing.TB, tx *gorm.DB, title string, at time.Time) *types.Module {
	tb.Helper()
	m := &types.Module{ID: uuid.New(), Title: title, CreatedAt: at, UpdatedAt: at}
	if err := tx.Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedSession(tb testing.TB, tx *gorm.DB, moduleID uuid.UUID, order int) *types.Session {
	tb.Helper()
	s := &types.Session{
		ID:         uuid.New(),
		ModuleID:   moduleID,
		Title:      "session",
		OrderIndex: order,
		SlidesURL:  Ptr("https://example.com/deck.pdf"),
	}
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedTimestamp(tb testing.TB, tx *gorm.DB, sessionID uuid.UUID, seconds int, slideURL *string) *types.Timestamp {
	tb.Helper()
	ts := &types.Timestamp{
		ID:               uuid.New(),
		SessionID:        sessionID,
		TimestampSeconds: seconds,
		SlideURL:         slideURL,
	}
	if err := tx.Create(ts).Error; err != nil {
		tb.Fatalf("seed timestamp: %v", err)
	}
	return ts
}

func SeedProgress(tb testing.TB, tx *gorm.DB, userID, sessionID uuid.UUID, completed bool) *types.Progress {
	tb.Helper()
	p := &types.Progress{ID: uuid.New(), UserID: userID, SessionID: sessionID, Completed: completed}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
