package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

type testEnv struct {
	db       *gorm.DB
	cache    *ProgressCache
	profiles ProfileService
	guard    AccessGuard
	notifier ChangeNotifier

	modules    ModuleService
	sessions   SessionService
	timestamps TimestampService
	notes      NoteService
	progress   ProgressService

	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	moduleRepo := repos.NewModuleRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	timestampRepo := repos.NewTimestampRepo(db, log)
	noteRepo := repos.NewNoteRepo(db, log)
	progressRepo := repos.NewProgressRepo(db, log)
	profileRepo := repos.NewProfileRepo(db, log)

	b := bus.NewMemoryBus(log)
	t.Cleanup(func() { _ = b.Close() })

	env := &testEnv{db: db, cache: NewProgressCache()}
	env.notifier = NewChangeNotifier(log, b)
	env.notifier.Subscribe(func(ev realtime.ChangeEvent) {
		env.mu.Lock()
		env.events = append(env.events, ev)
		env.mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := env.notifier.Start(ctx, nil); err != nil {
		t.Fatalf("notifier.Start: %v", err)
	}

	env.profiles = NewProfileService(db, log, profileRepo, 0)
	env.guard = NewAccessGuard(log, env.profiles)
	env.modules = NewModuleService(db, log, env.guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, env.cache, env.notifier)
	env.sessions = NewSessionService(db, log, env.guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, env.cache, env.notifier)
	env.timestamps = NewTimestampService(db, log, env.guard, sessionRepo, timestampRepo, noteRepo, env.notifier)
	env.notes = NewNoteService(db, log, env.guard, sessionRepo, timestampRepo, noteRepo, env.notifier)
	env.progress = NewProgressService(db, log, moduleRepo, sessionRepo, progressRepo, env.cache, env.notifier)
	return env
}

// as returns a request context authenticated as a fresh identity holding role.
func (e *testEnv) as(t *testing.T, role string) (dbctx.Context, uuid.UUID) {
	t.Helper()
	p := testutil.SeedProfile(t, e.db, role)
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: p.ID})
	return dbctx.Context{Ctx: ctx}, p.ID
}

func (e *testEnv) anonymous() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func (e *testEnv) kinds() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (e *testEnv) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (e *testEnv) seedSession(t *testing.T, teacher dbctx.Context) (*types.Module, *types.Session) {
	t.Helper()
	m, err := e.modules.Create(teacher, CreateModuleInput{Title: "Injil Markus"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	s, err := e.sessions.Create(teacher, m.ID, CreateSessionInput{Title: "Pasal 1", SlidesURL: testutil.Ptr("https://example.com/markus.pdf")})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return m, s
}

func hasKind(kinds []realtime.SSEEvent, want realtime.SSEEvent) bool {
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
