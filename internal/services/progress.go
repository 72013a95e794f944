package services

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/completion"
	"github.com/yungbote/belajar-alkitab-backend/internal/observability"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

const overviewConcurrency = 4

type ModuleProgressView struct {
	ModuleID uuid.UUID `json:"module_id"`
	Title    string    `json:"title"`
	completion.Summary
}

type ProgressService interface {
	// ToggleComplete sets the completion flag of (userID, sessionID).
	// Repeating a call is a no-op on the stored state.
	ToggleComplete(dbc dbctx.Context, userID, sessionID uuid.UUID, completed bool) (*types.Progress, error)
	// GetProgress returns nil when the user never touched the session.
	GetProgress(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.Progress, error)
	ListProgress(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error)
	GetModuleProgress(dbc dbctx.Context, userID, moduleID uuid.UUID) (completion.Summary, error)
	// Overview summarizes every module for userID in catalogue order.
	Overview(dbc dbctx.Context, userID uuid.UUID) ([]ModuleProgressView, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	moduleRepo   repos.ModuleRepo
	sessionRepo  repos.SessionRepo
	progressRepo repos.ProgressRepo
	cache        *ProgressCache
	notifier     ChangeNotifier
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.ModuleRepo,
	sessionRepo repos.SessionRepo,
	progressRepo repos.ProgressRepo,
	cache *ProgressCache,
	notifier ChangeNotifier,
) ProgressService {
	if cache == nil {
		cache = NewProgressCache()
	}
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		moduleRepo:   moduleRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		cache:        cache,
		notifier:     notifier,
	}
}

func (s *progressService) ToggleComplete(dbc dbctx.Context, userID, sessionID uuid.UUID, completed bool) (*types.Progress, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated("must be logged in")
	}
	if sessionID == uuid.Nil {
		return nil, apierr.Validation("missing session id")
	}
	sess, err := s.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if sess == nil {
		return nil, apierr.NotFound("session")
	}

	row := &types.Progress{ID: uuid.New(), UserID: userID, SessionID: sessionID, Completed: completed}
	if err := s.progressRepo.Upsert(dbc, row); err != nil {
		s.log.Warn("ToggleComplete: upsert failed", "error", err, "user_id", userID, "id", sessionID)
		return nil, apierr.FromStore(err)
	}
	stored, err := s.progressRepo.GetByUserAndSession(dbc, userID, sessionID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if stored == nil {
		return nil, apierr.NotFound("progress")
	}

	s.cache.InvalidateUserModule(userID, sess.ModuleID)
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{
		Kind:      realtime.SSEEventProgressChanged,
		ModuleID:  sess.ModuleID,
		SessionID: sessionID,
		UserID:    userID,
	})
	return stored, nil
}

func (s *progressService) GetProgress(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.Progress, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated("must be logged in")
	}
	p, err := s.progressRepo.GetByUserAndSession(dbc, userID, sessionID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	return p, nil
}

func (s *progressService) ListProgress(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated("must be logged in")
	}
	rows, err := s.progressRepo.ListByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	return rows, nil
}

func (s *progressService) GetModuleProgress(dbc dbctx.Context, userID, moduleID uuid.UUID) (completion.Summary, error) {
	if userID == uuid.Nil {
		return completion.Summary{}, apierr.Unauthenticated("must be logged in")
	}
	if moduleID == uuid.Nil {
		return completion.Summary{}, apierr.Validation("missing module id")
	}
	if sum, ok := s.cache.Get(userID, moduleID); ok {
		return sum, nil
	}
	m, err := s.moduleRepo.GetByID(dbc, moduleID)
	if err != nil {
		return completion.Summary{}, apierr.FromStore(err)
	}
	if m == nil {
		return completion.Summary{}, apierr.NotFound("module")
	}
	return s.summarize(dbc, userID, moduleID)
}

func (s *progressService) summarize(dbc dbctx.Context, userID, moduleID uuid.UUID) (completion.Summary, error) {
	if sum, ok := s.cache.Get(userID, moduleID); ok {
		return sum, nil
	}
	gen := s.cache.Generation()
	ids, err := s.sessionRepo.ListIDsByModuleID(dbc, moduleID)
	if err != nil {
		return completion.Summary{}, apierr.FromStore(err)
	}
	rows, err := s.progressRepo.ListByUserAndSessionIDs(dbc, userID, ids)
	if err != nil {
		return completion.Summary{}, apierr.FromStore(err)
	}
	sum := completion.Summarize(ids, rows)
	s.cache.PutIfFresh(userID, moduleID, gen, sum)
	return sum, nil
}

func (s *progressService) Overview(dbc dbctx.Context, userID uuid.UUID) ([]ModuleProgressView, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated("must be logged in")
	}
	ctx, span := observability.Tracer("progress").Start(ctxutil.Default(dbc.Ctx), "ProgressService.Overview")
	defer span.End()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	mods, err := s.moduleRepo.List(dbc, repos.ModuleListOptions{})
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	span.SetAttributes(attribute.Int("modules", len(mods)))
	out := make([]ModuleProgressView, len(mods))

	// A bound transaction is a single connection; stay sequential on it.
	if dbc.Tx != nil {
		for i, m := range mods {
			sum, err := s.summarize(dbc, userID, m.ID)
			if err != nil {
				return nil, err
			}
			out[i] = ModuleProgressView{ModuleID: m.ID, Title: m.Title, Summary: sum}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	g.SetLimit(overviewConcurrency)
	for i, m := range mods {
		i, m := i, m
		g.Go(func() error {
			sum, err := s.summarize(dbctx.Context{Ctx: gctx}, userID, m.ID)
			if err != nil {
				return err
			}
			out[i] = ModuleProgressView{ModuleID: m.ID, Title: m.Title, Summary: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("Overview: summarize failed", "error", err, "user_id", userID)
		return nil, err
	}
	return out, nil
}
