package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type CreateModuleInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type UpdateModuleInput struct {
	Title        OptionalString `json:"title"`
	Description  OptionalString `json:"description"`
	ThumbnailURL OptionalString `json:"thumbnail_url"`
}

type ModuleService interface {
	// List returns every module with its sessions in display order.
	List(dbc dbctx.Context, newestFirst bool) ([]*types.Module, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	Create(dbc dbctx.Context, in CreateModuleInput) (*types.Module, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateModuleInput) (*types.Module, error)
	// Delete removes the module and everything hanging off its sessions.
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type moduleService struct {
	db            *gorm.DB
	log           *logger.Logger
	guard         AccessGuard
	moduleRepo    repos.ModuleRepo
	sessionRepo   repos.SessionRepo
	timestampRepo repos.TimestampRepo
	noteRepo      repos.NoteRepo
	progressRepo  repos.ProgressRepo
	cache         *ProgressCache
	notifier      ChangeNotifier
}

func NewModuleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	guard AccessGuard,
	moduleRepo repos.ModuleRepo,
	sessionRepo repos.SessionRepo,
	timestampRepo repos.TimestampRepo,
	noteRepo repos.NoteRepo,
	progressRepo repos.ProgressRepo,
	cache *ProgressCache,
	notifier ChangeNotifier,
) ModuleService {
	return &moduleService{
		db:            db,
		log:           baseLog.With("service", "ModuleService"),
		guard:         guard,
		moduleRepo:    moduleRepo,
		sessionRepo:   sessionRepo,
		timestampRepo: timestampRepo,
		noteRepo:      noteRepo,
		progressRepo:  progressRepo,
		cache:         cache,
		notifier:      notifier,
	}
}

func (s *moduleService) List(dbc dbctx.Context, newestFirst bool) ([]*types.Module, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return nil, err
	}
	mods, err := s.moduleRepo.List(dbc, repos.ModuleListOptions{NewestFirst: newestFirst, WithSessions: true})
	if err != nil {
		s.log.Warn("List: load modules failed", "error", err)
		return nil, apierr.FromStore(err)
	}
	return mods, nil
}

func (s *moduleService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return nil, err
	}
	return s.load(dbc, id)
}

func (s *moduleService) load(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation("missing module id")
	}
	m, err := s.moduleRepo.GetByID(dbc, id)
	if err != nil {
		s.log.Warn("load module failed", "error", err, "module_id", id)
		return nil, apierr.FromStore(err)
	}
	if m == nil {
		return nil, apierr.NotFound("module")
	}
	sessions, err := s.sessionRepo.ListByModuleID(dbc, id)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	m.Sessions = sessions
	return m, nil
}

func (s *moduleService) Create(dbc dbctx.Context, in CreateModuleInput) (*types.Module, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("title is required")
	}
	m := &types.Module{
		ID:           uuid.New(),
		Title:        title,
		Description:  trimPtr(in.Description),
		ThumbnailURL: trimPtr(in.ThumbnailURL),
	}
	if _, err := s.moduleRepo.Create(dbc, []*types.Module{m}); err != nil {
		s.log.Warn("Create: insert module failed", "error", err)
		return nil, apierr.FromStore(err)
	}
	m.Sessions = []*types.Session{}
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: realtime.SSEEventModuleChanged, ModuleID: m.ID})
	return m, nil
}

func (s *moduleService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateModuleInput) (*types.Module, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apierr.Validation("missing module id")
	}
	updates := map[string]interface{}{}
	if in.Title.Set {
		if in.Title.Value == nil {
			return nil, apierr.Validation("title is required")
		}
		updates["title"] = *in.Title.Value
	}
	applyOptional(updates, "description", in.Description)
	applyOptional(updates, "thumbnail_url", in.ThumbnailURL)

	if len(updates) > 0 {
		n, err := s.moduleRepo.UpdateFields(dbc, id, updates)
		if err != nil {
			s.log.Warn("Update: module update failed", "error", err, "module_id", id)
			return nil, apierr.FromStore(err)
		}
		if n == 0 {
			return nil, apierr.NotFound("module")
		}
	}
	m, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: realtime.SSEEventModuleChanged, ModuleID: id})
	}
	return m, nil
}

func (s *moduleService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return err
	}
	if id == uuid.Nil {
		return apierr.Validation("missing module id")
	}
	start := time.Now()
	var sessionCount int
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		sessionIDs, err := s.sessionRepo.ListIDsByModuleID(inner, id)
		if err != nil {
			return apierr.FromStore(err)
		}
		sessionCount = len(sessionIDs)
		if err := deleteSessionChildren(inner, sessionIDs, s.timestampRepo, s.noteRepo, s.progressRepo); err != nil {
			return err
		}
		if _, err := s.sessionRepo.DeleteByModuleID(inner, id); err != nil {
			return apierr.FromStore(err)
		}
		n, err := s.moduleRepo.DeleteByID(inner, id)
		if err != nil {
			return apierr.FromStore(err)
		}
		if n == 0 {
			return apierr.NotFound("module")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateModule(id)
	}
	s.log.Info("module deleted", "module_id", id, "sessions", sessionCount, "duration_ms", time.Since(start).Milliseconds())
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: realtime.SSEEventModuleDeleted, ModuleID: id})
	return nil
}

// deleteSessionChildren removes rows that reference sessionIDs. The store is
// migrated without foreign keys, so nothing cascades on its own.
func deleteSessionChildren(dbc dbctx.Context, sessionIDs []uuid.UUID, ts repos.TimestampRepo, notes repos.NoteRepo, progress repos.ProgressRepo) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	if _, err := notes.DeleteBySessionIDs(dbc, sessionIDs); err != nil {
		return apierr.FromStore(err)
	}
	if _, err := ts.DeleteBySessionIDs(dbc, sessionIDs); err != nil {
		return apierr.FromStore(err)
	}
	if _, err := progress.DeleteBySessionIDs(dbc, sessionIDs); err != nil {
		return apierr.FromStore(err)
	}
	return nil
}
