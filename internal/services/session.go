package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/domain/learning"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type CreateSessionInput struct {
	Title               string   `json:"title"`
	Description         *string  `json:"description"`
	ThumbnailURL        *string  `json:"thumbnail_url"`
	YoutubeURL          *string  `json:"youtube_url"`
	SlidesURL           *string  `json:"slides_url"`
	TeacherNotes        *string  `json:"teacher_notes"`
	ReflectionQuestions []string `json:"reflection_questions"`
	// OrderIndex pins the position; nil appends after the last session.
	OrderIndex *int `json:"order_index"`
}

type UpdateSessionInput struct {
	Title               OptionalString  `json:"title"`
	Description         OptionalString  `json:"description"`
	ThumbnailURL        OptionalString  `json:"thumbnail_url"`
	YoutubeURL          OptionalString  `json:"youtube_url"`
	SlidesURL           OptionalString  `json:"slides_url"`
	TeacherNotes        OptionalString  `json:"teacher_notes"`
	ReflectionQuestions OptionalStrings `json:"reflection_questions"`
	OrderIndex          *int            `json:"order_index"`
}

type SessionService interface {
	ListForModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Session, error)
	// Get returns the session with its module attached.
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	Create(dbc dbctx.Context, moduleID uuid.UUID, in CreateSessionInput) (*types.Session, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateSessionInput) (*types.Session, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// Reorder assigns order_index 1..n following orderedIDs, which must name
	// every session of the module exactly once.
	Reorder(dbc dbctx.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) ([]*types.Session, error)
}

type sessionService struct {
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

func NewSessionService(
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
) SessionService {
	return &sessionService{
		db:            db,
		log:           baseLog.With("service", "SessionService"),
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

func (s *sessionService) ListForModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Session, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return nil, err
	}
	if err := s.requireModule(dbc, moduleID); err != nil {
		return nil, err
	}
	out, err := s.sessionRepo.ListByModuleID(dbc, moduleID)
	if err != nil {
		s.log.Warn("ListForModule: load sessions failed", "error", err, "module_id", moduleID)
		return nil, apierr.FromStore(err)
	}
	return out, nil
}

func (s *sessionService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return nil, err
	}
	return s.load(dbc, id)
}

func (s *sessionService) load(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation("missing session id")
	}
	sess, err := s.sessionRepo.GetByIDWithModule(dbc, id)
	if err != nil {
		s.log.Warn("load session failed", "error", err, "id", id)
		return nil, apierr.FromStore(err)
	}
	if sess == nil {
		return nil, apierr.NotFound("session")
	}
	return sess, nil
}

func (s *sessionService) requireModule(dbc dbctx.Context, moduleID uuid.UUID) error {
	if moduleID == uuid.Nil {
		return apierr.Validation("missing module id")
	}
	m, err := s.moduleRepo.GetByID(dbc, moduleID)
	if err != nil {
		return apierr.FromStore(err)
	}
	if m == nil {
		return apierr.NotFound("module")
	}
	return nil
}

func (s *sessionService) Create(dbc dbctx.Context, moduleID uuid.UUID, in CreateSessionInput) (*types.Session, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("title is required")
	}
	if in.OrderIndex != nil && *in.OrderIndex < 0 {
		return nil, apierr.Validation("order_index must be >= 0")
	}

	sess := &types.Session{
		ID:                  uuid.New(),
		ModuleID:            moduleID,
		Title:               title,
		Description:         trimPtr(in.Description),
		ThumbnailURL:        trimPtr(in.ThumbnailURL),
		YoutubeURL:          trimPtr(in.YoutubeURL),
		SlidesURL:           trimPtr(in.SlidesURL),
		TeacherNotes:        trimPtr(in.TeacherNotes),
		ReflectionQuestions: learning.EncodeQuestions(in.ReflectionQuestions),
	}
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		if err := s.requireModule(inner, moduleID); err != nil {
			return err
		}
		if in.OrderIndex != nil {
			sess.OrderIndex = *in.OrderIndex
		} else {
			max, err := s.sessionRepo.MaxOrderIndex(inner, moduleID)
			if err != nil {
				return apierr.FromStore(err)
			}
			sess.OrderIndex = max + 1
		}
		if _, err := s.sessionRepo.Create(inner, []*types.Session{sess}); err != nil {
			s.log.Warn("Create: insert session failed", "error", err, "module_id", moduleID)
			return apierr.FromStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.sessionSetChanged(dbc, moduleID, sess.ID, realtime.SSEEventSessionChanged)
	return sess, nil
}

func (s *sessionService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateSessionInput) (*types.Session, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apierr.Validation("missing session id")
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
	applyOptional(updates, "youtube_url", in.YoutubeURL)
	applyOptional(updates, "slides_url", in.SlidesURL)
	applyOptional(updates, "teacher_notes", in.TeacherNotes)
	if in.ReflectionQuestions.Set {
		if qs := learning.EncodeQuestions(in.ReflectionQuestions.Value); qs != nil {
			updates["reflection_questions"] = qs
		} else {
			updates["reflection_questions"] = nil
		}
	}
	if in.OrderIndex != nil {
		if *in.OrderIndex < 0 {
			return nil, apierr.Validation("order_index must be >= 0")
		}
		updates["order_index"] = *in.OrderIndex
	}

	if len(updates) > 0 {
		n, err := s.sessionRepo.UpdateFields(dbc, id, updates)
		if err != nil {
			s.log.Warn("Update: session update failed", "error", err, "id", id)
			return nil, apierr.FromStore(err)
		}
		if n == 0 {
			return nil, apierr.NotFound("session")
		}
	}
	sess, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: realtime.SSEEventSessionChanged, ModuleID: sess.ModuleID, SessionID: id})
	}
	return sess, nil
}

func (s *sessionService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return err
	}
	if id == uuid.Nil {
		return apierr.Validation("missing session id")
	}
	var moduleID uuid.UUID
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.sessionRepo.GetByID(inner, id)
		if err != nil {
			return apierr.FromStore(err)
		}
		if sess == nil {
			return apierr.NotFound("session")
		}
		moduleID = sess.ModuleID
		if err := deleteSessionChildren(inner, []uuid.UUID{id}, s.timestampRepo, s.noteRepo, s.progressRepo); err != nil {
			return err
		}
		if _, err := s.sessionRepo.DeleteByID(inner, id); err != nil {
			return apierr.FromStore(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.sessionSetChanged(dbc, moduleID, id, realtime.SSEEventSessionDeleted)
	return nil
}

func (s *sessionService) Reorder(dbc dbctx.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) ([]*types.Session, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	var out []*types.Session
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		if err := s.requireModule(inner, moduleID); err != nil {
			return err
		}
		current, err := s.sessionRepo.ListIDsByModuleID(inner, moduleID)
		if err != nil {
			return apierr.FromStore(err)
		}
		if err := checkPermutation(current, orderedIDs); err != nil {
			return err
		}
		for i, id := range orderedIDs {
			if _, err := s.sessionRepo.UpdateFields(inner, id, map[string]interface{}{"order_index": i + 1}); err != nil {
				return apierr.FromStore(err)
			}
		}
		out, err = s.sessionRepo.ListByModuleID(inner, moduleID)
		if err != nil {
			return apierr.FromStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: realtime.SSEEventSessionChanged, ModuleID: moduleID})
	return out, nil
}

func (s *sessionService) sessionSetChanged(dbc dbctx.Context, moduleID, sessionID uuid.UUID, kind realtime.SSEEvent) {
	if s.cache != nil {
		s.cache.InvalidateModule(moduleID)
	}
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{Kind: kind, ModuleID: moduleID, SessionID: sessionID})
}

func checkPermutation(current, ordered []uuid.UUID) error {
	if len(current) != len(ordered) {
		return apierr.Validationf("expected %d session ids, got %d", len(current), len(ordered))
	}
	want := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	seen := make(map[uuid.UUID]bool, len(ordered))
	for _, id := range ordered {
		if !want[id] {
			return apierr.Validationf("session %s does not belong to this module", id)
		}
		if seen[id] {
			return apierr.Validationf("session %s listed twice", id)
		}
		seen[id] = true
	}
	return nil
}
