package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type CreateNoteInput struct {
	// TimestampID anchors the note to the slide active when it was written.
	TimestampID *uuid.UUID `json:"timestamp_id"`
	Content     string     `json:"content"`
}

type UpdateNoteInput struct {
	Content *string `json:"content"`
}

// NoteService manages a learner's own notes. Every operation acts on the
// caller's rows only.
type NoteService interface {
	Create(dbc dbctx.Context, sessionID uuid.UUID, in CreateNoteInput) (*types.Note, error)
	// ListMine returns the caller's notes newest first with module and
	// session attached.
	ListMine(dbc dbctx.Context) ([]*types.Note, error)
	ListForSession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Note, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateNoteInput) (*types.Note, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type noteService struct {
	db            *gorm.DB
	log           *logger.Logger
	guard         AccessGuard
	sessionRepo   repos.SessionRepo
	timestampRepo repos.TimestampRepo
	noteRepo      repos.NoteRepo
	notifier      ChangeNotifier
}

func NewNoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	guard AccessGuard,
	sessionRepo repos.SessionRepo,
	timestampRepo repos.TimestampRepo,
	noteRepo repos.NoteRepo,
	notifier ChangeNotifier,
) NoteService {
	return &noteService{
		db:            db,
		log:           baseLog.With("service", "NoteService"),
		guard:         guard,
		sessionRepo:   sessionRepo,
		timestampRepo: timestampRepo,
		noteRepo:      noteRepo,
		notifier:      notifier,
	}
}

func (s *noteService) Create(dbc dbctx.Context, sessionID uuid.UUID, in CreateNoteInput) (*types.Note, error) {
	userID, err := s.guard.RequireUser(dbc)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apierr.Validation("content is required")
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

	var anchor *uuid.UUID
	if in.TimestampID != nil && *in.TimestampID != uuid.Nil {
		ts, err := s.timestampRepo.GetByID(dbc, *in.TimestampID)
		if err != nil {
			return nil, apierr.FromStore(err)
		}
		if ts == nil || ts.SessionID != sess.ID {
			return nil, apierr.Validation("timestamp does not belong to this session")
		}
		id := ts.ID
		anchor = &id
	}

	note := &types.Note{
		ID:          uuid.New(),
		UserID:      userID,
		ModuleID:    sess.ModuleID,
		SessionID:   sess.ID,
		TimestampID: anchor,
		Content:     content,
	}
	if _, err := s.noteRepo.Create(dbc, []*types.Note{note}); err != nil {
		s.log.Warn("Create: insert note failed", "error", err, "user_id", userID)
		return nil, apierr.FromStore(err)
	}
	s.changed(dbc, note)
	return note, nil
}

func (s *noteService) ListMine(dbc dbctx.Context) ([]*types.Note, error) {
	userID, err := s.guard.RequireUser(dbc)
	if err != nil {
		return nil, err
	}
	out, err := s.noteRepo.ListByUserID(dbc, userID)
	if err != nil {
		s.log.Warn("ListMine: load notes failed", "error", err, "user_id", userID)
		return nil, apierr.FromStore(err)
	}
	return out, nil
}

func (s *noteService) ListForSession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Note, error) {
	userID, err := s.guard.RequireUser(dbc)
	if err != nil {
		return nil, err
	}
	if sessionID == uuid.Nil {
		return nil, apierr.Validation("missing session id")
	}
	out, err := s.noteRepo.ListByUserAndSession(dbc, userID, sessionID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	return out, nil
}

// owned loads a note and checks the caller owns it. Another user's note is
// reported as forbidden, not hidden.
func (s *noteService) owned(dbc dbctx.Context, id uuid.UUID) (*types.Note, error) {
	userID, err := s.guard.RequireUser(dbc)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apierr.Validation("missing note id")
	}
	n, err := s.noteRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if n == nil {
		return nil, apierr.NotFound("note")
	}
	if n.UserID != userID {
		return nil, apierr.Forbidden("note belongs to another user")
	}
	return n, nil
}

func (s *noteService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateNoteInput) (*types.Note, error) {
	n, err := s.owned(dbc, id)
	if err != nil {
		return nil, err
	}
	if in.Content == nil {
		return n, nil
	}
	content := strings.TrimSpace(*in.Content)
	if content == "" {
		return nil, apierr.Validation("content is required")
	}
	if _, err := s.noteRepo.UpdateFields(dbc, id, map[string]interface{}{"content": content}); err != nil {
		return nil, apierr.FromStore(err)
	}
	updated, err := s.noteRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if updated == nil {
		return nil, apierr.NotFound("note")
	}
	s.changed(dbc, updated)
	return updated, nil
}

func (s *noteService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	n, err := s.owned(dbc, id)
	if err != nil {
		return err
	}
	if _, err := s.noteRepo.DeleteByID(dbc, id); err != nil {
		return apierr.FromStore(err)
	}
	s.changed(dbc, n)
	return nil
}

func (s *noteService) changed(dbc dbctx.Context, n *types.Note) {
	notify(s.notifier, dbc.Ctx, realtime.ChangeEvent{
		Kind:      realtime.SSEEventNoteChanged,
		ModuleID:  n.ModuleID,
		SessionID: n.SessionID,
		UserID:    n.UserID,
	})
}
