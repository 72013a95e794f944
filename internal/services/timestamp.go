package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/playback"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

// UpsertTimestampInput carries the position either as "m:ss" text (Time) or
// as raw seconds. Time wins when both are given.
type UpsertTimestampInput struct {
	ID       *uuid.UUID `json:"id"`
	Time     string     `json:"time"`
	Seconds  *int       `json:"timestamp_seconds"`
	SlideURL *string    `json:"slide_url"`
}

type UpdateTimestampInput struct {
	Time     string         `json:"time"`
	Seconds  *int           `json:"timestamp_seconds"`
	SlideURL OptionalString `json:"slide_url"`
}

type TimestampService interface {
	// List returns the session's timestamps by ascending second.
	List(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Timestamp, error)
	Upsert(dbc dbctx.Context, sessionID uuid.UUID, in UpsertTimestampInput) (*types.Timestamp, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateTimestampInput) (*types.Timestamp, error)
	// Delete removes the timestamp. Notes anchored to it keep their content
	// and lose the anchor.
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// Playback resolves what the player shows at second t of the session.
	Playback(dbc dbctx.Context, sessionID uuid.UUID, t int) (playback.State, error)
}

type timestampService struct {
	db            *gorm.DB
	log           *logger.Logger
	guard         AccessGuard
	sessionRepo   repos.SessionRepo
	timestampRepo repos.TimestampRepo
	noteRepo      repos.NoteRepo
	notifier      ChangeNotifier
}

func NewTimestampService(
	db *gorm.DB,
	baseLog *logger.Logger,
	guard AccessGuard,
	sessionRepo repos.SessionRepo,
	timestampRepo repos.TimestampRepo,
	noteRepo repos.NoteRepo,
	notifier ChangeNotifier,
) TimestampService {
	return &timestampService{
		db:            db,
		log:           baseLog.With("service", "TimestampService"),
		guard:         guard,
		sessionRepo:   sessionRepo,
		timestampRepo: timestampRepo,
		noteRepo:      noteRepo,
		notifier:      notifier,
	}
}

func (s *timestampService) session(dbc dbctx.Context, sessionID uuid.UUID) (*types.Session, error) {
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
	return sess, nil
}

func (s *timestampService) List(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Timestamp, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return nil, err
	}
	if _, err := s.session(dbc, sessionID); err != nil {
		return nil, err
	}
	out, err := s.timestampRepo.ListBySessionID(dbc, sessionID)
	if err != nil {
		s.log.Warn("List: load timestamps failed", "error", err, "id", sessionID)
		return nil, apierr.FromStore(err)
	}
	return out, nil
}

// positionSeconds validates the position before anything is persisted. ok is
// false when neither form was supplied.
func positionSeconds(text string, seconds *int) (sec int, ok bool, err error) {
	if strings.TrimSpace(text) != "" {
		sec, err = playback.ParseMMSS(text)
		if err != nil {
			return 0, false, err
		}
		return sec, true, nil
	}
	if seconds != nil {
		if *seconds < 0 {
			return 0, false, apierr.Validation("timestamp_seconds must be >= 0")
		}
		return *seconds, true, nil
	}
	return 0, false, nil
}

func (s *timestampService) Upsert(dbc dbctx.Context, sessionID uuid.UUID, in UpsertTimestampInput) (*types.Timestamp, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	sec, ok, err := positionSeconds(in.Time, in.Seconds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.Validation("time is required")
	}
	slide := trimPtr(in.SlideURL)

	var out *types.Timestamp
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.session(inner, sessionID)
		if err != nil {
			return err
		}
		if in.ID != nil && *in.ID != uuid.Nil {
			existing, err := s.timestampRepo.GetByID(inner, *in.ID)
			if err != nil {
				return apierr.FromStore(err)
			}
			if existing == nil || existing.SessionID != sess.ID {
				return apierr.NotFound("timestamp")
			}
			if _, err := s.timestampRepo.UpdateFields(inner, existing.ID, map[string]interface{}{
				"timestamp_seconds": sec,
				"slide_url":         slide,
			}); err != nil {
				return apierr.FromStore(err)
			}
			out, err = s.timestampRepo.GetByID(inner, existing.ID)
			if err != nil {
				return apierr.FromStore(err)
			}
			if out == nil {
				return apierr.NotFound("timestamp")
			}
			return nil
		}
		row := &types.Timestamp{ID: uuid.New(), SessionID: sess.ID, TimestampSeconds: sec, SlideURL: slide}
		if _, err := s.timestampRepo.Create(inner, []*types.Timestamp{row}); err != nil {
			s.log.Warn("Upsert: insert timestamp failed", "error", err, "id", sessionID)
			return apierr.FromStore(err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(dbc, out.SessionID)
	return out, nil
}

func (s *timestampService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateTimestampInput) (*types.Timestamp, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apierr.Validation("missing timestamp id")
	}
	sec, ok, err := positionSeconds(in.Time, in.Seconds)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if ok {
		updates["timestamp_seconds"] = sec
	}
	applyOptional(updates, "slide_url", in.SlideURL)

	if len(updates) > 0 {
		n, err := s.timestampRepo.UpdateFields(dbc, id, updates)
		if err != nil {
			return nil, apierr.FromStore(err)
		}
		if n == 0 {
			return nil, apierr.NotFound("timestamp")
		}
	}
	ts, err := s.timestampRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if ts == nil {
		return nil, apierr.NotFound("timestamp")
	}
	if len(updates) > 0 {
		s.changed(dbc, ts.SessionID)
	}
	return ts, nil
}

func (s *timestampService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return err
	}
	if id == uuid.Nil {
		return apierr.Validation("missing timestamp id")
	}
	var sessionID uuid.UUID
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		ts, err := s.timestampRepo.GetByID(inner, id)
		if err != nil {
			return apierr.FromStore(err)
		}
		if ts == nil {
			return apierr.NotFound("timestamp")
		}
		sessionID = ts.SessionID
		if _, err := s.noteRepo.ClearTimestamp(inner, []uuid.UUID{id}); err != nil {
			return apierr.FromStore(err)
		}
		if _, err := s.timestampRepo.DeleteByID(inner, id); err != nil {
			return apierr.FromStore(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(dbc, sessionID)
	return nil
}

func (s *timestampService) Playback(dbc dbctx.Context, sessionID uuid.UUID, t int) (playback.State, error) {
	if _, err := s.guard.RequireUser(dbc); err != nil {
		return playback.State{}, err
	}
	if t < 0 {
		return playback.State{}, apierr.Validation("t must be >= 0")
	}
	sess, err := s.session(dbc, sessionID)
	if err != nil {
		return playback.State{}, err
	}
	rows, err := s.timestampRepo.ListBySessionID(dbc, sessionID)
	if err != nil {
		return playback.State{}, apierr.FromStore(err)
	}
	return playback.NewTimeline(rows, sess.SlidesURL).StateAt(t), nil
}

func (s *timestampService) changed(dbc dbctx.Context, sessionID uuid.UUID) {
	ev := realtime.ChangeEvent{Kind: realtime.SSEEventTimestampsChanged, SessionID: sessionID}
	if sess, err := s.sessionRepo.GetByID(dbc, sessionID); err == nil && sess != nil {
		ev.ModuleID = sess.ModuleID
	}
	notify(s.notifier, dbc.Ctx, ev)
}
