package services

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/domain/user"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

const defaultRoleTTL = time.Minute

// ProfileService resolves an identity to its role. Roles are fetched lazily
// and memoized per identity for a short TTL.
type ProfileService interface {
	// Ensure returns the profile for userID, creating a learner profile the
	// first time an identity is seen.
	Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	GetRole(dbc dbctx.Context, userID uuid.UUID) (string, error)
	// SetRole changes another identity's role. The caller must be a teacher.
	SetRole(dbc dbctx.Context, targetID uuid.UUID, role string) (*types.Profile, error)
}

type roleEntry struct {
	role    string
	expires time.Time
}

type profileService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ProfileRepo
	ttl  time.Duration
	now  func() time.Time

	mu    sync.Mutex
	roles map[uuid.UUID]roleEntry
}

func NewProfileService(db *gorm.DB, baseLog *logger.Logger, repo repos.ProfileRepo, ttl time.Duration) ProfileService {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &profileService{
		db:    db,
		log:   baseLog.With("service", "ProfileService"),
		repo:  repo,
		ttl:   ttl,
		now:   time.Now,
		roles: make(map[uuid.UUID]roleEntry),
	}
}

func (s *profileService) Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated("not authenticated")
	}
	p, err := s.repo.GetByID(dbc, userID)
	if err != nil {
		s.log.Warn("Ensure: load profile failed", "error", err, "user_id", userID)
		return nil, apierr.FromStore(err)
	}
	if p != nil {
		return p, nil
	}
	if err := s.repo.Ensure(dbc, &types.Profile{ID: userID, Role: types.RoleLearner}); err != nil {
		s.log.Warn("Ensure: create profile failed", "error", err, "user_id", userID)
		return nil, apierr.FromStore(err)
	}
	// Re-read: a concurrent request may have created the row first.
	p, err = s.repo.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.FromStore(err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile")
	}
	return p, nil
}

func (s *profileService) GetRole(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", apierr.Unauthenticated("not authenticated")
	}
	if role, ok := s.cached(userID); ok {
		return role, nil
	}
	p, err := s.Ensure(dbc, userID)
	if err != nil {
		return "", err
	}
	s.remember(userID, p.Role)
	return p.Role, nil
}

func (s *profileService) SetRole(dbc dbctx.Context, targetID uuid.UUID, role string) (*types.Profile, error) {
	callerID := ctxutil.UserID(dbc.Ctx)
	if callerID == uuid.Nil {
		return nil, apierr.Unauthenticated("not authenticated")
	}
	callerRole, err := s.GetRole(dbc, callerID)
	if err != nil {
		return nil, err
	}
	if callerRole != types.RoleTeacher {
		return nil, apierr.Forbidden("teacher role required")
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !user.ValidRole(role) {
		return nil, apierr.Validationf("invalid role %q", role)
	}
	if targetID == uuid.Nil {
		return nil, apierr.Validation("missing profile id")
	}

	var out *types.Profile
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.Ensure(inner, targetID); err != nil {
			return err
		}
		if _, err := s.repo.UpdateRole(inner, targetID, role); err != nil {
			return apierr.FromStore(err)
		}
		p, err := s.repo.GetByID(inner, targetID)
		if err != nil {
			return apierr.FromStore(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.forget(targetID)
	s.log.Info("profile role changed", "user_id", targetID, "role", role)
	return out, nil
}

func (s *profileService) cached(userID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.roles[userID]
	if !ok {
		return "", false
	}
	if s.now().After(e.expires) {
		delete(s.roles, userID)
		return "", false
	}
	return e.role, true
}

func (s *profileService) remember(userID uuid.UUID, role string) {
	s.mu.Lock()
	s.roles[userID] = roleEntry{role: role, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *profileService) forget(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.roles, userID)
	s.mu.Unlock()
}
