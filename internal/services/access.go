package services

import (
	"github.com/google/uuid"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type AccessDecision int

const (
	AccessAllow AccessDecision = iota
	AccessRequireLogin
	AccessForbidden
)

func (d AccessDecision) String() string {
	switch d {
	case AccessAllow:
		return "allow"
	case AccessRequireLogin:
		return "require_login"
	case AccessForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// RedirectPath is where a browser client should be sent for d. Allowed
// requests stay where they are.
func (d AccessDecision) RedirectPath() string {
	switch d {
	case AccessRequireLogin:
		return "/login"
	case AccessForbidden:
		return "/"
	default:
		return ""
	}
}

// Err converts a denial into the matching authorization error.
func (d AccessDecision) Err() error {
	switch d {
	case AccessRequireLogin:
		return apierr.Unauthenticated("login required")
	case AccessForbidden:
		return apierr.Forbidden("teacher role required")
	default:
		return nil
	}
}

// Decide is the access gate. No identity requires login; a teacher-only
// resource with a missing or non-teacher profile is forbidden.
func Decide(rd *ctxutil.RequestData, profile *types.Profile, requireTeacher bool) AccessDecision {
	if rd == nil || rd.UserID == uuid.Nil {
		return AccessRequireLogin
	}
	if requireTeacher && !profile.IsTeacher() {
		return AccessForbidden
	}
	return AccessAllow
}

func CanAccess(rd *ctxutil.RequestData, profile *types.Profile, requireTeacher bool) bool {
	return Decide(rd, profile, requireTeacher) == AccessAllow
}

// AccessGuard applies Decide to the identity carried by a request context.
type AccessGuard interface {
	// Check reports the decision for the caller. A failed role lookup is
	// returned as the error, never folded into a denial.
	Check(dbc dbctx.Context, requireTeacher bool) (AccessDecision, error)
	// RequireTeacher returns the caller's id when they hold the teacher role.
	RequireTeacher(dbc dbctx.Context) (uuid.UUID, error)
	// RequireUser returns the caller's id when any identity is present.
	RequireUser(dbc dbctx.Context) (uuid.UUID, error)
}

type accessGuard struct {
	log      *logger.Logger
	profiles ProfileService
}

func NewAccessGuard(baseLog *logger.Logger, profiles ProfileService) AccessGuard {
	return &accessGuard{log: baseLog.With("service", "AccessGuard"), profiles: profiles}
}

func (g *accessGuard) Check(dbc dbctx.Context, requireTeacher bool) (AccessDecision, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return AccessRequireLogin, nil
	}
	if !requireTeacher {
		return AccessAllow, nil
	}
	role, err := g.profiles.GetRole(dbc, rd.UserID)
	if err != nil {
		g.log.Warn("role lookup failed", "error", err, "user_id", rd.UserID)
		return AccessForbidden, err
	}
	return Decide(rd, &types.Profile{ID: rd.UserID, Role: role}, true), nil
}

func (g *accessGuard) RequireTeacher(dbc dbctx.Context) (uuid.UUID, error) {
	d, err := g.Check(dbc, true)
	if err != nil {
		return uuid.Nil, err
	}
	if d != AccessAllow {
		return uuid.Nil, d.Err()
	}
	return ctxutil.UserID(dbc.Ctx), nil
}

func (g *accessGuard) RequireUser(dbc dbctx.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if d := Decide(rd, nil, false); d != AccessAllow {
		return uuid.Nil, d.Err()
	}
	return rd.UserID, nil
}
