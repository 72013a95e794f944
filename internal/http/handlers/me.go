package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type MeHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
	guard    services.AccessGuard
}

func NewMeHandler(log *logger.Logger, profiles services.ProfileService, guard services.AccessGuard) *MeHandler {
	return &MeHandler{log: log.With("handler", "MeHandler"), profiles: profiles, guard: guard}
}

// GET /api/me
func (h *MeHandler) GetMe(c *gin.Context) {
	dbc := requestDBC(c)
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		fail(c, services.AccessRequireLogin.Err())
		return
	}
	p, err := h.profiles.Ensure(dbc, rd.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"user": gin.H{
			"id":         rd.UserID,
			"email":      rd.Email,
			"expires_at": rd.ExpiresAt,
		},
		"profile":    p,
		"is_teacher": p.IsTeacher(),
	})
}

// GET /api/me/access?require=teacher
//
// Answers the page guard question without touching any resource.
func (h *MeHandler) Access(c *gin.Context) {
	requireTeacher := c.Query("require") == "teacher"
	d, err := h.guard.Check(requestDBC(c), requireTeacher)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"decision": d.String(),
		"allowed":  d == services.AccessAllow,
		"redirect": d.RedirectPath(),
	})
}
