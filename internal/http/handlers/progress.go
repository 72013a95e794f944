package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type toggleProgressRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// GET /api/sessions/:id/progress
func (h *ProgressHandler) GetSessionProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	p, err := h.progress.GetProgress(dbc, ctxutil.UserID(dbc.Ctx), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"session_id": id,
		"completed":  p != nil && p.Completed,
		"progress":   p,
	})
}

// PUT /api/sessions/:id/progress
//
// The user is always the caller; there is no way to write another user's row.
func (h *ProgressHandler) ToggleComplete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req toggleProgressRequest
	if !bindJSON(c, &req) {
		return
	}
	dbc := requestDBC(c)
	p, err := h.progress.ToggleComplete(dbc, ctxutil.UserID(dbc.Ctx), id, *req.Completed)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

// GET /api/progress
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	dbc := requestDBC(c)
	rows, err := h.progress.ListProgress(dbc, ctxutil.UserID(dbc.Ctx))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}

// GET /api/progress/overview
func (h *ProgressHandler) Overview(c *gin.Context) {
	dbc := requestDBC(c)
	views, err := h.progress.Overview(dbc, ctxutil.UserID(dbc.Ctx))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": views})
}
