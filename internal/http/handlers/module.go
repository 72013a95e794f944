package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type ModuleHandler struct {
	modules  services.ModuleService
	sessions services.SessionService
	progress services.ProgressService
}

func NewModuleHandler(modules services.ModuleService, sessions services.SessionService, progress services.ProgressService) *ModuleHandler {
	return &ModuleHandler{modules: modules, sessions: sessions, progress: progress}
}

// GET /api/modules?order=desc
func (h *ModuleHandler) ListModules(c *gin.Context) {
	modules, err := h.modules.List(requestDBC(c), c.Query("order") == "desc")
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": modules})
}

// GET /api/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.modules.Get(requestDBC(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// POST /api/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req services.CreateModuleInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.modules.Create(requestDBC(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": m})
}

// PATCH /api/modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateModuleInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.modules.Update(requestDBC(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// DELETE /api/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.modules.Delete(requestDBC(c), id); err != nil {
		fail(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/modules/:id/sessions
func (h *ModuleHandler) ListSessions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessions.ListForModule(requestDBC(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// POST /api/modules/:id/sessions
func (h *ModuleHandler) CreateSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.CreateSessionInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.sessions.Create(requestDBC(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

type reorderRequest struct {
	SessionIDs []uuid.UUID `json:"session_ids" binding:"required,min=1"`
}

// PUT /api/modules/:id/sessions/order
func (h *ModuleHandler) ReorderSessions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	sessions, err := h.sessions.Reorder(requestDBC(c), id, req.SessionIDs)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/modules/:id/progress
func (h *ModuleHandler) GetModuleProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	dbc := requestDBC(c)
	sum, err := h.progress.GetModuleProgress(dbc, ctxutil.UserID(dbc.Ctx), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module_id": id, "progress": sum})
}
