package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.sessions.Get(requestDBC(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"session":              s,
		"reflection_questions": s.Questions(),
	})
}

// PATCH /api/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSessionInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.sessions.Update(requestDBC(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.sessions.Delete(requestDBC(c), id); err != nil {
		fail(c, err)
		return
	}
	response.RespondNoContent(c)
}
