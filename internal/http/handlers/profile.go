package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// PUT /api/profiles/:id/role
func (h *ProfileHandler) SetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.SetRole(requestDBC(c), id, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}
