package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/sse/stream
//
// Every client hears catalogue changes plus its own progress and note events.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		fail(c, apierr.Unauthenticated("not authenticated"))
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.ChannelContent)
	h.hub.AddChannel(client, userID.String())
	h.log.Info("SSEStream open", "user_id", userID.String(), "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSEStream closed", "user_id", userID.String(), "client_id", client.ID.String())
}
