package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/playback"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type TimestampHandler struct {
	timestamps services.TimestampService
}

func NewTimestampHandler(timestamps services.TimestampService) *TimestampHandler {
	return &TimestampHandler{timestamps: timestamps}
}

type upsertTimestampRequest struct {
	ID       *uuid.UUID `json:"id"`
	Time     string     `json:"time" binding:"omitempty,mmss"`
	Seconds  *int       `json:"timestamp_seconds" binding:"omitempty,min=0"`
	SlideURL *string    `json:"slide_url"`
}

type updateTimestampRequest struct {
	Time     string                  `json:"time" binding:"omitempty,mmss"`
	Seconds  *int                    `json:"timestamp_seconds" binding:"omitempty,min=0"`
	SlideURL services.OptionalString `json:"slide_url"`
}

// GET /api/sessions/:id/timestamps
func (h *TimestampHandler) ListTimestamps(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rows, err := h.timestamps.List(requestDBC(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timestamps": withPositions(rows)})
}

// POST /api/sessions/:id/timestamps
func (h *TimestampHandler) UpsertTimestamp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req upsertTimestampRequest
	if !bindJSON(c, &req) {
		return
	}
	ts, err := h.timestamps.Upsert(requestDBC(c), id, services.UpsertTimestampInput{
		ID:       req.ID,
		Time:     req.Time,
		Seconds:  req.Seconds,
		SlideURL: req.SlideURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timestamp": ts, "time": playback.FormatSeconds(ts.TimestampSeconds)})
}

// PATCH /api/timestamps/:id
func (h *TimestampHandler) UpdateTimestamp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateTimestampRequest
	if !bindJSON(c, &req) {
		return
	}
	ts, err := h.timestamps.Update(requestDBC(c), id, services.UpdateTimestampInput{
		Time:     req.Time,
		Seconds:  req.Seconds,
		SlideURL: req.SlideURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timestamp": ts, "time": playback.FormatSeconds(ts.TimestampSeconds)})
}

// DELETE /api/timestamps/:id
func (h *TimestampHandler) DeleteTimestamp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.timestamps.Delete(requestDBC(c), id); err != nil {
		fail(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/sessions/:id/playback?t=90 (or t=1:30)
func (h *TimestampHandler) Playback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := parsePosition(c.Query("t"))
	if err != nil {
		fail(c, err)
		return
	}
	st, err := h.timestamps.Playback(requestDBC(c), id, t)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, st)
}

func parsePosition(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if strings.Contains(raw, ":") {
		return playback.ParseMMSS(raw)
	}
	t, err := strconv.Atoi(raw)
	if err != nil || t < 0 {
		return 0, apierr.Validationf("invalid playback position %q", raw)
	}
	return t, nil
}

// timestampView adds the m:ss rendering the editor shows next to each row.
type timestampView struct {
	*types.Timestamp
	Time string `json:"time"`
}

func withPositions(rows []*types.Timestamp) []timestampView {
	out := make([]timestampView, 0, len(rows))
	for _, ts := range rows {
		out = append(out, timestampView{Timestamp: ts, Time: playback.FormatSeconds(ts.TimestampSeconds)})
	}
	return out
}
