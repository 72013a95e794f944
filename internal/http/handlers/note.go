package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type NoteHandler struct {
	notes services.NoteService
}

func NewNoteHandler(notes services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type createNoteRequest struct {
	TimestampID *uuid.UUID `json:"timestamp_id"`
	Content     string     `json:"content" binding:"required"`
}

type updateNoteRequest struct {
	Content *string `json:"content" binding:"required"`
}

// POST /api/sessions/:id/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notes.Create(requestDBC(c), id, services.CreateNoteInput{
		TimestampID: req.TimestampID,
		Content:     req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"note": n})
}

// GET /api/sessions/:id/notes
func (h *NoteHandler) ListSessionNotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	notes, err := h.notes.ListForSession(requestDBC(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

// GET /api/notes
func (h *NoteHandler) ListMyNotes(c *gin.Context) {
	notes, err := h.notes.ListMine(requestDBC(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

// PATCH /api/notes/:id
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notes.Update(requestDBC(c), id, services.UpdateNoteInput{Content: req.Content})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"note": n})
}

// DELETE /api/notes/:id
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.notes.Delete(requestDBC(c), id); err != nil {
		fail(c, err)
		return
	}
	response.RespondNoContent(c)
}
