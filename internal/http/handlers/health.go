package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports whether the store answers a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db == nil {
		response.RespondOK(c, gin.H{"status": "ok"})
		return
	}
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		fail(c, apierr.Store(err))
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}
