package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

// multipartOverhead covers form boundaries and the non-file fields.
const multipartOverhead = 1 << 20

type AssetHandler struct {
	assets   services.AssetService
	maxBytes int64
}

func NewAssetHandler(assets services.AssetService, maxBytes int64) *AssetHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &AssetHandler{assets: assets, maxBytes: maxBytes}
}

// POST /api/assets (multipart: kind, file)
func (h *AssetHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, apierr.Validationf("file exceeds %d bytes", h.maxBytes))
			return
		}
		fail(c, apierr.Validation("missing file"))
		return
	}
	if fh.Size > h.maxBytes {
		fail(c, apierr.Validationf("file exceeds %d bytes", h.maxBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, apierr.Validationf("read upload: %v", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		fail(c, apierr.Validationf("read upload: %v", err))
		return
	}

	a, err := h.assets.Upload(requestDBC(c), services.UploadAssetInput{
		Kind:     services.AssetKind(c.PostForm("kind")),
		Filename: fh.Filename,
		Data:     data,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": a})
}

// DELETE /api/assets?key=sessions/<file>
func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.assets.Delete(requestDBC(c), c.Query("key")); err != nil {
		fail(c, err)
		return
	}
	response.RespondNoContent(c)
}
