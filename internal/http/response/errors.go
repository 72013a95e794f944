package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
)

// RespondAPIError renders err with the status and code of its apierr kind.
// Store and internal failures never leak their cause.
func RespondAPIError(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	RespondError(c, status, code, errors.New(apierr.PublicMessage(err)))
}

// AbortAPIError is RespondAPIError for middleware.
func AbortAPIError(c *gin.Context, err error) {
	RespondAPIError(c, err)
	c.Abort()
}
