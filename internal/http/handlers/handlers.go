package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/playback"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
)

// RegisterValidators adds the custom binding rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not validator/v10")
	}
	return v.RegisterValidation("mmss", func(fl validator.FieldLevel) bool {
		return playback.ValidMMSS(fl.Field().String())
	})
}

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.Validationf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondAPIError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		parts := make([]string, 0, len(ve))
		for _, fe := range ve {
			parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return apierr.Validation(strings.Join(parts, "; "))
	}
	return apierr.Validationf("invalid request body: %v", err)
}

// fail renders err and attaches it to the context for the access log.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondAPIError(c, err)
}
