package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/http/response"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

// HeaderRedirect tells page clients where a denied request should go.
const HeaderRedirect = "X-Redirect-To"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	guard       services.AccessGuard
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, guard services.AccessGuard) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService, guard: guard}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.Header(HeaderRedirect, services.AccessRequireLogin.RedirectPath())
			response.AbortAPIError(c, apierr.Unauthenticated("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.Header(HeaderRedirect, services.AccessRequireLogin.RedirectPath())
			response.AbortAPIError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.AbortAPIError(c, apierr.Unauthenticated("missing identity"))
			return
		}
		c.Next()
	}
}

// RequireTeacher must run after RequireAuth.
func (am *AuthMiddleware) RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.guard == nil {
			response.AbortAPIError(c, apierr.Forbidden("access guard not configured"))
			return
		}
		decision, err := am.guard.Check(dbctx.Context{Ctx: c.Request.Context()}, true)
		if err != nil {
			am.log.Warn("Teacher check failed", "error", err)
			response.AbortAPIError(c, err)
			return
		}
		if decision != services.AccessAllow {
			c.Header(HeaderRedirect, decision.RedirectPath())
			response.AbortAPIError(c, decision.Err())
			return
		}
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
