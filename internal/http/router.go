package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/belajar-alkitab-backend/internal/http/handlers"
	httpMW "github.com/yungbote/belajar-alkitab-backend/internal/http/middleware"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

// streamPrefix is exempt from the request timeout.
const streamPrefix = "/api/sse"

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	CORSOrigins    []string
	RequestTimeout time.Duration
	// TraceService enables otelgin spans under this service name.
	TraceService string

	HealthHandler    *httpH.HealthHandler
	MeHandler        *httpH.MeHandler
	ModuleHandler    *httpH.ModuleHandler
	SessionHandler   *httpH.SessionHandler
	TimestampHandler *httpH.TimestampHandler
	NoteHandler      *httpH.NoteHandler
	ProgressHandler  *httpH.ProgressHandler
	AssetHandler     *httpH.AssetHandler
	ProfileHandler   *httpH.ProfileHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceService != "" {
		r.Use(otelgin.Middleware(cfg.TraceService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.RequestTimeout(cfg.RequestTimeout, streamPrefix))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	teacher := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		teacher.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireTeacher())
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	}

	// Me
	if cfg.MeHandler != nil {
		protected.GET("/me", cfg.MeHandler.GetMe)
		protected.GET("/me/access", cfg.MeHandler.Access)
	}

	// Modules
	if cfg.ModuleHandler != nil {
		protected.GET("/modules", cfg.ModuleHandler.ListModules)
		protected.GET("/modules/:id", cfg.ModuleHandler.GetModule)
		protected.GET("/modules/:id/sessions", cfg.ModuleHandler.ListSessions)
		protected.GET("/modules/:id/progress", cfg.ModuleHandler.GetModuleProgress)

		teacher.POST("/modules", cfg.ModuleHandler.CreateModule)
		teacher.PATCH("/modules/:id", cfg.ModuleHandler.UpdateModule)
		teacher.DELETE("/modules/:id", cfg.ModuleHandler.DeleteModule)
		teacher.POST("/modules/:id/sessions", cfg.ModuleHandler.CreateSession)
		teacher.PUT("/modules/:id/sessions/order", cfg.ModuleHandler.ReorderSessions)
	}

	// Sessions
	if cfg.SessionHandler != nil {
		protected.GET("/sessions/:id", cfg.SessionHandler.GetSession)

		teacher.PATCH("/sessions/:id", cfg.SessionHandler.UpdateSession)
		teacher.DELETE("/sessions/:id", cfg.SessionHandler.DeleteSession)
	}

	// Timestamps
	if cfg.TimestampHandler != nil {
		protected.GET("/sessions/:id/timestamps", cfg.TimestampHandler.ListTimestamps)
		protected.GET("/sessions/:id/playback", cfg.TimestampHandler.Playback)

		teacher.POST("/sessions/:id/timestamps", cfg.TimestampHandler.UpsertTimestamp)
		teacher.PATCH("/timestamps/:id", cfg.TimestampHandler.UpdateTimestamp)
		teacher.DELETE("/timestamps/:id", cfg.TimestampHandler.DeleteTimestamp)
	}

	// Notes
	if cfg.NoteHandler != nil {
		protected.GET("/notes", cfg.NoteHandler.ListMyNotes)
		protected.PATCH("/notes/:id", cfg.NoteHandler.UpdateNote)
		protected.DELETE("/notes/:id", cfg.NoteHandler.DeleteNote)
		protected.GET("/sessions/:id/notes", cfg.NoteHandler.ListSessionNotes)
		protected.POST("/sessions/:id/notes", cfg.NoteHandler.CreateNote)
	}

	// Progress
	if cfg.ProgressHandler != nil {
		protected.GET("/progress", cfg.ProgressHandler.ListProgress)
		protected.GET("/progress/overview", cfg.ProgressHandler.Overview)
		protected.GET("/sessions/:id/progress", cfg.ProgressHandler.GetSessionProgress)
		protected.PUT("/sessions/:id/progress", cfg.ProgressHandler.ToggleComplete)
	}

	// Assets
	if cfg.AssetHandler != nil {
		teacher.POST("/assets", cfg.AssetHandler.Upload)
		teacher.DELETE("/assets", cfg.AssetHandler.Delete)
	}

	// Profiles
	if cfg.ProfileHandler != nil {
		teacher.PUT("/profiles/:id/role", cfg.ProfileHandler.SetRole)
	}

	return r
}
