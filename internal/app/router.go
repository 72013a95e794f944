package app

import (
	apphttp "github.com/yungbote/belajar-alkitab-backend/internal/http"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *apphttp.Server {
	traceService := ""
	if cfg.Otel.Enabled {
		traceService = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(cfg.Addr(), apphttp.RouterConfig{
		Log:              log,
		AuthMiddleware:   mw.Auth,
		CORSOrigins:      cfg.CORSAllowOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		TraceService:     traceService,
		HealthHandler:    h.Health,
		MeHandler:        h.Me,
		ModuleHandler:    h.Module,
		SessionHandler:   h.Session,
		TimestampHandler: h.Timestamp,
		NoteHandler:      h.Note,
		ProgressHandler:  h.Progress,
		AssetHandler:     h.Asset,
		ProfileHandler:   h.Profile,
		RealtimeHandler:  h.Realtime,
	})
}
