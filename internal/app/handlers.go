package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/belajar-alkitab-backend/internal/http/handlers"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Me        *httpH.MeHandler
	Module    *httpH.ModuleHandler
	Session   *httpH.SessionHandler
	Timestamp *httpH.TimestampHandler
	Note      *httpH.NoteHandler
	Progress  *httpH.ProgressHandler
	Asset     *httpH.AssetHandler
	Profile   *httpH.ProfileHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Me:        httpH.NewMeHandler(log, s.Profile, s.Guard),
		Module:    httpH.NewModuleHandler(s.Module, s.Session, s.Progress),
		Session:   httpH.NewSessionHandler(s.Session),
		Timestamp: httpH.NewTimestampHandler(s.Timestamp),
		Note:      httpH.NewNoteHandler(s.Note),
		Progress:  httpH.NewProgressHandler(s.Progress),
		Asset:     httpH.NewAssetHandler(s.Asset, int64(cfg.MaxUploadBytes)),
		Profile:   httpH.NewProfileHandler(s.Profile),
		Realtime:  httpH.NewRealtimeHandler(log, hub),
	}
}
