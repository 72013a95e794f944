package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/objectstore"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Profile  services.ProfileService
	Guard    services.AccessGuard
	Notifier services.ChangeNotifier
	Cache    *services.ProgressCache

	Module    services.ModuleService
	Session   services.SessionService
	Timestamp services.TimestampService
	Note      services.NoteService
	Progress  services.ProgressService
	Asset     services.AssetService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, b bus.Bus, store objectstore.Store) Services {
	log.Info("Wiring services...")

	auth := services.NewAuthService(log, services.AuthConfig{
		SecretKey: cfg.JWTSecretKey,
		Audience:  cfg.JWTAudience,
	})
	profile := services.NewProfileService(db, log, r.Profile, cfg.RoleCacheTTL)
	guard := services.NewAccessGuard(log, profile)

	// Writes invalidate the cache directly; feed events from other replicas
	// arrive through the same subscription.
	cache := services.NewProgressCache()
	notifier := services.NewChangeNotifier(log, b)
	notifier.Subscribe(cache.Apply)

	return Services{
		Auth:     auth,
		Profile:  profile,
		Guard:    guard,
		Notifier: notifier,
		Cache:    cache,

		Module: services.NewModuleService(
			db,
			log,
			guard,
			r.Module,
			r.Session,
			r.Timestamp,
			r.Note,
			r.Progress,
			cache,
			notifier,
		),
		Session: services.NewSessionService(
			db,
			log,
			guard,
			r.Module,
			r.Session,
			r.Timestamp,
			r.Note,
			r.Progress,
			cache,
			notifier,
		),
		Timestamp: services.NewTimestampService(db, log, guard, r.Session, r.Timestamp, r.Note, notifier),
		Note:      services.NewNoteService(db, log, guard, r.Session, r.Timestamp, r.Note, notifier),
		Progress:  services.NewProgressService(db, log, r.Module, r.Session, r.Progress, cache, notifier),
		Asset: services.NewAssetService(log, guard, store, services.AssetConfig{
			MaxBytes:  cfg.MaxUploadBytes,
			Normalize: cfg.NormalizeImages,
			Image:     cfg.Image,
			Timeout:   cfg.Storage.UploadTimeout,
		}),
	}
}
