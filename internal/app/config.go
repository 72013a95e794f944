package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/db"
	"github.com/yungbote/belajar-alkitab-backend/internal/observability"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/envutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/imagex"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/objectstore"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

const (
	RealtimeBusMemory = "memory"
	RealtimeBusRedis  = "redis"
)

type Config struct {
	Port    string
	LogMode string

	Postgres    db.PostgresConfig
	AutoMigrate bool

	// JWTSecretKey verifies the identity provider's HS256 access tokens.
	JWTSecretKey   string
	JWTAudience    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RoleCacheTTL    time.Duration

	CORSAllowOrigins []string

	RealtimeBus  string
	Redis        bus.RedisConfig
	SSEHeartbeat time.Duration

	Storage         objectstore.Config
	MaxUploadBytes  int
	NormalizeImages bool
	Image           imagex.Options

	Otel observability.OtelConfig
}

func LoadConfig() Config {
	return Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		Postgres:    db.PostgresConfigFromEnv(),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTAudience:    envutil.String("JWT_AUDIENCE", "authenticated"),
		RequestTimeout:  envutil.Duration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 20*time.Second),
		RoleCacheTTL:    envutil.Duration("ROLE_CACHE_TTL", time.Minute),

		CORSAllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil),

		RealtimeBus: strings.ToLower(envutil.String("REALTIME_BUS", RealtimeBusMemory)),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "belajar-alkitab:sse"),
		},
		SSEHeartbeat: envutil.Duration("SSE_HEARTBEAT", 15*time.Second),

		Storage: objectstore.Config{
			Backend:         strings.ToLower(envutil.String("OBJECT_STORAGE_BACKEND", objectstore.BackendNone)),
			Bucket:          envutil.String("MODULE_CONTENT_BUCKET", "module-content"),
			PublicBaseURL:   envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
			SupabaseURL:     envutil.String("SUPABASE_URL", ""),
			SupabaseKey:     envutil.String("SUPABASE_SERVICE_ROLE_KEY", ""),
			GCSEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
			GCSCredentials:  envutil.String("GCS_CREDENTIALS", ""),
			UploadTimeout:   envutil.Duration("OBJECT_STORAGE_UPLOAD_TIMEOUT", 2*time.Minute),
		},
		MaxUploadBytes:  envutil.Int("MAX_UPLOAD_BYTES", 10<<20),
		NormalizeImages: envutil.Bool("IMAGE_NORMALIZE", true),
		Image: imagex.Options{
			MaxW:    envutil.Int("IMAGE_MAX_W", 1920),
			MaxH:    envutil.Int("IMAGE_MAX_H", 1080),
			Quality: float32(envutil.Float("IMAGE_WEBP_QUALITY", 80)),
		},

		Otel: observability.OtelConfigFromEnv(),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	switch c.RealtimeBus {
	case RealtimeBusMemory:
	case RealtimeBusRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when REALTIME_BUS=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("REALTIME_BUS must be %q or %q, got %q", RealtimeBusMemory, RealtimeBusRedis, c.RealtimeBus))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
