package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/envutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type PostgresConfig struct {
	// DSN wins over the discrete fields when set.
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns  int
	MaxIdleConns  int
	SlowThreshold time.Duration
}

func PostgresConfigFromEnv() PostgresConfig {
	return PostgresConfig{
		DSN:           envutil.String("DATABASE_URL", ""),
		Host:          envutil.String("POSTGRES_HOST", "localhost"),
		Port:          envutil.String("POSTGRES_PORT", "5432"),
		User:          envutil.String("POSTGRES_USER", "postgres"),
		Password:      envutil.String("POSTGRES_PASSWORD", ""),
		Name:          envutil.String("POSTGRES_NAME", "belajar_alkitab"),
		SSLMode:       envutil.String("POSTGRES_SSLMODE", "disable"),
		MaxOpenConns:  envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
		MaxIdleConns:  envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		SlowThreshold: envutil.Duration("POSTGRES_SLOW_THRESHOLD", time.Second),
	}
}

func (c PostgresConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg PostgresConfig, logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	serviceLog.Info("Connected to Postgres", "host", cfg.Host, "name", cfg.Name)
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Running auto migration")
	return AutoMigrateAll(s.db)
}

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
