package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/objectstore"
)

var newObjectStore = objectstore.New

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidBackend     StorageBootstrapErrorCode = "invalid_backend"
	StorageBootstrapErrorMissingBucket      StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorMissingCredentials StorageBootstrapErrorCode = "missing_credentials"
	StorageBootstrapErrorConnectFailed      StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code    StorageBootstrapErrorCode
	Backend string
	Bucket  string
	Cause   error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s backend=%q bucket=%q): %v",
		e.Code,
		e.Backend,
		e.Bucket,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// checkStorageConfig catches misconfiguration before any client is built.
func checkStorageConfig(cfg objectstore.Config) *StorageBootstrapError {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	fail := func(code StorageBootstrapErrorCode, cause error) *StorageBootstrapError {
		return &StorageBootstrapError{Code: code, Backend: backend, Bucket: cfg.Bucket, Cause: cause}
	}
	switch backend {
	case "", objectstore.BackendNone:
		return nil
	case objectstore.BackendGCS, objectstore.BackendSupabase:
	default:
		return fail(StorageBootstrapErrorInvalidBackend, fmt.Errorf("unsupported object storage backend %q", cfg.Backend))
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return fail(StorageBootstrapErrorMissingBucket, errors.New("MODULE_CONTENT_BUCKET is empty"))
	}
	if backend == objectstore.BackendSupabase && (strings.TrimSpace(cfg.SupabaseURL) == "" || strings.TrimSpace(cfg.SupabaseKey) == "") {
		return fail(StorageBootstrapErrorMissingCredentials, errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required"))
	}
	return nil
}

func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg objectstore.Config) (objectstore.Store, error) {
	if err := checkStorageConfig(cfg); err != nil {
		log.Error(
			"Object storage provider selection failed",
			"backend", err.Backend,
			"bucket", err.Bucket,
			"error_code", err.Code,
			"error", err,
		)
		return nil, err
	}

	log.Info("Selecting object storage provider", "backend", cfg.Backend, "bucket", cfg.Bucket)
	store, err := newObjectStore(ctx, log, cfg)
	if err != nil {
		classified := &StorageBootstrapError{
			Code:    StorageBootstrapErrorConnectFailed,
			Backend: cfg.Backend,
			Bucket:  cfg.Bucket,
			Cause:   err,
		}
		log.Error(
			"Object storage provider bootstrap failed",
			"backend", cfg.Backend,
			"bucket", cfg.Bucket,
			"error_code", classified.Code,
			"error", err,
		)
		return nil, classified
	}
	return store, nil
}
