package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

const (
	BackendGCS      = "gcs"
	BackendSupabase = "supabase"
	BackendNone     = "none"

	defaultUploadTimeout = 2 * time.Minute
)

var ErrDisabled = errors.New("object storage disabled")

// Store writes public objects into a single bucket.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Config struct {
	Backend string
	Bucket  string
	// PublicBaseURL overrides the backend's default public URL prefix.
	PublicBaseURL string

	SupabaseURL string
	SupabaseKey string

	// GCSEmulatorHost points the GCS client at a fake-gcs-server.
	GCSEmulatorHost string
	GCSCredentials  string

	UploadTimeout time.Duration
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendGCS:
		return NewGCSStore(ctx, log, cfg)
	case BackendSupabase:
		return NewSupabaseStore(log, cfg, nil)
	case "", BackendNone:
		return disabledStore{}, nil
	default:
		return nil, fmt.Errorf("unknown object storage backend %q", cfg.Backend)
	}
}

// NewKey names a fresh object under prefix ("" for the bucket root) keeping
// the lower-cased extension of filename.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	name := uuid.NewString() + ext
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return key, nil
}

type disabledStore struct{}

func (disabledStore) Put(context.Context, string, string, io.Reader) error { return ErrDisabled }
func (disabledStore) Delete(context.Context, string) error                  { return ErrDisabled }
func (disabledStore) PublicURL(key string) string                           { return key }
