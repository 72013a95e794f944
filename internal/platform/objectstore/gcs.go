package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type gcsStore struct {
	log     *logger.Logger
	client  *storage.Client
	bucket  string
	baseURL string
	cfg     Config
}

func NewGCSStore(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing MODULE_CONTENT_BUCKET")
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	client, err := storage.NewClient(ctx, gcsClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	s := &gcsStore{
		log:     log.With("service", "GCSObjectStore"),
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: gcsPublicBase(cfg),
		cfg:     cfg,
	}
	s.log.Info("Object storage initialized", "backend", BackendGCS, "bucket", cfg.Bucket, "public_base_url", s.baseURL)
	return s, nil
}

func gcsClientOptions(cfg Config) []option.ClientOption {
	if host := strings.TrimRight(strings.TrimSpace(cfg.GCSEmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	creds := strings.TrimSpace(cfg.GCSCredentials)
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func gcsPublicBase(cfg Config) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"); base != "" {
		return base + "/" + cfg.Bucket
	}
	if host := strings.TrimRight(strings.TrimSpace(cfg.GCSEmulatorHost), "/"); host != "" {
		return host + "/" + cfg.Bucket
	}
	return "https://storage.googleapis.com/" + cfg.Bucket
}

func (s *gcsStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *gcsStore) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
