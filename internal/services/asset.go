package services

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/imagex"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/objectstore"
)

type AssetKind string

const (
	AssetModuleThumbnail  AssetKind = "module"
	AssetSessionThumbnail AssetKind = "session"
	AssetTimestampSlide   AssetKind = "timestamp"
)

const defaultMaxAssetBytes = 10 << 20

// keyPrefix mirrors the bucket layout: module thumbnails at the root,
// everything else in a folder per kind.
func (k AssetKind) keyPrefix() (string, bool) {
	switch k {
	case AssetModuleThumbnail:
		return "", true
	case AssetSessionThumbnail:
		return "sessions", true
	case AssetTimestampSlide:
		return "timestamps", true
	default:
		return "", false
	}
}

type UploadAssetInput struct {
	Kind     AssetKind
	Filename string
	Data     []byte
}

type Asset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type AssetConfig struct {
	MaxBytes int
	// Normalize re-encodes uploads as bounded WebP before storing them.
	Normalize bool
	Image     imagex.Options
	Timeout   time.Duration
}

// AssetService stores teacher uploads and hands back the public URL to save
// on the module, session or timestamp.
type AssetService interface {
	Upload(dbc dbctx.Context, in UploadAssetInput) (*Asset, error)
	Delete(dbc dbctx.Context, key string) error
}

type assetService struct {
	log   *logger.Logger
	guard AccessGuard
	store objectstore.Store
	cfg   AssetConfig
}

func NewAssetService(baseLog *logger.Logger, guard AccessGuard, store objectstore.Store, cfg AssetConfig) AssetService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxAssetBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &assetService{
		log:   baseLog.With("service", "AssetService"),
		guard: guard,
		store: store,
		cfg:   cfg,
	}
}

func (s *assetService) Upload(dbc dbctx.Context, in UploadAssetInput) (*Asset, error) {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return nil, err
	}
	prefix, ok := in.Kind.keyPrefix()
	if !ok {
		return nil, apierr.Validationf("unknown asset kind %q", in.Kind)
	}
	if len(in.Data) == 0 {
		return nil, apierr.Validation("file is empty")
	}
	if len(in.Data) > s.cfg.MaxBytes {
		return nil, apierr.Validationf("file exceeds %d bytes", s.cfg.MaxBytes)
	}
	if !imagex.IsImage(in.Data) {
		return nil, apierr.Validationf("unsupported file type %s", imagex.Sniff(in.Data))
	}

	data := in.Data
	contentType := imagex.Sniff(data)
	filename := in.Filename
	out := &Asset{}
	if s.cfg.Normalize {
		res, err := imagex.Normalize(data, s.cfg.Image)
		switch {
		case errors.Is(err, imagex.ErrUnsupported):
			return nil, apierr.Validation("unsupported image format")
		case err != nil:
			return nil, apierr.Validationf("decode image: %v", err)
		}
		data = res.Data
		contentType = res.ContentType
		filename = strings.TrimSuffix(filename, path.Ext(filename)) + res.Ext
		out.Width, out.Height = res.Width, res.Height
	}
	if path.Ext(filename) == "" {
		filename += extForContentType(contentType)
	}

	key := objectstore.NewKey(prefix, filename)
	ctx, cancel := context.WithTimeout(uploadContext(dbc), s.cfg.Timeout)
	defer cancel()
	if err := s.store.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		s.log.Warn("Upload: put object failed", "error", err, "key", key)
		return nil, apierr.Store(err)
	}
	out.Key = key
	out.URL = s.store.PublicURL(key)
	out.ContentType = contentType
	out.Size = len(data)
	s.log.Info("asset uploaded", "key", key, "bytes", out.Size, "kind", string(in.Kind))
	return out, nil
}

func (s *assetService) Delete(dbc dbctx.Context, key string) error {
	if _, err := s.guard.RequireTeacher(dbc); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") {
		return apierr.Validation("invalid key")
	}
	ctx, cancel := context.WithTimeout(uploadContext(dbc), s.cfg.Timeout)
	defer cancel()
	if err := s.store.Delete(ctx, key); err != nil {
		return apierr.Store(err)
	}
	return nil
}

func extForContentType(ct string) string {
	switch ct {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// Uploads carry their own timeout, detached from the request deadline.
func uploadContext(dbc dbctx.Context) context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(dbc.Ctx)
}
