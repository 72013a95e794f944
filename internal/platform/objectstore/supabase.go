package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

// supabaseStore talks to the Supabase Storage REST API:
//
//	POST   {url}/storage/v1/object/{bucket}/{key}
//	DELETE {url}/storage/v1/object/{bucket}/{key}
//	public {url}/storage/v1/object/public/{bucket}/{key}
type supabaseStore struct {
	log     *logger.Logger
	http    *http.Client
	baseURL string
	key     string
	bucket  string
	public  string
	cfg     Config
}

// NewSupabaseStore builds the Supabase backend. A nil client uses a default one.
func NewSupabaseStore(log *logger.Logger, cfg Config, client *http.Client) (Store, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	if base == "" || strings.TrimSpace(cfg.SupabaseKey) == "" {
		return nil, fmt.Errorf("missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing MODULE_CONTENT_BUCKET")
	}
	if client == nil {
		client = &http.Client{}
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	public := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if public == "" {
		public = base + "/storage/v1/object/public/" + cfg.Bucket
	}
	return &supabaseStore{
		log:     log.With("service", "SupabaseObjectStore"),
		http:    client,
		baseURL: base,
		key:     cfg.SupabaseKey,
		bucket:  cfg.Bucket,
		public:  public,
		cfg:     cfg,
	}, nil
}

func (s *supabaseStore) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, escapeKey(key))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *supabaseStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), r)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-upsert", "false")
	req.Header.Set("Cache-Control", "3600")
	return s.do(req, "upload")
}

func (s *supabaseStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return s.do(req, "delete")
}

func (s *supabaseStore) do(req *http.Request, op string) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Warn("Supabase storage request failed", "op", op, "status", resp.StatusCode)
		return fmt.Errorf("supabase %s failed: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *supabaseStore) PublicURL(key string) string {
	return s.public + "/" + escapeKey(strings.TrimLeft(key, "/"))
}
