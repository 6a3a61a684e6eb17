package presigned

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/abduss/docadmin/internal/config"
	"github.com/abduss/docadmin/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type signer interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Service resolves stored file paths into time-limited document links.
type Service struct {
	signer signer
	bucket string
	ttl    time.Duration
	cache  *expirable.LRU[string, string]
}

// NewService builds a link resolver. Links are cached for half their lifetime so a
// cached link is never handed out close to expiry. A non-positive cache size disables caching.
func NewService(s signer, bucket string, cfg config.LinkConfig) *Service {
	svc := &Service{
		signer: s,
		bucket: bucket,
		ttl:    cfg.TTL,
	}
	if cfg.CacheSize > 0 {
		svc.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.TTL/2)
	}
	return svc
}

// DocumentURL returns a GET link for filePath, or "" when the record has no file yet.
func (s *Service) DocumentURL(ctx context.Context, filePath string) (string, error) {
	if filePath == "" {
		return "", nil
	}

	if s.cache != nil {
		if link, ok := s.cache.Get(filePath); ok {
			metrics.ObserveLinkCache(true)
			return link, nil
		}
		metrics.ObserveLinkCache(false)
	}

	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", displayName(filePath)))

	u, err := s.signer.PresignedGetObject(ctx, s.bucket, filePath, s.ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", filePath, err)
	}

	link := u.String()
	if s.cache != nil {
		s.cache.Add(filePath, link)
	}
	return link, nil
}

// Invalidate drops a cached link, used once the object behind filePath is removed.
func (s *Service) Invalidate(filePath string) {
	if s.cache != nil {
		s.cache.Remove(filePath)
	}
}

func displayName(filePath string) string {
	return strings.ReplaceAll(path.Base(filePath), `"`, "")
}
