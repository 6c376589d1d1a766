package upload

import (
	"context"
	"time"

	"github.com/applicant-intake/internal/domain"
)

type objectStore interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, map[string]string, error)
	Head(ctx context.Context, key string) (domain.UploadInfo, error)
	Delete(ctx context.Context, key string) error
}

type presigned struct {
	store     objectStore
	publicURL string
	now       func() time.Time
}

// NewPresigned returns a Backend that hands out presigned PUT URLs.
func NewPresigned(store objectStore, publicURL string) Backend {
	return &presigned{store: store, publicURL: publicURL, now: time.Now}
}

func (p *presigned) Mode() domain.UploadMode { return domain.UploadModePresigned }

func (p *presigned) RequestSlot(ctx context.Context, req domain.UploadSlotRequest) (*domain.UploadSlot, error) {
	ext, err := ValidateVideo(req.ContentType, req.Size, req.DurationSec)
	if err != nil {
		return nil, err
	}
	now := p.now()
	key := ObjectKey(req.Email, ext, now)
	url, headers, err := p.store.PresignPut(ctx, key, req.ContentType, req.Size, domain.UploadSlotTTL)
	if err != nil {
		return nil, err
	}
	return &domain.UploadSlot{
		Mode:        domain.UploadModePresigned,
		Key:         key,
		UploadURL:   url,
		PublicURL:   p.publicURL + "/" + key,
		Headers:     headers,
		ExpiresAt:   now.Add(domain.UploadSlotTTL).UTC(),
		Constraints: domain.VideoConstraints(),
	}, nil
}

func (p *presigned) Confirm(ctx context.Context, key string) (domain.UploadInfo, error) {
	return p.store.Head(ctx, key)
}

func (p *presigned) Release(ctx context.Context, key string) error {
	return p.store.Delete(ctx, key)
}
