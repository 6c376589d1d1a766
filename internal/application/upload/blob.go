package upload

import (
	"context"
	"time"

	"github.com/applicant-intake/internal/domain"
)

type blobStore interface {
	UploadURL(key string, ttl time.Duration) (string, error)
	BlobURL(key string) string
	Head(ctx context.Context, key string) (domain.UploadInfo, error)
	Delete(ctx context.Context, key string) error
}

type blob struct {
	store     blobStore
	publicURL string
	now       func() time.Time
}

// NewBlob returns a Backend that hands out SAS upload credentials. publicURL
// may be empty, in which case the blob URL itself is public.
func NewBlob(store blobStore, publicURL string) Backend {
	return &blob{store: store, publicURL: publicURL, now: time.Now}
}

func (b *blob) Mode() domain.UploadMode { return domain.UploadModeBlob }

func (b *blob) RequestSlot(ctx context.Context, req domain.UploadSlotRequest) (*domain.UploadSlot, error) {
	ext, err := ValidateVideo(req.ContentType, req.Size, req.DurationSec)
	if err != nil {
		return nil, err
	}
	now := b.now()
	key := ObjectKey(req.Email, ext, now)
	url, err := b.store.UploadURL(key, domain.UploadSlotTTL)
	if err != nil {
		return nil, err
	}
	public := b.store.BlobURL(key)
	if b.publicURL != "" {
		public = b.publicURL + "/" + key
	}
	return &domain.UploadSlot{
		Mode:      domain.UploadModeBlob,
		Key:       key,
		UploadURL: url,
		PublicURL: public,
		Headers: map[string]string{
			"x-ms-blob-type": "BlockBlob",
			"Content-Type":   req.ContentType,
		},
		ExpiresAt:   now.Add(domain.UploadSlotTTL).UTC(),
		Constraints: domain.VideoConstraints(),
	}, nil
}

func (b *blob) Confirm(ctx context.Context, key string) (domain.UploadInfo, error) {
	return b.store.Head(ctx, key)
}

func (b *blob) Release(ctx context.Context, key string) error {
	return b.store.Delete(ctx, key)
}
