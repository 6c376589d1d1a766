package upload

import (
	"context"
	"io"

	"github.com/applicant-intake/internal/domain"
)

// LocalUploadPath is where clients POST files in local mode.
const LocalUploadPath = "/v1/uploads/local"

// LocalURLPrefix is where saved files are served from.
const LocalURLPrefix = "/uploads/"

type diskStore interface {
	Save(ctx context.Context, r io.Reader, ext string, limit int64) (string, int64, error)
	Head(ctx context.Context, key string) (domain.UploadInfo, error)
	Delete(ctx context.Context, key string) error
}

// Local is the development Backend: clients upload the file to this process.
type Local struct {
	store diskStore
}

func NewLocal(store diskStore) *Local {
	return &Local{store: store}
}

func (l *Local) Mode() domain.UploadMode { return domain.UploadModeLocal }

func (l *Local) RequestSlot(_ context.Context, req domain.UploadSlotRequest) (*domain.UploadSlot, error) {
	if _, err := ValidateVideo(req.ContentType, req.Size, req.DurationSec); err != nil {
		return nil, err
	}
	return &domain.UploadSlot{
		Mode:        domain.UploadModeLocal,
		UploadURL:   LocalUploadPath,
		Constraints: domain.VideoConstraints(),
	}, nil
}

// LocalFile is the result of a direct upload.
type LocalFile struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Accept stores the body of a direct upload.
func (l *Local) Accept(ctx context.Context, r io.Reader, contentType string) (*LocalFile, error) {
	ext, err := ValidateVideo(contentType, 1, 0)
	if err != nil {
		return nil, err
	}
	key, _, err := l.store.Save(ctx, r, ext, domain.MaxVideoBytes)
	if err != nil {
		return nil, err
	}
	return &LocalFile{Key: key, URL: LocalURLPrefix + key}, nil
}

func (l *Local) Confirm(ctx context.Context, key string) (domain.UploadInfo, error) {
	return l.store.Head(ctx, key)
}

func (l *Local) Release(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
