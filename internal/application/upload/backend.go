// Package upload brokers direct-to-storage video uploads. One Backend is
// resolved at startup; callers never branch on which one it is.
package upload

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/applicant-intake/internal/domain"
)

// Backend issues write locations for videos and probes or removes what was written.
type Backend interface {
	Mode() domain.UploadMode
	RequestSlot(ctx context.Context, req domain.UploadSlotRequest) (*domain.UploadSlot, error)
	// Confirm probes key. A missing object is Exists=false with a nil error.
	Confirm(ctx context.Context, key string) (domain.UploadInfo, error)
	// Release deletes key. Used only for compensation.
	Release(ctx context.Context, key string) error
}

// ValidateVideo enforces the constraints every backend shares.
func ValidateVideo(contentType string, size int64, durationSec float64) (string, error) {
	ext, ok := domain.AllowedVideoTypes[contentType]
	if !ok {
		return "", fmt.Errorf("invalid file type, allowed: video/mp4, video/quicktime, video/webm: %w", domain.ErrBadRequest)
	}
	if size < 1 || size > domain.MaxVideoBytes {
		return "", fmt.Errorf("file too large, maximum: %dMB: %w", domain.MaxVideoBytes/1024/1024, domain.ErrBadRequest)
	}
	if durationSec > domain.MaxVideoDurationSec {
		return "", fmt.Errorf("video too long, maximum: %d seconds: %w", domain.MaxVideoDurationSec, domain.ErrBadRequest)
	}
	return ext, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ObjectKey builds videos/<sanitized-email>/<unix-millis>.<ext>.
func ObjectKey(email, ext string, now time.Time) string {
	owner := "anonymous"
	if email != "" {
		owner = unsafeKeyChars.ReplaceAllString(email, "_")
	}
	return "videos/" + owner + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}

// unavailable is the Backend used when no storage is configured.
type unavailable struct{}

func (unavailable) Mode() domain.UploadMode { return "" }

func (unavailable) RequestSlot(context.Context, domain.UploadSlotRequest) (*domain.UploadSlot, error) {
	return nil, errNotConfigured
}

func (unavailable) Confirm(context.Context, string) (domain.UploadInfo, error) {
	return domain.UploadInfo{}, errNotConfigured
}

func (unavailable) Release(context.Context, string) error { return nil }

var errNotConfigured = fmt.Errorf("storage not configured, please contact support: %w", domain.ErrUnavailable)
