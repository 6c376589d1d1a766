package upload

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/applicant-intake/internal/telemetry"
)

const releaseTimeout = 10 * time.Second

type keptError struct{ err error }

func (k keptError) Error() string { return k.err.Error() }
func (k keptError) Unwrap() error { return k.err }

// Keep marks err as a failure after which the upload must stay in place,
// for example when the client can still retry with the same video.
func Keep(err error) error {
	if err == nil {
		return nil
	}
	return keptError{err: err}
}

func kept(err error) bool {
	var k keptError
	return errors.As(err, &k)
}

// WithCompensation runs action and releases key on every exit path except
// success or an error wrapped with Keep, including a panic in action.
// Release failures are logged and never change the returned error.
func WithCompensation[T any](ctx context.Context, b Backend, key string, action func(ctx context.Context) (T, error)) (T, error) {
	done := false
	defer func() {
		if !done {
			Release(ctx, b, key)
		}
	}()
	result, err := action(ctx)
	if err == nil || kept(err) {
		done = true
	}
	return result, err
}

// Release deletes key on b, detached from ctx cancellation. Failures are logged only.
func Release(ctx context.Context, b Backend, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	mode := string(b.Mode())
	if err := b.Release(ctx, key); err != nil {
		telemetry.UploadCompensationsTotal.WithLabelValues(mode, "failed").Inc()
		slog.Warn("failed to release upload", "mode", mode, "key", key, "err", err)
		return
	}
	telemetry.UploadCompensationsTotal.WithLabelValues(mode, "ok").Inc()
	slog.Info("released orphaned upload", "mode", mode, "key", key)
}
