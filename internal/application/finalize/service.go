// Package finalize turns a verified pending application and its uploaded video
// into a durable applicant and submission.
package finalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/applicant-intake/internal/application/upload"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/id"
	"github.com/applicant-intake/internal/pkg/validate"
	"github.com/applicant-intake/internal/telemetry"
)

const notifyTimeout = 10 * time.Second

type Service interface {
	Finalize(ctx context.Context, token string, req domain.FinalizeRequest) (*domain.Submission, error)
}

type pendingService interface {
	Get(ctx context.Context, token string) (*domain.PendingApplication, error)
	Delete(ctx context.Context, token string) error
}

type applicantStore interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// committer creates the applicant and submission and deletes the pending
// record in one transaction.
type committer interface {
	Commit(ctx context.Context, a *domain.Applicant, s *domain.Submission, pendingToken string) error
}

type notifier interface {
	SubmissionCreated(ctx context.Context, ev domain.SubmissionCreated) error
}

type service struct {
	pending             pendingService
	applicants          applicantStore
	tx                  committer
	uploads             upload.Backend
	notifier            notifier
	verificationEnabled bool
	now                 func() time.Time
}

type ServiceDeps struct {
	Pending             pendingService
	ApplicantRepo       applicantStore
	Tx                  committer
	Uploads             upload.Backend
	Notifier            notifier
	VerificationEnabled bool
	Now                 func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	n := deps.Notifier
	if n == nil {
		n = LogNotifier{}
	}
	return &service{
		pending:             deps.Pending,
		applicants:          deps.ApplicantRepo,
		tx:                  deps.Tx,
		uploads:             deps.Uploads,
		notifier:            n,
		verificationEnabled: deps.VerificationEnabled,
		now:                 now,
	}
}

// Finalize releases the upload on every failure except when the video is still
// usable by the same client: unknown token, unverified email, nothing uploaded,
// or a pending record already consumed by a concurrent call with the same token.
func (s *service) Finalize(ctx context.Context, token string, req domain.FinalizeRequest) (*domain.Submission, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	sub, err := upload.WithCompensation(ctx, s.uploads, req.VideoKey, func(ctx context.Context) (*domain.Submission, error) {
		return s.finalize(ctx, token, req)
	})
	telemetry.FinalizeOutcomesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if outcome(err) == "failed" {
			slog.Error("finalize failed", "err", err)
		}
		return nil, err
	}
	return sub, nil
}

func (s *service) finalize(ctx context.Context, token string, req domain.FinalizeRequest) (*domain.Submission, error) {
	p, err := s.pending.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, upload.Keep(err)
		}
		return nil, err
	}
	if s.verificationEnabled && !p.EmailVerified {
		return nil, upload.Keep(fmt.Errorf("email not verified: %w", domain.ErrForbidden))
	}

	info, err := s.uploads.Confirm(ctx, req.VideoKey)
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return nil, upload.Keep(fmt.Errorf("video upload not found, please try recording again: %w", domain.ErrUploadMissing))
	}
	if info.Size > domain.MaxVideoBytes {
		return nil, fmt.Errorf("uploaded video exceeds %dMB: %w", domain.MaxVideoBytes/1024/1024, domain.ErrBadRequest)
	}
	if ct := storedType(info.ContentType); ct != "" {
		if _, ok := domain.AllowedVideoTypes[ct]; !ok {
			return nil, fmt.Errorf("uploaded file is not a supported video (%s): %w", ct, domain.ErrBadRequest)
		}
	}

	exists, err := s.applicants.Exists(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.dropPending(ctx, token)
		return nil, errDuplicate
	}

	now := s.now().UTC()
	applicant := &domain.Applicant{
		Email:       p.Email,
		ApplicantID: id.New(),
		Profile:     p.Profile,
		CreatedAt:   now,
	}
	sub := &domain.Submission{
		SubmissionID:     id.New(),
		ApplicantID:      applicant.ApplicantID,
		ApplicantEmail:   p.Email,
		ApplicantName:    p.Profile.Name,
		PromptID:         p.PromptID,
		VideoKey:         req.VideoKey,
		VideoURL:         req.VideoURL,
		VideoDurationSec: int(math.Round(req.VideoDurationSec)),
		Status:           domain.StatusSubmitted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.tx.Commit(ctx, applicant, sub, token); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			s.dropPending(ctx, token)
			return nil, errDuplicate
		case errors.Is(err, domain.ErrNotFound):
			return nil, upload.Keep(fmt.Errorf("application already completed: %w", domain.ErrNotFound))
		}
		return nil, err
	}

	s.notify(ctx, sub)
	return sub, nil
}

// storedType drops any media type parameters, e.g. "video/webm;codecs=vp9".
func storedType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

var errDuplicate = fmt.Errorf("an application with this email already exists: %w", domain.ErrConflict)

func (s *service) dropPending(ctx context.Context, token string) {
	if err := s.pending.Delete(ctx, token); err != nil {
		slog.Warn("failed to delete pending application", "err", err)
	}
}

func (s *service) notify(ctx context.Context, sub *domain.Submission) {
	ev := domain.SubmissionCreated{
		SubmissionID:   sub.SubmissionID,
		ApplicantID:    sub.ApplicantID,
		ApplicantEmail: sub.ApplicantEmail,
		ApplicantName:  sub.ApplicantName,
		PromptID:       sub.PromptID,
		VideoURL:       sub.VideoURL,
		CreatedAt:      sub.CreatedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.SubmissionCreated(ctx, ev); err != nil {
			slog.Warn("submission notification failed", "submission_id", ev.SubmissionID, "err", err)
		}
	}()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrForbidden):
		return "not_verified"
	case errors.Is(err, domain.ErrUploadMissing):
		return "upload_missing"
	case errors.Is(err, domain.ErrConflict):
		return "duplicate"
	case errors.Is(err, domain.ErrBadRequest):
		return "invalid"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	}
	return "failed"
}

// LogNotifier only logs submission events.
type LogNotifier struct{}

func (LogNotifier) SubmissionCreated(_ context.Context, ev domain.SubmissionCreated) error {
	slog.Info("submission created", "submission_id", ev.SubmissionID, "applicant_id", ev.ApplicantID)
	return nil
}
