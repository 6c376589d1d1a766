package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applicant-intake/internal/domain"
	pkgtoken "github.com/applicant-intake/internal/pkg/token"
)

// TTL is how long an unfinished application stays resumable.
const TTL = 24 * time.Hour

type Service interface {
	// Start returns the live pending application for the profile's email, or
	// creates one. created is false when an existing record was resumed.
	Start(ctx context.Context, profile domain.Profile) (app *domain.PendingApplication, created bool, err error)
	Get(ctx context.Context, token string) (*domain.PendingApplication, error)
	MarkVerified(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
}

type pendingStore interface {
	Put(ctx context.Context, p *domain.PendingApplication) error
	Get(ctx context.Context, token string) (*domain.PendingApplication, error)
	ListByEmail(ctx context.Context, email string) ([]domain.PendingApplication, error)
	Delete(ctx context.Context, token string) error
	MarkVerified(ctx context.Context, token string) error
}

type applicantStore interface {
	Exists(ctx context.Context, email string) (bool, error)
}

type promptPicker interface {
	Pick(ctx context.Context) (*domain.Prompt, error)
}

type service struct {
	repo                pendingStore
	applicants          applicantStore
	prompts             promptPicker
	verificationEnabled bool
	now                 func() time.Time
}

type ServiceDeps struct {
	PendingRepo         pendingStore
	ApplicantRepo       applicantStore
	Prompts             promptPicker
	VerificationEnabled bool
	Now                 func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:                deps.PendingRepo,
		applicants:          deps.ApplicantRepo,
		prompts:             deps.Prompts,
		verificationEnabled: deps.VerificationEnabled,
		now:                 now,
	}
}

func (s *service) Start(ctx context.Context, profile domain.Profile) (*domain.PendingApplication, bool, error) {
	email := domain.NormalizeEmail(profile.Email)
	profile.Email = email

	exists, err := s.applicants.Exists(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, fmt.Errorf("an application with this email already exists: %w", domain.ErrConflict)
	}

	now := s.now()
	if live, err := s.liveForEmail(ctx, email, now); err != nil {
		return nil, false, err
	} else if live != nil {
		return live, false, nil
	}

	prompt, err := s.prompts.Pick(ctx)
	if err != nil {
		return nil, false, err
	}
	tok, err := pkgtoken.New()
	if err != nil {
		return nil, false, err
	}
	p := &domain.PendingApplication{
		Token:         tok,
		Email:         email,
		Profile:       profile,
		PromptID:      prompt.PromptID,
		EmailVerified: !s.verificationEnabled,
		ExpiresAt:     now.Add(TTL).Unix(),
		CreatedAt:     now.UTC(),
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// liveForEmail drops expired records for email and returns the live one that
// expires last, if any.
func (s *service) liveForEmail(ctx context.Context, email string, now time.Time) (*domain.PendingApplication, error) {
	existing, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var live *domain.PendingApplication
	for i := range existing {
		p := &existing[i]
		if p.Expired(now) {
			if err := s.repo.Delete(ctx, p.Token); err != nil {
				slog.Warn("failed to delete expired pending application", "err", err)
			}
			continue
		}
		if live == nil || p.ExpiresAt > live.ExpiresAt {
			live = p
		}
	}
	return live, nil
}

func (s *service) Get(ctx context.Context, token string) (*domain.PendingApplication, error) {
	p, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if p.Expired(s.now()) {
		if err := s.repo.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to delete expired pending application", "err", err)
		}
		return nil, fmt.Errorf("application has expired, please start again: %w", domain.ErrExpired)
	}
	return p, nil
}

func (s *service) MarkVerified(ctx context.Context, token string) error {
	return s.repo.MarkVerified(ctx, token)
}

func (s *service) Delete(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}
