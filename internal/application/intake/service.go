package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/validate"
	"github.com/applicant-intake/internal/telemetry"
)

// HoneypotToken is returned to clients that filled the honeypot field.
const HoneypotToken = "fake-token"

// DescribePromptCount is the number of prompts offered on the recording page.
const DescribePromptCount = 2

type StartResult struct {
	Token                string `json:"token"`
	RequiresVerification bool   `json:"requires_verification"`
}

type VerifyResult struct {
	AlreadyVerified bool `json:"already_verified,omitempty"`
}

type Application struct {
	Token     string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Prompts   []domain.Prompt `json:"prompts"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type Service interface {
	Start(ctx context.Context, req domain.StartApplicationRequest) (*StartResult, error)
	Resend(ctx context.Context, token string) (*VerifyResult, error)
	Check(ctx context.Context, token, code string) (*VerifyResult, error)
	Describe(ctx context.Context, token string) (*Application, error)
}

type pendingService interface {
	Start(ctx context.Context, profile domain.Profile) (*domain.PendingApplication, bool, error)
	Get(ctx context.Context, token string) (*domain.PendingApplication, error)
	MarkVerified(ctx context.Context, token string) error
}

type codeService interface {
	Issue(ctx context.Context, email string) (string, error)
	Check(ctx context.Context, email, code string) (bool, error)
}

type promptSampler interface {
	Sample(ctx context.Context, n int) ([]domain.Prompt, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	pending             pendingService
	codes               codeService
	prompts             promptSampler
	mailer              mailer
	verificationEnabled bool
}

type ServiceDeps struct {
	Pending             pendingService
	Codes               codeService
	Prompts             promptSampler
	Mailer              mailer
	VerificationEnabled bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		pending:             deps.Pending,
		codes:               deps.Codes,
		prompts:             deps.Prompts,
		mailer:              deps.Mailer,
		verificationEnabled: deps.VerificationEnabled,
	}
}

func (s *service) Start(ctx context.Context, req domain.StartApplicationRequest) (*StartResult, error) {
	if req.Website != "" {
		telemetry.ApplicationsStartedTotal.WithLabelValues("honeypot").Inc()
		slog.Info("honeypot triggered, application dropped")
		return &StartResult{Token: HoneypotToken}, nil
	}

	if err := validate.Struct(req.Profile); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	p, created, err := s.pending.Start(ctx, req.Profile)
	if err != nil {
		return nil, err
	}
	if created {
		telemetry.ApplicationsStartedTotal.WithLabelValues("created").Inc()
	} else {
		telemetry.ApplicationsStartedTotal.WithLabelValues("resumed").Inc()
	}

	requires := s.verificationEnabled && !p.EmailVerified
	if requires && created {
		if err := s.sendCode(ctx, p.Email); err != nil {
			return nil, err
		}
	}
	return &StartResult{Token: p.Token, RequiresVerification: requires}, nil
}

func (s *service) Resend(ctx context.Context, token string) (*VerifyResult, error) {
	if !s.verificationEnabled {
		return nil, fmt.Errorf("email verification is not enabled: %w", domain.ErrBadRequest)
	}
	p, err := s.pending.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if p.EmailVerified {
		return &VerifyResult{AlreadyVerified: true}, nil
	}
	if err := s.sendCode(ctx, p.Email); err != nil {
		return nil, err
	}
	return &VerifyResult{}, nil
}

func (s *service) Check(ctx context.Context, token, code string) (*VerifyResult, error) {
	if !s.verificationEnabled {
		return nil, fmt.Errorf("email verification is not enabled: %w", domain.ErrBadRequest)
	}
	p, err := s.pending.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if p.EmailVerified {
		return &VerifyResult{AlreadyVerified: true}, nil
	}
	ok, err := s.codes.Check(ctx, p.Email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		telemetry.VerificationChecksTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrBadRequest)
	}
	telemetry.VerificationChecksTotal.WithLabelValues("ok").Inc()
	if err := s.pending.MarkVerified(ctx, token); err != nil {
		return nil, err
	}
	return &VerifyResult{}, nil
}

func (s *service) Describe(ctx context.Context, token string) (*Application, error) {
	p, err := s.pending.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.verificationEnabled && !p.EmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}
	prompts, err := s.prompts.Sample(ctx, DescribePromptCount)
	if err != nil {
		return nil, err
	}
	return &Application{
		Token:     p.Token,
		Name:      p.Profile.Name,
		Email:     p.Email,
		Prompts:   prompts,
		ExpiresAt: p.ExpiryTime(),
	}, nil
}

func (s *service) sendCode(ctx context.Context, email string) error {
	code, err := s.codes.Issue(ctx, email)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in 15 minutes.", code)
	if err := s.mailer.SendEmail(email, "Your verification code", body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
