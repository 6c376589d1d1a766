package reviewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/id"
	"github.com/applicant-intake/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type LoginResult struct {
	Bearer    string           `json:"bearer"`
	ExpiresAt time.Time        `json:"expires_at"`
	Reviewer  *domain.Reviewer `json:"reviewer"`
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Current(ctx context.Context, email string) (*domain.Reviewer, error)
	// EnsureAdmin creates the admin reviewer if no reviewer has that email yet.
	EnsureAdmin(ctx context.Context, email, name, password string) error
}

type reviewerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error)
	PutIfAbsent(ctx context.Context, r *domain.Reviewer) (bool, error)
}

type jwtSigner interface {
	Sign(reviewerID, email, name, role string) (string, error)
	Expiry() time.Duration
}

type service struct {
	repo        reviewerStore
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	ReviewerRepo reviewerStore
	JWTProvider  jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ReviewerRepo, jwtProvider: deps.JWTProvider}
}

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	r, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	bearer, err := s.jwtProvider.Sign(r.ReviewerID, r.Email, r.Name, r.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Bearer:    bearer,
		ExpiresAt: time.Now().Add(s.jwtProvider.Expiry()).UTC(),
		Reviewer:  r,
	}, nil
}

func (s *service) Current(ctx context.Context, email string) (*domain.Reviewer, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *service) EnsureAdmin(ctx context.Context, email, name, password string) error {
	if password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := s.repo.PutIfAbsent(ctx, &domain.Reviewer{
		Email:        domain.NormalizeEmail(email),
		ReviewerID:   id.New(),
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if created {
		slog.Info("seeded admin reviewer", "email", email)
	}
	return nil
}
