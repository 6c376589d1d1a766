package http

import (
	"context"

	"github.com/applicant-intake/internal/application/upload"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/infrastructure/dynamo"
	jwtinfra "github.com/applicant-intake/internal/infrastructure/jwt"
	"github.com/applicant-intake/internal/infrastructure/kv"
	"github.com/applicant-intake/internal/infrastructure/smtp"
)

// Notifier receives finalized submissions for external systems.
type Notifier interface {
	SubmissionCreated(ctx context.Context, ev domain.SubmissionCreated) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	PromptRepo     *dynamo.PromptRepo
	PendingRepo    *dynamo.PendingRepo
	ApplicantRepo  *dynamo.ApplicantRepo
	SubmissionRepo *dynamo.SubmissionRepo
	ReviewRepo     *dynamo.ReviewRepo
	ReviewerRepo   *dynamo.ReviewerRepo
	FinalizeTx     *dynamo.FinalizeTx
	// KV backs verification codes and rate limit windows.
	KV             kv.Store
	Uploads        upload.Backend
	Mailer         smtp.Mailer
	Notifier       Notifier // nil logs notifications instead
	JWTProvider    *jwtinfra.Provider
	// DBProbe is called by the health check.
	DBProbe        func(ctx context.Context) error
}

