package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/applicant-intake/internal/application/finalize"
	"github.com/applicant-intake/internal/application/intake"
	"github.com/applicant-intake/internal/application/pending"
	"github.com/applicant-intake/internal/application/prompt"
	"github.com/applicant-intake/internal/application/ratelimit"
	"github.com/applicant-intake/internal/application/review"
	"github.com/applicant-intake/internal/application/reviewer"
	"github.com/applicant-intake/internal/application/upload"
	"github.com/applicant-intake/internal/application/verification"
	"github.com/applicant-intake/internal/config"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/transport/http/handler"
	appmiddleware "github.com/applicant-intake/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// background cleanup of the burst limiter.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.MetricsEnabled {
		r.Use(appmiddleware.Metrics)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, in front of the per-action windows.
	burstRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	windows := ratelimit.New(deps.KV, nil)
	limit := func(action string, c ratelimit.Config) func(http.Handler) http.Handler {
		return appmiddleware.FixedWindow(windows, action, c)
	}

	promptSvc := prompt.NewService(deps.PromptRepo)
	pendingSvc := pending.NewService(pending.ServiceDeps{
		PendingRepo:         deps.PendingRepo,
		ApplicantRepo:       deps.ApplicantRepo,
		Prompts:             promptSvc,
		VerificationEnabled: cfg.EmailVerificationEnabled,
	})
	intakeSvc := intake.NewService(intake.ServiceDeps{
		Pending:             pendingSvc,
		Codes:               verification.NewService(deps.KV, nil),
		Prompts:             promptSvc,
		Mailer:              deps.Mailer,
		VerificationEnabled: cfg.EmailVerificationEnabled,
	})
	finalizeDeps := finalize.ServiceDeps{
		Pending:             pendingSvc,
		ApplicantRepo:       deps.ApplicantRepo,
		Tx:                  deps.FinalizeTx,
		Uploads:             deps.Uploads,
		VerificationEnabled: cfg.EmailVerificationEnabled,
	}
	if deps.Notifier != nil {
		finalizeDeps.Notifier = deps.Notifier
	}
	finalizeSvc := finalize.NewService(finalizeDeps)
	reviewSvc := review.NewService(review.ServiceDeps{
		SubmissionRepo: deps.SubmissionRepo,
		ReviewRepo:     deps.ReviewRepo,
		ApplicantRepo:  deps.ApplicantRepo,
		PromptRepo:     deps.PromptRepo,
		AcceptanceCap:  cfg.AcceptanceCap,
	})

	healthH := handler.NewHealthHandler(deps.DBProbe, deps.Uploads.Mode())
	appH := handler.NewApplicationHandler(intakeSvc, finalizeSvc)
	uploadH := handler.NewUploadHandler(deps.Uploads)
	promptH := handler.NewPromptHandler(promptSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if deps.Uploads.Mode() == domain.UploadModeLocal {
		fs := http.StripPrefix(upload.LocalURLPrefix, http.FileServer(http.Dir(cfg.LocalUploadDir)))
		r.Handle(upload.LocalURLPrefix+"*", fs)
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Check)
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/prompts", promptH.List)

		r.With(limit("apply", ratelimit.Apply)).Post("/applications", appH.Start)
		r.Get("/applications/{token}", appH.Describe)
		r.With(limit("resend", ratelimit.Resend)).Post("/applications/{token}/verification/resend", appH.Resend)
		r.With(burstRL.Limit).Post("/applications/{token}/verification/check", appH.Check)
		r.With(burstRL.Limit).Post("/applications/{token}/complete", appH.Complete)

		r.With(limit("presign", ratelimit.Presign)).Post("/uploads/slot", uploadH.Slot)
		r.With(burstRL.Limit).Post("/uploads/local", uploadH.Local)

		if deps.JWTProvider == nil {
			slog.Warn("jwt provider not configured, reviewer routes disabled")
			return
		}
		sessionH := handler.NewSessionHandler(reviewer.NewService(reviewer.ServiceDeps{
			ReviewerRepo: deps.ReviewerRepo,
			JWTProvider:  deps.JWTProvider,
		}))
		r.With(burstRL.Limit).Post("/sessions/login", sessionH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/reviews", reviewH.Submit)
			r.Get("/submissions", reviewH.List)
			r.Get("/submissions/{id}", reviewH.Get)
			r.Get("/stats", reviewH.Stats)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Put("/submissions/{id}", reviewH.UpdateStatus)
			})
		})
	})

	return r
}
