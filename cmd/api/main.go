package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/applicant-intake/internal/application/prompt"
	"github.com/applicant-intake/internal/application/reviewer"
	"github.com/applicant-intake/internal/application/upload"
	"github.com/applicant-intake/internal/config"
	"github.com/applicant-intake/internal/infrastructure/dynamo"
	jwtinfra "github.com/applicant-intake/internal/infrastructure/jwt"
	"github.com/applicant-intake/internal/infrastructure/kv"
	"github.com/applicant-intake/internal/infrastructure/smtp"
	"github.com/applicant-intake/internal/infrastructure/sns"
	"github.com/applicant-intake/internal/telemetry"
	transporthttp "github.com/applicant-intake/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	telemetry.SetupLogger(cfg.LogFormat, cfg.LogLevel)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	deps := &transporthttp.Deps{
		PromptRepo:     dynamo.NewPromptRepo(dynamoClient, cfg.DynamoTables.Prompts),
		PendingRepo:    dynamo.NewPendingRepo(dynamoClient, cfg.DynamoTables.PendingApplications),
		ApplicantRepo:  dynamo.NewApplicantRepo(dynamoClient, cfg.DynamoTables.Applicants),
		SubmissionRepo: dynamo.NewSubmissionRepo(dynamoClient, cfg.DynamoTables.Submissions),
		ReviewRepo:     dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.Reviews),
		ReviewerRepo:   dynamo.NewReviewerRepo(dynamoClient, cfg.DynamoTables.Reviewers),
		FinalizeTx:     dynamo.NewFinalizeTx(dynamoClient, cfg.DynamoTables),
		Uploads:        upload.Resolve(cfg),
		Mailer:         smtp.NewMailer(cfg),
		DBProbe: func(ctx context.Context) error {
			return dynamo.Ping(ctx, dynamoClient, cfg.DynamoTables.Prompts)
		},
	}

	if err := prompt.NewService(deps.PromptRepo).Seed(ctx); err != nil {
		slog.Error("failed to seed prompts", "err", err)
	}

	// Short-lived state: Redis when configured, otherwise in process.
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		store := kv.NewRedisStore(client, "intake")
		if err := store.Ping(ctx); err != nil {
			slog.Warn("redis not reachable, requests will fail open", "addr", cfg.RedisAddr, "err", err)
		}
		deps.KV = store
	} else {
		store := kv.NewMemoryStore(nil)
		go kv.NewSweeper("memory", store, time.Minute).Run(ctx)
		deps.KV = store
	}

	// JWT provider (optional, reviewer routes are disabled without it).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
		svc := reviewer.NewService(reviewer.ServiceDeps{ReviewerRepo: deps.ReviewerRepo, JWTProvider: p})
		if err := svc.EnsureAdmin(ctx, cfg.AdminEmail, "Admin", cfg.AdminPassword); err != nil {
			slog.Error("failed to seed admin reviewer", "err", err)
		}
	} else {
		slog.Warn("jwt provider not available", "err", err)
	}

	// SNS submission events (optional, logged when not configured).
	if cfg.SNSTopicARN != "" {
		if pub, err := sns.NewPublisher(cfg); err == nil {
			deps.Notifier = pub
		} else {
			slog.Warn("sns publisher not available", "err", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // local uploads stream up to 500MB
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "upload_mode", deps.Uploads.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
