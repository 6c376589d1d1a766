// Package review holds the reviewer-facing workflow: rubric reviews, triage
// listings, status decisions and dashboard stats.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/applicant-intake/internal/application/scoring"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/validate"
	"github.com/applicant-intake/internal/telemetry"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SubmissionView is a submission with its reviews and computed scoring.
type SubmissionView struct {
	domain.Submission
	Reviews []domain.Review `json:"reviews"`
	Scoring scoring.Result  `json:"scoring"`
}

func (v SubmissionView) SortCreatedAt() time.Time    { return v.CreatedAt }
func (v SubmissionView) SortScoring() scoring.Result { return v.Scoring }

type SubmissionDetail struct {
	SubmissionView
	Applicant *domain.Applicant `json:"applicant,omitempty"`
	Prompt    *domain.Prompt    `json:"prompt,omitempty"`
}

// TriageFilter narrows a listing. Nil pointers and an empty Status mean no filter.
type TriageFilter struct {
	Status    domain.SubmissionStatus
	DateFrom  *time.Time
	DateTo    *time.Time // inclusive of the whole day
	HasReview *bool
	MinScore  *float64
	MaxScore  *float64
	Sort      scoring.SortKey
	Page      int
	Limit     int
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type TriagePage struct {
	Submissions []SubmissionView `json:"submissions"`
	Pagination  Pagination       `json:"pagination"`
}

type StatusCounts struct {
	Submitted int `json:"submitted"`
	Accepted  int `json:"accepted"`
	Waitlist  int `json:"waitlist"`
	Rejected  int `json:"rejected"`
	Total     int `json:"total"`
}

type Stats struct {
	Counts         StatusCounts `json:"counts"`
	NeedsReview    int          `json:"needs_review"`
	TotalReviews   int          `json:"total_reviews"`
	AverageScore   float64      `json:"average_score"`
	AcceptedCap    int          `json:"accepted_cap"`
	SpotsRemaining int          `json:"spots_remaining"`
}

// Reviewer identifies who is submitting a review.
type Reviewer struct {
	ID   string
	Name string
}

type Service interface {
	Submit(ctx context.Context, by Reviewer, req domain.SubmitReviewRequest) (*domain.Review, error)
	Get(ctx context.Context, submissionID string) (*SubmissionDetail, error)
	List(ctx context.Context, f TriageFilter) (*TriagePage, error)
	UpdateStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus) (*SubmissionView, error)
	Stats(ctx context.Context) (*Stats, error)
}

type submissionStore interface {
	Get(ctx context.Context, submissionID string) (*domain.Submission, error)
	List(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error)
	CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int, error)
	UpdateStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus) (*domain.Submission, error)
}

type reviewStore interface {
	Upsert(ctx context.Context, r *domain.Review) (*domain.Review, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]domain.Review, error)
	GroupBySubmission(ctx context.Context) (map[string][]domain.Review, error)
}

type applicantStore interface {
	Get(ctx context.Context, email string) (*domain.Applicant, error)
}

type promptStore interface {
	Get(ctx context.Context, promptID string) (*domain.Prompt, error)
}

type service struct {
	submissions   submissionStore
	reviews       reviewStore
	applicants    applicantStore
	prompts       promptStore
	acceptanceCap int
	now           func() time.Time
}

type ServiceDeps struct {
	SubmissionRepo submissionStore
	ReviewRepo     reviewStore
	ApplicantRepo  applicantStore
	PromptRepo     promptStore
	AcceptanceCap  int
	Now            func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		submissions:   deps.SubmissionRepo,
		reviews:       deps.ReviewRepo,
		applicants:    deps.ApplicantRepo,
		prompts:       deps.PromptRepo,
		acceptanceCap: deps.AcceptanceCap,
		now:           now,
	}
}

func (s *service) Submit(ctx context.Context, by Reviewer, req domain.SubmitReviewRequest) (*domain.Review, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if _, err := s.submissions.Get(ctx, req.SubmissionID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	saved, err := s.reviews.Upsert(ctx, &domain.Review{
		SubmissionID:                 req.SubmissionID,
		ReviewerID:                   by.ID,
		ReviewerName:                 by.Name,
		CuriosityVsEgo:               req.CuriosityVsEgo,
		ParticipationVsSpectatorship: req.ParticipationVsSpectatorship,
		EmotionalIntelligence:        req.EmotionalIntelligence,
		Notes:                        req.Notes,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	})
	if err != nil {
		return nil, err
	}
	telemetry.ReviewsSubmittedTotal.Inc()
	return saved, nil
}

func (s *service) Get(ctx context.Context, submissionID string) (*SubmissionDetail, error) {
	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	d := &SubmissionDetail{SubmissionView: view(*sub, reviews)}
	if a, err := s.applicants.Get(ctx, sub.ApplicantEmail); err == nil {
		d.Applicant = a
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if p, err := s.prompts.Get(ctx, sub.PromptID); err == nil {
		d.Prompt = p
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, f TriageFilter) (*TriagePage, error) {
	subs, err := s.submissions.List(ctx, f.Status)
	if err != nil {
		return nil, err
	}
	grouped, err := s.reviews.GroupBySubmission(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		v := view(sub, grouped[sub.SubmissionID])
		if f.matches(v) {
			views = append(views, v)
		}
	}
	key := f.Sort
	if key == "" {
		key = scoring.SortNewest
	}
	sorted := scoring.Sort(views, key)

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	total := len(sorted)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return &TriagePage{
		Submissions: sorted[start:end],
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

func (f TriageFilter) matches(v SubmissionView) bool {
	if f.DateFrom != nil && v.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && !v.CreatedAt.Before(f.DateTo.AddDate(0, 0, 1)) {
		return false
	}
	if f.HasReview != nil && (len(v.Reviews) > 0) != *f.HasReview {
		return false
	}
	avg := v.Scoring.Average
	if f.MinScore != nil && (avg == nil || *avg < *f.MinScore) {
		return false
	}
	if f.MaxScore != nil && (avg == nil || *avg > *f.MaxScore) {
		return false
	}
	return true
}

func (s *service) UpdateStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus) (*SubmissionView, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
	}
	current, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if status == domain.StatusAccepted && current.Status != domain.StatusAccepted {
		accepted, err := s.submissions.CountByStatus(ctx, domain.StatusAccepted)
		if err != nil {
			return nil, err
		}
		if accepted >= s.acceptanceCap {
			return nil, fmt.Errorf("acceptance cap reached (%d), consider waitlisting instead: %w", s.acceptanceCap, domain.ErrConflict)
		}
	}
	updated, err := s.submissions.UpdateStatus(ctx, submissionID, status)
	if err != nil {
		return nil, err
	}
	slog.Info("submission status changed", "submission_id", submissionID, "from", current.Status, "to", status)
	reviews, err := s.reviews.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	v := view(*updated, reviews)
	return &v, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := map[domain.SubmissionStatus]*int{
		domain.StatusSubmitted: &st.Counts.Submitted,
		domain.StatusAccepted:  &st.Counts.Accepted,
		domain.StatusWaitlist:  &st.Counts.Waitlist,
		domain.StatusRejected:  &st.Counts.Rejected,
	}
	for status, dst := range counts {
		n, err := s.submissions.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*dst = n
		st.Counts.Total += n
	}

	grouped, err := s.reviews.GroupBySubmission(ctx)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, reviews := range grouped {
		for _, r := range reviews {
			sum += scoring.ReviewAverage(r)
			st.TotalReviews++
		}
	}
	if st.TotalReviews > 0 {
		st.AverageScore = math.Round(sum/float64(st.TotalReviews)*100) / 100
	}

	submitted, err := s.submissions.List(ctx, domain.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	for _, sub := range submitted {
		if len(grouped[sub.SubmissionID]) == 0 {
			st.NeedsReview++
		}
	}

	st.AcceptedCap = s.acceptanceCap
	st.SpotsRemaining = max(0, s.acceptanceCap-st.Counts.Accepted)
	return &st, nil
}

func view(sub domain.Submission, reviews []domain.Review) SubmissionView {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return SubmissionView{Submission: sub, Reviews: reviews, Scoring: scoring.Score(reviews)}
}
