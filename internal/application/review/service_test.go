package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/applicant-intake/internal/application/scoring"
	"github.com/applicant-intake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSubmissionStore struct{ mock.Mock }

func (m *mockSubmissionStore) Get(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if s, _ := args.Get(0).(*domain.Submission); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubmissionStore) List(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error) {
	args := m.Called(ctx, status)
	s, _ := args.Get(0).([]domain.Submission)
	return s, args.Error(1)
}
func (m *mockSubmissionStore) CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}
func (m *mockSubmissionStore) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) (*domain.Submission, error) {
	args := m.Called(ctx, id, status)
	if s, _ := args.Get(0).(*domain.Submission); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReviewStore struct{ mock.Mock }

func (m *mockReviewStore) Upsert(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	args := m.Called(ctx, r)
	if rv, _ := args.Get(0).(*domain.Review); rv != nil {
		return rv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReviewStore) ListBySubmission(ctx context.Context, id string) ([]domain.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).([]domain.Review)
	return r, args.Error(1)
}
func (m *mockReviewStore) GroupBySubmission(ctx context.Context) (map[string][]domain.Review, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).(map[string][]domain.Review)
	return g, args.Error(1)
}

type mockApplicantStore struct{ mock.Mock }

func (m *mockApplicantStore) Get(ctx context.Context, email string) (*domain.Applicant, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Applicant); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPromptStore struct{ mock.Mock }

func (m *mockPromptStore) Get(ctx context.Context, id string) (*domain.Prompt, error) {
	args := m.Called(ctx, id)
	if p, _ := args.Get(0).(*domain.Prompt); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixture struct {
	subs       *mockSubmissionStore
	reviews    *mockReviewStore
	applicants *mockApplicantStore
	prompts    *mockPromptStore
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(acceptanceCap int) (Service, *fixture) {
	f := &fixture{&mockSubmissionStore{}, &mockReviewStore{}, &mockApplicantStore{}, &mockPromptStore{}}
	return NewService(ServiceDeps{
		SubmissionRepo: f.subs,
		ReviewRepo:     f.reviews,
		ApplicantRepo:  f.applicants,
		PromptRepo:     f.prompts,
		AcceptanceCap:  acceptanceCap,
		Now:            func() time.Time { return testNow },
	}), f
}

func sub(id string, status domain.SubmissionStatus, created time.Time) domain.Submission {
	return domain.Submission{SubmissionID: id, Status: status, CreatedAt: created, ApplicantEmail: id + "@example.com", PromptID: "prompt-1"}
}

func rv(sid string, a, b, c int) domain.Review {
	return domain.Review{SubmissionID: sid, ReviewerID: "r-" + sid, CuriosityVsEgo: a, ParticipationVsSpectatorship: b, EmotionalIntelligence: c}
}

func day(d int) time.Time { return time.Date(2026, 3, d, 15, 0, 0, 0, time.UTC) }

func ids(views []SubmissionView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.SubmissionID
	}
	return out
}

// --- Submit ---

func TestSubmit_Upserts(t *testing.T) {
	svc, f := newTestService(150)
	s := sub("s1", domain.StatusSubmitted, day(1))
	f.subs.On("Get", mock.Anything, "s1").Return(&s, nil)
	f.reviews.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.ReviewerID == "rev-1" && r.ReviewerName == "Grace" && r.CuriosityVsEgo == 4
	})).Return(&domain.Review{SubmissionID: "s1", ReviewerID: "rev-1"}, nil)

	got, err := svc.Submit(context.Background(), Reviewer{ID: "rev-1", Name: "Grace"}, domain.SubmitReviewRequest{
		SubmissionID: "s1", CuriosityVsEgo: 4, ParticipationVsSpectatorship: 3, EmotionalIntelligence: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "rev-1", got.ReviewerID)
}

func TestSubmit_ScoreOutOfRange(t *testing.T) {
	svc, f := newTestService(150)
	_, err := svc.Submit(context.Background(), Reviewer{ID: "rev-1"}, domain.SubmitReviewRequest{
		SubmissionID: "s1", CuriosityVsEgo: 6, ParticipationVsSpectatorship: 3, EmotionalIntelligence: 5,
	})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	f.subs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSubmit_SubmissionNotFound(t *testing.T) {
	svc, f := newTestService(150)
	f.subs.On("Get", mock.Anything, "nope").Return(nil, fmt.Errorf("submission not found: %w", domain.ErrNotFound))
	_, err := svc.Submit(context.Background(), Reviewer{ID: "rev-1"}, domain.SubmitReviewRequest{
		SubmissionID: "nope", CuriosityVsEgo: 1, ParticipationVsSpectatorship: 1, EmotionalIntelligence: 1,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- Get ---

func TestGet_ScoresAndJoins(t *testing.T) {
	svc, f := newTestService(150)
	s := sub("s1", domain.StatusSubmitted, day(1))
	f.subs.On("Get", mock.Anything, "s1").Return(&s, nil)
	f.reviews.On("ListBySubmission", mock.Anything, "s1").Return([]domain.Review{rv("s1", 4, 4, 4), rv("s1", 2, 2, 2), rv("s1", 3, 3, 3)}, nil)
	f.applicants.On("Get", mock.Anything, "s1@example.com").Return(&domain.Applicant{ApplicantID: "a1"}, nil)
	f.prompts.On("Get", mock.Anything, "prompt-1").Return(nil, fmt.Errorf("prompt not found: %w", domain.ErrNotFound))

	d, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, d.Scoring.Average)
	assert.InDelta(t, 3.0, *d.Scoring.Average, 1e-9)
	assert.Equal(t, scoring.ConfidenceHigh, d.Scoring.Confidence)
	assert.Equal(t, "a1", d.Applicant.ApplicantID)
	assert.Nil(t, d.Prompt)
}

// --- List ---

func triageFixture(f *fixture) {
	f.subs.On("List", mock.Anything, domain.SubmissionStatus("")).Return([]domain.Submission{
		sub("old", domain.StatusSubmitted, day(1)),
		sub("mid", domain.StatusWaitlist, day(5)),
		sub("new", domain.StatusSubmitted, day(9)),
	}, nil)
	f.reviews.On("GroupBySubmission", mock.Anything).Return(map[string][]domain.Review{
		"old": {rv("old", 5, 5, 5)},
		"mid": {rv("mid", 2, 2, 2)},
	}, nil)
}

func TestList_DefaultNewestFirst(t *testing.T) {
	svc, f := newTestService(150)
	triageFixture(f)

	page, err := svc.List(context.Background(), TriageFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids(page.Submissions))
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Total: 3, TotalPages: 1}, page.Pagination)
	assert.Equal(t, []domain.Review{}, page.Submissions[0].Reviews)
}

func TestList_LowestScoreNullsLast(t *testing.T) {
	svc, f := newTestService(150)
	triageFixture(f)

	page, err := svc.List(context.Background(), TriageFilter{Sort: scoring.SortLowestScore})
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "old", "new"}, ids(page.Submissions))
}

func TestList_Filters(t *testing.T) {
	yes, no := true, false
	from, to := day(5).Truncate(24*time.Hour), day(5).Truncate(24*time.Hour)
	minScore := 3.0

	cases := []struct {
		name string
		f    TriageFilter
		want []string
	}{
		{"has review", TriageFilter{HasReview: &yes}, []string{"mid", "old"}},
		{"no review", TriageFilter{HasReview: &no}, []string{"new"}},
		{"date range covers whole day", TriageFilter{DateFrom: &from, DateTo: &to}, []string{"mid"}},
		{"min score excludes nulls", TriageFilter{MinScore: &minScore}, []string{"old"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, f := newTestService(150)
			triageFixture(f)
			page, err := svc.List(context.Background(), tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(page.Submissions))
		})
	}
}

func TestList_DateToExcludesNextMidnight(t *testing.T) {
	svc, f := newTestService(150)
	to := day(5).Truncate(24 * time.Hour)
	f.subs.On("List", mock.Anything, domain.SubmissionStatus("")).Return([]domain.Submission{
		sub("late", domain.StatusSubmitted, to.Add(24*time.Hour-time.Nanosecond)),
		sub("midnight", domain.StatusSubmitted, to.AddDate(0, 0, 1)),
	}, nil)
	f.reviews.On("GroupBySubmission", mock.Anything).Return(map[string][]domain.Review{}, nil)

	page, err := svc.List(context.Background(), TriageFilter{DateTo: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(page.Submissions))
}

func TestList_Pagination(t *testing.T) {
	svc, f := newTestService(150)
	triageFixture(f)

	page, err := svc.List(context.Background(), TriageFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids(page.Submissions))
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page, err = svc.List(context.Background(), TriageFilter{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Submissions)
}

// --- UpdateStatus ---

func TestUpdateStatus_CapReached(t *testing.T) {
	svc, f := newTestService(2)
	s := sub("s1", domain.StatusSubmitted, day(1))
	f.subs.On("Get", mock.Anything, "s1").Return(&s, nil)
	f.subs.On("CountByStatus", mock.Anything, domain.StatusAccepted).Return(2, nil)

	_, err := svc.UpdateStatus(context.Background(), "s1", domain.StatusAccepted)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	f.subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_WaitlistIgnoresCap(t *testing.T) {
	svc, f := newTestService(0)
	s := sub("s1", domain.StatusSubmitted, day(1))
	updated := sub("s1", domain.StatusWaitlist, day(1))
	f.subs.On("Get", mock.Anything, "s1").Return(&s, nil)
	f.subs.On("UpdateStatus", mock.Anything, "s1", domain.StatusWaitlist).Return(&updated, nil)
	f.reviews.On("ListBySubmission", mock.Anything, "s1").Return(nil, nil)

	v, err := svc.UpdateStatus(context.Background(), "s1", domain.StatusWaitlist)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitlist, v.Status)
	assert.Equal(t, scoring.ConfidenceNone, v.Scoring.Confidence)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _ := newTestService(150)
	_, err := svc.UpdateStatus(context.Background(), "s1", "MAYBE")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Stats ---

func TestStats(t *testing.T) {
	svc, f := newTestService(150)
	f.subs.On("CountByStatus", mock.Anything, domain.StatusSubmitted).Return(3, nil)
	f.subs.On("CountByStatus", mock.Anything, domain.StatusAccepted).Return(149, nil)
	f.subs.On("CountByStatus", mock.Anything, domain.StatusWaitlist).Return(1, nil)
	f.subs.On("CountByStatus", mock.Anything, domain.StatusRejected).Return(0, nil)
	f.reviews.On("GroupBySubmission", mock.Anything).Return(map[string][]domain.Review{
		"s1": {rv("s1", 5, 4, 3), rv("s1", 1, 1, 1)},
	}, nil)
	f.subs.On("List", mock.Anything, domain.StatusSubmitted).Return([]domain.Submission{
		sub("s1", domain.StatusSubmitted, day(1)),
		sub("s2", domain.StatusSubmitted, day(2)),
		sub("s3", domain.StatusSubmitted, day(3)),
	}, nil)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCounts{Submitted: 3, Accepted: 149, Waitlist: 1, Total: 153}, st.Counts)
	assert.Equal(t, 2, st.NeedsReview)
	assert.Equal(t, 2, st.TotalReviews)
	assert.InDelta(t, 2.5, st.AverageScore, 1e-9)
	assert.Equal(t, 1, st.SpotsRemaining)
}
