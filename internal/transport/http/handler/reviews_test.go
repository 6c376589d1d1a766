package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/applicant-intake/internal/application/review"
	"github.com/applicant-intake/internal/application/scoring"
	"github.com/applicant-intake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReviewSvc struct{ mock.Mock }

func (m *mockReviewSvc) Submit(ctx context.Context, by review.Reviewer, req domain.SubmitReviewRequest) (*domain.Review, error) {
	args := m.Called(ctx, by, req)
	if r, _ := args.Get(0).(*domain.Review); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewSvc) Get(ctx context.Context, submissionID string) (*review.SubmissionDetail, error) {
	args := m.Called(ctx, submissionID)
	if d, _ := args.Get(0).(*review.SubmissionDetail); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewSvc) List(ctx context.Context, f review.TriageFilter) (*review.TriagePage, error) {
	args := m.Called(ctx, f)
	if p, _ := args.Get(0).(*review.TriagePage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewSvc) UpdateStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus) (*review.SubmissionView, error) {
	args := m.Called(ctx, submissionID, status)
	if v, _ := args.Get(0).(*review.SubmissionView); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewSvc) Stats(ctx context.Context) (*review.Stats, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).(*review.Stats); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestParseTriageFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/v1/submissions?status=accepted&dateFrom=2026-03-01&dateTo=2026-03-31&hasReview=true&minScore=2.5&maxScore=4&sortBy=score&sortOrder=asc&page=2&limit=50", nil)
	f, err := parseTriageFilter(r)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAccepted, f.Status)
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, 31, f.DateTo.Day())
	require.NotNil(t, f.HasReview)
	assert.True(t, *f.HasReview)
	assert.Equal(t, 2.5, *f.MinScore)
	assert.Equal(t, 4.0, *f.MaxScore)
	assert.Equal(t, scoring.ParseSortKey("score", "asc"), f.Sort)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 50, f.Limit)
}

func TestParseTriageFilter_Defaults(t *testing.T) {
	f, err := parseTriageFilter(httptest.NewRequest(http.MethodGet, "/v1/submissions?status=all", nil))
	require.NoError(t, err)
	assert.Empty(t, f.Status)
	assert.Nil(t, f.DateFrom)
	assert.Nil(t, f.HasReview)
	assert.Equal(t, review.DefaultPage, f.Page)
	assert.Equal(t, review.DefaultLimit, f.Limit)
}

func TestParseTriageFilter_Invalid(t *testing.T) {
	for _, q := range []string{"status=maybe", "dateFrom=03/01/2026", "hasReview=perhaps", "minScore=high"} {
		_, err := parseTriageFilter(httptest.NewRequest(http.MethodGet, "/v1/submissions?"+q, nil))
		assert.Error(t, err, q)
	}
}

func TestSubmitReview_UsesClaims(t *testing.T) {
	svc := &mockReviewSvc{}
	req := domain.SubmitReviewRequest{SubmissionID: "sub-1", CuriosityVsEgo: 4, ParticipationVsSpectatorship: 3, EmotionalIntelligence: 5}
	svc.On("Submit", mock.Anything, review.Reviewer{ID: "rev-1", Name: "Reviewer rev-1"}, req).
		Return(&domain.Review{SubmissionID: "sub-1", ReviewerID: "rev-1"}, nil)
	h := NewReviewHandler(svc)

	rr := httptest.NewRecorder()
	r := withReviewer(httptest.NewRequest(http.MethodPost, "/v1/reviews", jsonBody(t, req)), "rev-1", domain.RoleReviewer)
	h.Submit(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestSubmitReview_MissingClaims(t *testing.T) {
	h := NewReviewHandler(&mockReviewSvc{})
	rr := httptest.NewRecorder()
	h.Submit(rr, httptest.NewRequest(http.MethodPost, "/v1/reviews", jsonBody(t, map[string]any{})))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateStatus_CapReached(t *testing.T) {
	svc := &mockReviewSvc{}
	svc.On("UpdateStatus", mock.Anything, "sub-1", domain.StatusAccepted).
		Return(nil, fmt.Errorf("acceptance cap reached (150), consider waitlisting instead: %w", domain.ErrConflict))
	h := NewReviewHandler(svc)

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/v1/submissions/sub-1", jsonBody(t, map[string]string{"status": "ACCEPTED"}))
	h.UpdateStatus(rr, withParam(r, "id", "sub-1"))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, decodeError(t, rr), "acceptance cap reached")
}

func TestStats(t *testing.T) {
	svc := &mockReviewSvc{}
	svc.On("Stats", mock.Anything).Return(&review.Stats{AcceptedCap: 150, SpotsRemaining: 149, Counts: review.StatusCounts{Accepted: 1, Total: 3}}, nil)
	h := NewReviewHandler(svc)

	rr := httptest.NewRecorder()
	h.Stats(rr, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got review.Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 149, got.SpotsRemaining)
}

func TestGetSubmission_NotFound(t *testing.T) {
	svc := &mockReviewSvc{}
	svc.On("Get", mock.Anything, "nope").Return(nil, fmt.Errorf("submission not found: %w", domain.ErrNotFound))
	h := NewReviewHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withParam(httptest.NewRequest(http.MethodGet, "/v1/submissions/nope", nil), "id", "nope"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
