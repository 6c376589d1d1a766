package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/applicant-intake/internal/domain"
	jwtinfra "github.com/applicant-intake/internal/infrastructure/jwt"
	"github.com/applicant-intake/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtinfra.NewProviderFromKeys(privKey, &privKey.PublicKey, time.Hour)
}

// withParam injects a chi URL param into the request context.
func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withReviewer(r *http.Request, id, role string) *http.Request {
	claims := &jwtinfra.Claims{ReviewerID: id, Email: id + "@example.com", Name: "Reviewer " + id, Role: role}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Error
}

// --- envelopes ---

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrBadRequest:    http.StatusBadRequest,
		domain.ErrUnauthorized:  http.StatusUnauthorized,
		domain.ErrForbidden:     http.StatusForbidden,
		domain.ErrNotFound:      http.StatusNotFound,
		domain.ErrUploadMissing: http.StatusNotFound,
		domain.ErrConflict:      http.StatusConflict,
		domain.ErrExpired:       http.StatusGone,
		domain.ErrRateLimited:   http.StatusTooManyRequests,
		domain.ErrUnavailable:   http.StatusServiceUnavailable,
		fmt.Errorf("boom"):      http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	respondError(rr, r, fmt.Errorf("dynamodb: connection reset by peer"), "failed to complete application")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to complete application", decodeError(t, rr))
}

func TestRespondError_StripsSentinel(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	respondError(rr, r, fmt.Errorf("application not found: %w", domain.ErrNotFound), "unused")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application not found", decodeError(t, rr))
}

// --- health ---

func TestHealthCheck(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return fmt.Errorf("dial tcp: refused") }

	tests := []struct {
		name       string
		db         Probe
		mode       domain.UploadMode
		wantCode   int
		wantStatus string
	}{
		{"healthy", up, domain.UploadModePresigned, http.StatusOK, "healthy"},
		{"local storage is degraded", up, domain.UploadModeLocal, http.StatusOK, "degraded"},
		{"no storage is degraded", up, "", http.StatusOK, "degraded"},
		{"db down", down, domain.UploadModeBlob, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewHealthHandler(tt.db, tt.mode).Check(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
			assert.Equal(t, tt.wantCode, rr.Code)
			var report HealthReport
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.NotContains(t, report.Checks["database"].Error, "refused")
		})
	}
}

func TestHealthPing(t *testing.T) {
	h := NewHealthHandler(nil, "")
	rr := httptest.NewRecorder()
	h.Ping(rr, withParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Ping(rr, withParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/nope", nil), "action", "nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
