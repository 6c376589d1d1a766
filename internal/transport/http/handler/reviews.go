package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/applicant-intake/internal/application/review"
	"github.com/applicant-intake/internal/application/scoring"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// ReviewHandler serves the reviewer dashboard: reviews, triage, decisions and stats.
type ReviewHandler struct {
	svc review.Service
}

func NewReviewHandler(svc review.Service) *ReviewHandler { return &ReviewHandler{svc: svc} }

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SubmitReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rv, err := h.svc.Submit(r.Context(), review.Reviewer{ID: claims.ReviewerID, Name: claims.Name}, req)
	if err != nil {
		respondError(w, r, err, "failed to save review")
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseTriageFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err, "failed to list submissions")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, "failed to load submission")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ReviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.SubmissionStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, r, err, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, r, err, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type queryError string

func (e queryError) Error() string { return string(e) }

const dateLayout = "2006-01-02"

// parseTriageFilter reads status, dateFrom, dateTo, hasReview, minScore,
// maxScore, sortBy, sortOrder, page and limit. status=all or an absent
// status lists every status.
func parseTriageFilter(r *http.Request) (review.TriageFilter, error) {
	q := r.URL.Query()
	f := review.TriageFilter{
		Sort:  scoring.ParseSortKey(q.Get("sortBy"), q.Get("sortOrder")),
		Page:  atoiDefault(q.Get("page"), review.DefaultPage),
		Limit: atoiDefault(q.Get("limit"), review.DefaultLimit),
	}

	if s := strings.ToUpper(q.Get("status")); s != "" && s != "ALL" {
		f.Status = domain.SubmissionStatus(s)
		if !f.Status.Valid() {
			return f, queryError("invalid status")
		}
	}
	for name, dst := range map[string]**time.Time{"dateFrom": &f.DateFrom, "dateTo": &f.DateTo} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				return f, queryError("invalid " + name + ", expected YYYY-MM-DD")
			}
			*dst = &t
		}
	}
	if v := q.Get("hasReview"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, queryError("invalid hasReview")
		}
		f.HasReview = &b
	}
	for name, dst := range map[string]**float64{"minScore": &f.MinScore, "maxScore": &f.MaxScore} {
		if v := q.Get(name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return f, queryError("invalid " + name)
			}
			*dst = &n
		}
	}
	return f, nil
}

func atoiDefault(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}
