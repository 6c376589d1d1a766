package handler

import (
	"net/http"

	"github.com/applicant-intake/internal/application/reviewer"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/transport/http/middleware"
)

// SessionHandler handles reviewer login and the current-session lookup.
type SessionHandler struct {
	svc reviewer.Service
}

func NewSessionHandler(svc reviewer.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err, "failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rv, err := h.svc.Current(r.Context(), claims.Email)
	if err != nil {
		respondError(w, r, err, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
