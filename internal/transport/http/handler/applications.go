package handler

import (
	"context"
	"net/http"

	"github.com/applicant-intake/internal/application/intake"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

type finalizer interface {
	Finalize(ctx context.Context, token string, req domain.FinalizeRequest) (*domain.Submission, error)
}

// ApplicationHandler handles the applicant-facing intake flow.
type ApplicationHandler struct {
	svc      intake.Service
	finalize finalizer
}

func NewApplicationHandler(svc intake.Service, finalize finalizer) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, finalize: finalize}
}

func (h *ApplicationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req domain.StartApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Start(r.Context(), req)
	if err != nil {
		respondError(w, r, err, "failed to start application")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ApplicationHandler) Describe(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Describe(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, r, err, "failed to load application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resend(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, r, err, "failed to send verification code")
		return
	}
	if res.AlreadyVerified {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *ApplicationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid code format")
		return
	}
	res, err := h.svc.Check(r.Context(), chi.URLParam(r, "token"), req.Code)
	if err != nil {
		respondError(w, r, err, "failed to verify code")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ApplicationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req domain.FinalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.finalize.Finalize(r.Context(), chi.URLParam(r, "token"), req)
	if err != nil {
		respondError(w, r, err, "failed to complete application")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
