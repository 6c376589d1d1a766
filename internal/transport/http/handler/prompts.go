package handler

import (
	"context"
	"net/http"

	"github.com/applicant-intake/internal/domain"
)

type promptLister interface {
	ListActive(ctx context.Context) ([]domain.Prompt, error)
}

// PromptHandler lists the active recording prompts.
type PromptHandler struct {
	svc promptLister
}

func NewPromptHandler(svc promptLister) *PromptHandler { return &PromptHandler{svc: svc} }

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.svc.ListActive(r.Context())
	if err != nil {
		respondError(w, r, err, "failed to load prompts")
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}
