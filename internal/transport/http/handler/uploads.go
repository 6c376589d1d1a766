package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/applicant-intake/internal/application/upload"
	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/validate"
)

type slotIssuer interface {
	RequestSlot(ctx context.Context, req domain.UploadSlotRequest) (*domain.UploadSlot, error)
}

type localAcceptor interface {
	Accept(ctx context.Context, r io.Reader, contentType string) (*upload.LocalFile, error)
}

// UploadHandler hands out upload slots and, in local mode, accepts the file itself.
type UploadHandler struct {
	slots slotIssuer
	local localAcceptor
}

// NewUploadHandler builds the handler for backend. Direct uploads are only
// accepted when backend is the local disk backend.
func NewUploadHandler(backend upload.Backend) *UploadHandler {
	h := &UploadHandler{slots: backend}
	if l, ok := backend.(*upload.Local); ok {
		h.local = l
	}
	return h
}

func (h *UploadHandler) Slot(w http.ResponseWriter, r *http.Request) {
	var req domain.UploadSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, err := h.slots.RequestSlot(r.Context(), req)
	if err != nil {
		respondError(w, r, err, "failed to create upload slot")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *UploadHandler) Local(w http.ResponseWriter, r *http.Request) {
	if h.local == nil {
		writeError(w, http.StatusForbidden, "local uploads not available")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxVideoBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	res, err := h.local.Accept(r.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, r, err, "failed to save upload")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
