package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type rejectInput struct {
	Reason string `json:"reason"`
}

// ApproveDoctor activates a pending doctor account.
// PUT /admin/doctor-approvals/{id}/approve
func (h *ActionHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.backend(rec).ApproveDoctor(r.Context(), id); err != nil {
		h.backendError(w, r, rec, err, "Failed to approve doctor")
		return
	}
	h.log(rec).Info("doctor approved", "doctor_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "approved"})
}

// RejectDoctor declines a pending doctor account. A reason is required.
// PUT /admin/doctor-approvals/{id}/reject
func (h *ActionHandler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	var in rejectInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Reason) == "" {
		jsonError(w, "A rejection reason is required", http.StatusUnprocessableEntity)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.backend(rec).RejectDoctor(r.Context(), id, in.Reason); err != nil {
		h.backendError(w, r, rec, err, "Failed to reject doctor")
		return
	}
	h.log(rec).Info("doctor rejected", "doctor_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "rejected"})
}
