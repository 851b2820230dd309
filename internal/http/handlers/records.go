package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-portal/internal/clinicapi"
)

// CreateRecord issues a medical record for a patient.
// POST /doctor/patients/records
func (h *ActionHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	var in clinicapi.CreateRecordRequest
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	if in.PatientID == "" || in.Diagnosis == "" {
		jsonError(w, "Patient and diagnosis are required", http.StatusUnprocessableEntity)
		return
	}
	created, err := h.backend(rec).CreateRecord(r.Context(), in)
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to create record")
		return
	}
	h.log(rec).Info("medical record created", "patient_id", in.PatientID)
	writeJSON(w, http.StatusCreated, map[string]any{"record": created})
}
