package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-portal/internal/appointments"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/sessions"
)

// ActionHandler serves the state-changing endpoints behind the views.
type ActionHandler struct {
	base
}

// NewActionHandler creates the action handler.
func NewActionHandler(cfg Config) *ActionHandler {
	return &ActionHandler{base: newBase(cfg)}
}

type statusInput struct {
	Status string `json:"status"`
}

// UpdateAppointmentStatus lets a doctor confirm, complete or cancel an appointment.
// PUT /doctor/appointments/{id}/status
func (h *ActionHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var in statusInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	target, err := appointments.ParseStatus(in.Status)
	if err != nil {
		jsonError(w, "Unknown appointment status", http.StatusUnprocessableEntity)
		return
	}
	h.transition(w, r, target)
}

// CancelAppointment lets a patient cancel a pending appointment.
// POST /patient/appointments/{id}/cancel
func (h *ActionHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, appointments.StatusCancelled)
}

func (h *ActionHandler) transition(w http.ResponseWriter, r *http.Request, target appointments.Status) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	api := h.backend(rec)

	current, err := findAppointment(r, api, id)
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load appointments")
		return
	}
	if current == nil {
		jsonError(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if err := appointments.CanTransition(rec.Session.Role, appointments.Status(current.Status), target); err != nil {
		status := http.StatusConflict
		if errors.Is(err, appointments.ErrUnknownStatus) {
			status = http.StatusUnprocessableEntity
		}
		jsonError(w, "Appointment cannot be moved to "+string(target), status)
		return
	}

	updated, err := api.UpdateAppointmentStatus(r.Context(), id, string(target))
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to update appointment")
		return
	}
	h.log(rec).Info("appointment status changed", "appointment_id", id, "from", current.Status, "to", target)
	writeJSON(w, http.StatusOK, appointmentResult(rec, updated))
}

func findAppointment(r *http.Request, api *clinicapi.Client, id string) (*clinicapi.Appointment, error) {
	list, err := api.ListAppointments(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

func appointmentResult(rec *sessions.Record, appt *clinicapi.Appointment) map[string]any {
	items := withActions(rec.Session.Role, []clinicapi.Appointment{*appt})
	return map[string]any{"appointment": items[0]}
}
