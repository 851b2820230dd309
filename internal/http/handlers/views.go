package handlers

import (
	"net/http"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/appointments"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/sessions"
)

const recentLimit = 5

// ViewHandler renders the dashboards and list views behind the route guard.
type ViewHandler struct {
	base
}

// NewViewHandler creates the view handler.
func NewViewHandler(cfg Config) *ViewHandler {
	return &ViewHandler{base: newBase(cfg)}
}

// appointmentItem is an appointment plus the status changes the viewer may make.
type appointmentItem struct {
	clinicapi.Appointment
	Actions []appointments.Status `json:"actions"`
}

type appointmentList struct {
	Filter       string               `json:"filter"`
	Filters      []string             `json:"filters"`
	Summary      appointments.Summary `json:"summary"`
	Appointments []appointmentItem    `json:"appointments"`
}

var statusFilters = []string{
	appointments.FilterAll,
	string(appointments.StatusPending),
	string(appointments.StatusConfirmed),
	string(appointments.StatusCompleted),
	string(appointments.StatusCancelled),
}

func withActions(role access.Role, list []clinicapi.Appointment) []appointmentItem {
	out := make([]appointmentItem, 0, len(list))
	for _, a := range list {
		out = append(out, appointmentItem{
			Appointment: a,
			Actions:     appointments.Actions(role, appointments.Status(a.Status)),
		})
	}
	return out
}

func (h *ViewHandler) buildAppointmentList(rec *sessions.Record, list []clinicapi.Appointment, filter string) appointmentList {
	if filter == "" {
		filter = appointments.FilterAll
	}
	return appointmentList{
		Filter:       filter,
		Filters:      statusFilters,
		Summary:      appointments.Summarize(list, h.now()),
		Appointments: withActions(rec.Session.Role, appointments.Filter(list, filter)),
	}
}

func (h *ViewHandler) render(w http.ResponseWriter, rec *sessions.Record, path string, data any) {
	s := rec.Session
	writeJSON(w, http.StatusOK, newPage(path, &s, data))
}

func firstN[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// PatientDashboard shows appointment counters and recent activity.
// GET /patient/dashboard
func (h *ViewHandler) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	api := h.backend(rec)
	list, err := api.ListAppointments(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load appointments")
		return
	}
	records, err := api.ListRecords(r.Context(), "")
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load records")
		return
	}
	h.render(w, rec, access.PatientDashboardPath, map[string]any{
		"summary":              appointments.Summarize(list, h.now()),
		"recent_appointments":  withActions(rec.Session.Role, firstN(list, recentLimit)),
		"recent_records":       firstN(records, recentLimit),
		"book_appointment_url": access.PatientBookAppointmentPath,
	})
}

// PatientAppointments lists the patient's appointments, filtered by ?status=.
// GET /patient/appointments
func (h *ViewHandler) PatientAppointments(w http.ResponseWriter, r *http.Request) {
	h.appointmentsView(w, r, access.PatientAppointmentsPath)
}

// DoctorAppointments lists the doctor's appointments, filtered by ?status=.
// GET /doctor/appointments
func (h *ViewHandler) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	h.appointmentsView(w, r, access.DoctorAppointmentsPath)
}

func (h *ViewHandler) appointmentsView(w http.ResponseWriter, r *http.Request, path string) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	list, err := h.backend(rec).ListAppointments(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load appointments")
		return
	}
	h.render(w, rec, path, h.buildAppointmentList(rec, list, r.URL.Query().Get("status")))
}

// DoctorDashboard shows counters and the filtered appointment list.
// GET /doctor/dashboard
func (h *ViewHandler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	h.appointmentsView(w, r, access.DoctorDashboardPath)
}

// PatientMessages lists conversations.
// GET /patient/messages
func (h *ViewHandler) PatientMessages(w http.ResponseWriter, r *http.Request) {
	h.conversationsView(w, r, access.PatientMessagesPath)
}

// DoctorMessages lists conversations.
// GET /doctor/messages
func (h *ViewHandler) DoctorMessages(w http.ResponseWriter, r *http.Request) {
	h.conversationsView(w, r, access.DoctorMessagesPath)
}

func (h *ViewHandler) conversationsView(w http.ResponseWriter, r *http.Request, path string) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	conversations, err := h.backend(rec).ListConversations(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load conversations")
		return
	}
	unread := 0
	for _, c := range conversations {
		unread += c.UnreadCount
	}
	h.render(w, rec, path, map[string]any{
		"conversations": conversations,
		"unread":        unread,
	})
}

// PatientRecords lists the patient's medical records.
// GET /patient/records
func (h *ViewHandler) PatientRecords(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	records, err := h.backend(rec).ListRecords(r.Context(), "")
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load records")
		return
	}
	h.render(w, rec, access.PatientRecordsPath, map[string]any{"records": records})
}

// DoctorPatients lists patients; ?patient= adds that patient's records.
// GET /doctor/patients
func (h *ViewHandler) DoctorPatients(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	api := h.backend(rec)
	patients, err := api.GetPatients(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load patients")
		return
	}
	data := map[string]any{"patients": patients}
	if patientID := r.URL.Query().Get("patient"); patientID != "" {
		records, err := api.ListRecords(r.Context(), patientID)
		if err != nil {
			h.backendError(w, r, rec, err, "Failed to load records")
			return
		}
		data["patient_id"] = patientID
		data["records"] = records
	}
	h.render(w, rec, access.DoctorPatientsPath, data)
}

// AdminDashboard shows platform counters and all appointments.
// GET /admin/dashboard
func (h *ViewHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	api := h.backend(rec)
	stats, err := api.AdminStats(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load statistics")
		return
	}
	list, err := api.ListAllAppointments(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load appointments")
		return
	}
	h.render(w, rec, access.AdminDashboardPath, map[string]any{
		"stats":        stats,
		"appointments": h.buildAppointmentList(rec, list, r.URL.Query().Get("status")),
	})
}

// AdminDoctorApprovals lists doctors awaiting approval; ?view=all lists every doctor.
// GET /admin/doctor-approvals
func (h *ViewHandler) AdminDoctorApprovals(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	api := h.backend(rec)
	view := "pending"
	fetch := api.PendingDoctors
	if r.URL.Query().Get("view") == "all" {
		view = "all"
		fetch = api.AllDoctors
	}
	doctors, err := fetch(r.Context())
	if err != nil {
		h.backendError(w, r, rec, err, "Failed to load doctors")
		return
	}
	h.render(w, rec, access.AdminDoctorApprovalsPath, map[string]any{
		"view":    view,
		"doctors": doctors,
	})
}
