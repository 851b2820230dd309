package booking

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-portal/internal/clinicapi"
)

// Step is the wizard position, 1 through 4.
type Step int

const (
	StepDepartment Step = iota + 1
	StepDoctor
	StepSchedule
	StepDetails
)

// Status tracks the final submission.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

const dateLayout = "2006-01-02"

const (
	msgDoctorsUnavailable = "Failed to load doctors. Please try again."
	msgSubmitFailed       = "Failed to book appointment"
)

// DoctorDirectory lists doctors by department.
type DoctorDirectory interface {
	GetDoctors(ctx context.Context, department string) ([]clinicapi.Doctor, error)
}

// AppointmentCreator books the finished appointment.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, req clinicapi.AppointmentRequest) (*clinicapi.Appointment, error)
}

// State is the persisted wizard data. It is carried between requests inside the
// session record.
type State struct {
	Step        Step                   `json:"step"`
	Department  string                 `json:"department"`
	DoctorID    string                 `json:"doctor_id"`
	Date        string                 `json:"date"`
	Time        string                 `json:"time"`
	Reason      string                 `json:"reason"`
	Doctors     []clinicapi.Doctor     `json:"doctors"`
	DoctorsFor  string                 `json:"doctors_for"`
	Status      Status                 `json:"status"`
	Error       string                 `json:"error,omitempty"`
	Appointment *clinicapi.Appointment `json:"appointment,omitempty"`
}

// Wizard drives the four-step booking flow over a State.
type Wizard struct {
	state        State
	directory    DoctorDirectory
	appointments AppointmentCreator
	now          func() time.Time
	tracer       trace.Tracer
}

// Option customizes a Wizard.
type Option func(*Wizard)

// WithClock overrides the clock used to reject past dates.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// New mounts a fresh wizard on the department step.
func New(directory DoctorDirectory, appointments AppointmentCreator, opts ...Option) *Wizard {
	return Resume(State{}, directory, appointments, opts...)
}

// Resume rebuilds a wizard from persisted state.
func Resume(state State, directory DoctorDirectory, appointments AppointmentCreator, opts ...Option) *Wizard {
	if state.Step < StepDepartment || state.Step > StepDetails {
		state.Step = StepDepartment
	}
	if state.Status == "" {
		state.Status = StatusIdle
	}
	w := &Wizard{
		state:        state,
		directory:    directory,
		appointments: appointments,
		now:          time.Now,
		tracer:       otel.Tracer("clinicportal.internal.booking"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns a copy of the current wizard data.
func (w *Wizard) State() State {
	s := w.state
	s.Doctors = slices.Clone(w.state.Doctors)
	return s
}

// Submitted reports whether the wizard reached its terminal success state.
func (w *Wizard) Submitted() bool { return w.state.Status == StatusSucceeded }

// Advance moves to the next step when the current step and every step before
// it are complete.
func (w *Wizard) Advance() error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	if w.state.Step >= StepDetails {
		return ErrNoNextStep
	}
	for step := StepDepartment; step <= w.state.Step; step++ {
		if err := w.validateStep(step); err != nil {
			w.state.Error = err.Message
			return err
		}
	}
	w.state.Step++
	w.state.Error = ""
	return nil
}

// Retreat moves back one step. Field values are kept.
func (w *Wizard) Retreat() error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	if w.state.Step <= StepDepartment {
		return ErrNoPreviousStep
	}
	w.state.Step--
	w.state.Error = ""
	if w.state.Status == StatusFailed {
		w.state.Status = StatusIdle
	}
	return nil
}

// SelectDepartment sets the department and reloads its doctor list. A changed
// department drops the doctor selection.
func (w *Wizard) SelectDepartment(ctx context.Context, department string) error {
	if err := w.SetDepartment(department); err != nil {
		return err
	}
	return w.LoadDoctors(ctx)
}

// SetDepartment updates the department without fetching doctors.
func (w *Wizard) SetDepartment(department string) error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	department = strings.TrimSpace(department)
	if !knownDepartment(department) {
		err := invalid("department", "unknown department", "Please select a valid department")
		w.state.Error = err.Message
		return err
	}
	if department != w.state.Department {
		w.state.DoctorID = ""
		w.state.Doctors = nil
		w.state.DoctorsFor = ""
	}
	w.state.Department = department
	w.state.Error = ""
	return nil
}

// LoadDoctors fetches the doctor list for the selected department.
func (w *Wizard) LoadDoctors(ctx context.Context) error {
	department := w.state.Department
	if department == "" {
		return invalid("department", "department required", "Please select a department")
	}
	doctors, err := w.directory.GetDoctors(ctx, department)
	if err != nil {
		if w.state.Department == department {
			w.state.Doctors = []clinicapi.Doctor{}
			w.state.DoctorsFor = ""
			w.state.Error = msgDoctorsUnavailable
		}
		return fmt.Errorf("booking: load doctors for %s: %w", department, err)
	}
	w.ApplyDoctors(department, doctors)
	return nil
}

// ApplyDoctors installs a doctor list fetched for department. Lists for a
// department that is no longer selected are dropped and false is returned.
func (w *Wizard) ApplyDoctors(department string, doctors []clinicapi.Doctor) bool {
	if department != w.state.Department {
		return false
	}
	if doctors == nil {
		doctors = []clinicapi.Doctor{}
	}
	w.state.Doctors = slices.Clone(doctors)
	w.state.DoctorsFor = department
	if w.state.DoctorID != "" && !w.hasDoctor(w.state.DoctorID) {
		w.state.DoctorID = ""
	}
	return true
}

// SelectDoctor picks a doctor from the loaded department list.
func (w *Wizard) SelectDoctor(doctorID string) error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" || w.state.DoctorsFor != w.state.Department || !w.hasDoctor(doctorID) {
		err := invalid("doctor", "doctor not available", "Please select a doctor from the list")
		w.state.Error = err.Message
		return err
	}
	w.state.DoctorID = doctorID
	w.state.Error = ""
	return nil
}

// SelectDate sets the appointment date (YYYY-MM-DD, today or later).
func (w *Wizard) SelectDate(date string) error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	date = strings.TrimSpace(date)
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		verr := invalid("date", "invalid date", "Please select a valid date")
		w.state.Error = verr.Message
		return verr
	}
	if day.Format(dateLayout) < w.now().Format(dateLayout) {
		verr := invalid("date", "date in past", "Please select a future date")
		w.state.Error = verr.Message
		return verr
	}
	w.state.Date = date
	w.state.Error = ""
	return nil
}

// SelectTime sets the appointment slot.
func (w *Wizard) SelectTime(slot string) error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	slot = strings.TrimSpace(slot)
	if !knownTimeSlot(slot) {
		err := invalid("time", "invalid time slot", "Please select an available time slot")
		w.state.Error = err.Message
		return err
	}
	w.state.Time = slot
	w.state.Error = ""
	return nil
}

// SetReason sets the consultation reason.
func (w *Wizard) SetReason(text string) error {
	if w.Submitted() {
		return ErrAlreadySubmitted
	}
	w.state.Reason = text
	w.state.Error = ""
	return nil
}

// Submit books the appointment. A failed booking keeps the wizard on the details
// step with the backend's message so the patient can retry.
func (w *Wizard) Submit(ctx context.Context) (*clinicapi.Appointment, error) {
	switch {
	case w.Submitted():
		return nil, ErrAlreadySubmitted
	case w.state.Status == StatusSubmitting:
		return nil, ErrSubmissionInFlight
	case w.state.Step != StepDetails:
		return nil, ErrNotAtDetailsStep
	}
	for step := StepDepartment; step <= StepDetails; step++ {
		if err := w.validateStep(step); err != nil {
			w.state.Error = err.Message
			return nil, err
		}
	}

	ctx, span := w.tracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicportal.department", w.state.Department),
		attribute.String("clinicportal.doctor_id", w.state.DoctorID),
	)

	w.state.Status = StatusSubmitting
	w.state.Error = ""
	appt, err := w.appointments.CreateAppointment(ctx, w.Request())
	if err != nil {
		span.RecordError(err)
		w.state.Status = StatusFailed
		w.state.Error = clinicapi.MessageOf(err, msgSubmitFailed)
		return nil, fmt.Errorf("booking: submit: %w", err)
	}
	w.state.Status = StatusSucceeded
	w.state.Appointment = appt
	return appt, nil
}

// Request is the creation payload built from the current fields.
func (w *Wizard) Request() clinicapi.AppointmentRequest {
	return clinicapi.AppointmentRequest{
		DoctorID:   w.state.DoctorID,
		Department: w.state.Department,
		Date:       w.state.Date,
		Time:       w.state.Time,
		Reason:     strings.TrimSpace(w.state.Reason),
	}
}

func (w *Wizard) validateStep(step Step) *ValidationError {
	switch step {
	case StepDepartment:
		if w.state.Department == "" {
			return invalid("department", "department required", "Please select a department")
		}
	case StepDoctor:
		if w.state.DoctorID == "" {
			return invalid("doctor", "doctor required", "Please select a doctor")
		}
	case StepSchedule:
		if w.state.Date == "" || w.state.Time == "" {
			return invalid("schedule", "date and time required", "Please select date and time")
		}
	case StepDetails:
		if strings.TrimSpace(w.state.Reason) == "" {
			return invalid("reason", "reason required", "Please describe the reason for your visit")
		}
	}
	return nil
}

func (w *Wizard) hasDoctor(id string) bool {
	return slices.ContainsFunc(w.state.Doctors, func(d clinicapi.Doctor) bool { return d.ID == id })
}
