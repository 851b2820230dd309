package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/internal/sessions"
)

const redirectCleanupTimeout = 5 * time.Second

// BookingHandler drives the appointment wizard. Each session's wizard is
// reloaded and mutated under a per-session lock.
type BookingHandler struct {
	base
	redirects *booking.Redirects
	delay     time.Duration
	locks     *keyedMutex
}

// NewBookingHandler creates the wizard handler.
func NewBookingHandler(cfg Config) *BookingHandler {
	redirects := cfg.Redirects
	if redirects == nil {
		redirects = booking.NewRedirects()
	}
	delay := cfg.RedirectDelay
	if delay <= 0 {
		delay = booking.DefaultRedirectDelay
	}
	return &BookingHandler{
		base:      newBase(cfg),
		redirects: redirects,
		delay:     delay,
		locks:     newKeyedMutex(),
	}
}

type redirectTarget struct {
	To      string `json:"to"`
	AfterMS int64  `json:"after_ms"`
}

type wizardPage struct {
	pageView
	Redirect *redirectTarget `json:"redirect,omitempty"`
}

type departmentInput struct {
	Department string `json:"department"`
}

type doctorInput struct {
	DoctorID string `json:"doctor_id"`
}

type scheduleInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type reasonInput struct {
	Reason *string `json:"reason"`
}

// Mount opens the wizard, resuming one already in progress.
// GET /patient/book-appointment
func (h *BookingHandler) Mount(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "mount", nil)
}

// SelectDepartment sets the department and loads its doctors.
// POST /patient/book-appointment/department
func (h *BookingHandler) SelectDepartment(w http.ResponseWriter, r *http.Request) {
	var in departmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, r, "department", func(ctx context.Context, wiz *booking.Wizard) error {
		return wiz.SelectDepartment(ctx, in.Department)
	})
}

// SelectDoctor picks a doctor from the loaded list.
// POST /patient/book-appointment/doctor
func (h *BookingHandler) SelectDoctor(w http.ResponseWriter, r *http.Request) {
	var in doctorInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, r, "doctor", func(_ context.Context, wiz *booking.Wizard) error {
		return wiz.SelectDoctor(in.DoctorID)
	})
}

// SelectSchedule sets the date and/or time slot.
// POST /patient/book-appointment/schedule
func (h *BookingHandler) SelectSchedule(w http.ResponseWriter, r *http.Request) {
	var in scheduleInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, r, "schedule", func(_ context.Context, wiz *booking.Wizard) error {
		if in.Date != "" {
			if err := wiz.SelectDate(in.Date); err != nil {
				return err
			}
		}
		if in.Time != "" {
			return wiz.SelectTime(in.Time)
		}
		return nil
	})
}

// SetReason updates the consultation reason.
// POST /patient/book-appointment/reason
func (h *BookingHandler) SetReason(w http.ResponseWriter, r *http.Request) {
	var in reasonInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, r, "reason", func(_ context.Context, wiz *booking.Wizard) error {
		if in.Reason == nil {
			return nil
		}
		return wiz.SetReason(*in.Reason)
	})
}

// Advance moves to the next step.
// POST /patient/book-appointment/advance
func (h *BookingHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "advance", func(_ context.Context, wiz *booking.Wizard) error {
		return wiz.Advance()
	})
}

// Retreat moves back one step.
// POST /patient/book-appointment/retreat
func (h *BookingHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "retreat", func(_ context.Context, wiz *booking.Wizard) error {
		return wiz.Retreat()
	})
}

// Submit books the appointment. An optional reason in the body is applied first.
// POST /patient/book-appointment/submit
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in reasonInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, r, "submit", func(ctx context.Context, wiz *booking.Wizard) error {
		if in.Reason != nil {
			if err := wiz.SetReason(*in.Reason); err != nil {
				return err
			}
		}
		_, err := wiz.Submit(ctx)
		state := wiz.State()
		if err == nil || state.Status == booking.StatusFailed {
			h.metrics.ObserveBooking(state.Department, err == nil)
		}
		return err
	})
}

// Unmount discards the wizard and cancels any pending redirect.
// DELETE /patient/book-appointment
func (h *BookingHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	h.redirects.Cancel(rec.ID)

	unlock := h.locks.Lock(rec.ID)
	defer unlock()
	fresh, err := h.sessions.Get(r.Context(), rec.ID)
	if err != nil {
		h.sessionLost(w, r, err)
		return
	}
	if err := h.sessions.ClearWizard(r.Context(), fresh); err != nil {
		h.log(fresh).Error("failed to discard wizard", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// act reloads the wizard under the session lock, applies fn, persists the
// result and renders the view with a status matching the outcome.
func (h *BookingHandler) act(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, *booking.Wizard) error) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	unlock := h.locks.Lock(rec.ID)
	defer unlock()

	fresh, err := h.sessions.Get(r.Context(), rec.ID)
	if err != nil {
		h.sessionLost(w, r, err)
		return
	}
	state := booking.State{}
	if fresh.Wizard != nil {
		state = *fresh.Wizard
	}
	// A finished wizard with no pending redirect lost its timer (restart or
	// another instance); it would have been discarded already.
	if state.Status == booking.StatusSucceeded && !h.redirects.Pending(fresh.ID) {
		h.log(fresh).Info("discarding finished wizard without pending redirect")
		state = booking.State{}
	}
	api := h.backend(fresh)
	wiz := booking.Resume(state, api, api, booking.WithClock(h.now))

	var actErr error
	if fn != nil {
		actErr = fn(r.Context(), wiz)
		h.metrics.ObserveWizardAction(action, actErr)
	}
	if clinicapi.IsUnauthorized(actErr) {
		h.log(fresh).Info("backend token rejected during booking, ending session")
		h.expire(w, r, fresh)
		return
	}
	if err := h.sessions.SaveWizard(r.Context(), fresh, wiz.State()); err != nil {
		h.log(fresh).Error("failed to persist wizard", "action", action, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if action == "submit" && actErr == nil {
		h.scheduleRedirect(fresh.ID)
		h.log(fresh).Info("appointment booked", "department", wiz.State().Department)
	}

	page := wizardPage{pageView: newPage(access.PatientBookAppointmentPath, &fresh.Session, wiz.View())}
	if wiz.Submitted() && h.redirects.Pending(fresh.ID) {
		page.Redirect = &redirectTarget{To: booking.RedirectPath, AfterMS: h.delay.Milliseconds()}
	}
	writeJSON(w, wizardStatus(actErr), page)
}

// scheduleRedirect discards the finished wizard after the configured delay.
func (h *BookingHandler) scheduleRedirect(sessionID string) {
	h.redirects.Schedule(sessionID, h.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), redirectCleanupTimeout)
		defer cancel()
		unlock := h.locks.Lock(sessionID)
		defer unlock()

		rec, err := h.sessions.Get(ctx, sessionID)
		if err != nil || rec.Wizard == nil || rec.Wizard.Status != booking.StatusSucceeded {
			return
		}
		if err := h.sessions.ClearWizard(ctx, rec); err != nil {
			h.log(rec).Error("failed to discard finished wizard", "error", err)
		}
	})
}

func (h *BookingHandler) sessionLost(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, sessions.ErrNotFound) {
		h.logger.Error("failed to reload session", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	middleware.ClearSessionCookie(w, h.cookieName)
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

func wizardStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case booking.IsValidation(err),
		errors.Is(err, booking.ErrNoPreviousStep),
		errors.Is(err, booking.ErrNoNextStep),
		errors.Is(err, booking.ErrNotAtDetailsStep):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrAlreadySubmitted),
		errors.Is(err, booking.ErrSubmissionInFlight):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
