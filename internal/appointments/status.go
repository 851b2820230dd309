// Package appointments holds the rules for acting on booked appointments:
// which role may move an appointment between statuses, and the counters the
// dashboards show.
package appointments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// FilterAll matches every status in Filter.
const FilterAll = "all"

var (
	// ErrUnknownStatus is returned for a status outside the lifecycle.
	ErrUnknownStatus = errors.New("appointments: unknown status")
	// ErrTransitionDenied is returned when the role may not make the change.
	ErrTransitionDenied = errors.New("appointments: transition not permitted")
)

var transitions = map[access.Role]map[Status][]Status{
	access.RoleDoctor: {
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted},
	},
	access.RolePatient: {
		StatusPending: {StatusCancelled},
	},
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// CanTransition reports whether role may move an appointment from one status to
// another. Admins only observe.
func CanTransition(role access.Role, from, to Status) error {
	for _, next := range transitions[role][from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot move %s to %s", ErrTransitionDenied, role, from, to)
}

// Actions lists the statuses role may move an appointment in status to.
func Actions(role access.Role, from Status) []Status {
	next := transitions[role][from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Summary is the set of dashboard counters.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
}

// Summarize counts appointments by status. Today counts appointments dated on
// the calendar day of now.
func Summarize(list []clinicapi.Appointment, now time.Time) Summary {
	today := now.Format("2006-01-02")
	var s Summary
	for _, a := range list {
		s.Total++
		switch Status(a.Status) {
		case StatusPending:
			s.Pending++
		case StatusConfirmed:
			s.Confirmed++
		case StatusCompleted:
			s.Completed++
		case StatusCancelled:
			s.Cancelled++
		}
		if strings.HasPrefix(a.Date, today) {
			s.Today++
		}
	}
	return s
}

// Filter keeps the appointments in status. An empty filter or "all" keeps
// everything. The result is never nil.
func Filter(list []clinicapi.Appointment, status string) []clinicapi.Appointment {
	status = strings.ToLower(strings.TrimSpace(status))
	out := make([]clinicapi.Appointment, 0, len(list))
	for _, a := range list {
		if status == "" || status == FilterAll || a.Status == status {
			out = append(out, a)
		}
	}
	return out
}
