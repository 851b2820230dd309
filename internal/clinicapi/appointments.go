package clinicapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// CreateAppointment books a consultation for the token's patient.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	data, err := c.do(ctx, request{op: "create_appointment", method: http.MethodPost, path: "/appointments", body: req})
	if err != nil {
		return nil, err
	}
	appt, err := decodeEnvelope[Appointment]("create_appointment", data)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListAppointments returns the caller's own appointments (patient or doctor view).
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	data, err := c.do(ctx, request{op: "list_appointments", method: http.MethodGet, path: "/appointments"})
	if err != nil {
		return nil, err
	}
	return decodeList[Appointment]("list_appointments", data)
}

// ListAllAppointments is the admin-wide listing.
func (c *Client) ListAllAppointments(ctx context.Context) ([]Appointment, error) {
	data, err := c.do(ctx, request{op: "list_all_appointments", method: http.MethodGet, path: "/appointments/all"})
	if err != nil {
		return nil, err
	}
	return decodeList[Appointment]("list_all_appointments", data)
}

// UpdateAppointmentStatus moves an appointment to status.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id, status string) (*Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("clinicapi: appointment id is required")
	}
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	data, err := c.do(ctx, request{
		op:     "update_appointment_status",
		method: http.MethodPut,
		path:   "/appointments/" + pathEscape(id) + "/status",
		body:   body,
	})
	if err != nil {
		return nil, err
	}
	appt, err := decodeEnvelope[Appointment]("update_appointment_status", data)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
