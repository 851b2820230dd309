package clinicapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrRejectionReason is returned when a doctor is rejected without a reason.
var ErrRejectionReason = errors.New("clinicapi: rejection reason is required")

// PendingDoctors lists doctor accounts awaiting approval.
func (c *Client) PendingDoctors(ctx context.Context) ([]User, error) {
	data, err := c.do(ctx, request{op: "pending_doctors", method: http.MethodGet, path: "/admin/doctors/pending"})
	if err != nil {
		return nil, err
	}
	return decodeList[User]("pending_doctors", data)
}

// AllDoctors lists every doctor account regardless of approval state.
func (c *Client) AllDoctors(ctx context.Context) ([]User, error) {
	data, err := c.do(ctx, request{op: "all_doctors", method: http.MethodGet, path: "/admin/doctors"})
	if err != nil {
		return nil, err
	}
	return decodeList[User]("all_doctors", data)
}

// ApproveDoctor activates a pending doctor account.
func (c *Client) ApproveDoctor(ctx context.Context, doctorID string) error {
	if strings.TrimSpace(doctorID) == "" {
		return errors.New("clinicapi: doctor id is required")
	}
	_, err := c.do(ctx, request{
		op:     "approve_doctor",
		method: http.MethodPut,
		path:   "/admin/doctors/" + pathEscape(doctorID) + "/approve",
	})
	return err
}

// RejectDoctor declines a pending doctor account with a reason.
func (c *Client) RejectDoctor(ctx context.Context, doctorID, reason string) error {
	if strings.TrimSpace(doctorID) == "" {
		return errors.New("clinicapi: doctor id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return ErrRejectionReason
	}
	body := struct {
		Reason string `json:"reason"`
	}{Reason: strings.TrimSpace(reason)}
	_, err := c.do(ctx, request{
		op:     "reject_doctor",
		method: http.MethodPut,
		path:   "/admin/doctors/" + pathEscape(doctorID) + "/reject",
		body:   body,
	})
	return err
}

// AdminStats returns clinic-wide counters.
func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	data, err := c.do(ctx, request{op: "admin_stats", method: http.MethodGet, path: "/admin/stats"})
	if err != nil {
		return nil, err
	}
	stats, err := decodeEnvelope[Stats]("admin_stats", data)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
