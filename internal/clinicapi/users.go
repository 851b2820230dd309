package clinicapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// GetDoctors lists approved doctors, filtered by department when one is given.
func (c *Client) GetDoctors(ctx context.Context, department string) ([]Doctor, error) {
	var query url.Values
	if d := strings.TrimSpace(department); d != "" {
		query = url.Values{"department": {d}}
	}
	data, err := c.do(ctx, request{op: "get_doctors", method: http.MethodGet, path: "/users/doctors", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[Doctor]("get_doctors", data)
}

// GetPatients lists the patients a doctor may issue records for.
func (c *Client) GetPatients(ctx context.Context) ([]User, error) {
	data, err := c.do(ctx, request{op: "get_patients", method: http.MethodGet, path: "/users/patients"})
	if err != nil {
		return nil, err
	}
	return decodeList[User]("get_patients", data)
}

// ListRecords returns the caller's records, or one patient's when patientID is set.
func (c *Client) ListRecords(ctx context.Context, patientID string) ([]Record, error) {
	path := "/users/records"
	if strings.TrimSpace(patientID) != "" {
		path += "/" + pathEscape(patientID)
	}
	data, err := c.do(ctx, request{op: "list_records", method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return decodeList[Record]("list_records", data)
}

// CreateRecord issues a medical record for a patient.
func (c *Client) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{op: "create_record", method: http.MethodPost, path: "/users/records", body: req})
	if err != nil {
		return nil, err
	}
	rec, err := decodeEnvelope[Record]("create_record", data)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UserStats returns the per-user dashboard counters.
func (c *Client) UserStats(ctx context.Context) (*Stats, error) {
	data, err := c.do(ctx, request{op: "user_stats", method: http.MethodGet, path: "/users/stats"})
	if err != nil {
		return nil, err
	}
	stats, err := decodeEnvelope[Stats]("user_stats", data)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
