package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/http/handlers"
	"github.com/wolfman30/clinic-portal/internal/observability/metrics"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

func newFakeClinic(t *testing.T) *httptest.Server {
	t.Helper()
	users := map[string]clinicapi.User{
		"pat@example.com":   {ID: "P1", Name: "Pat Patient", Email: "pat@example.com", Role: "patient"},
		"admin@example.com": {ID: "AD1", Name: "Ada Admin", Email: "admin@example.com", Role: "admin"},
	}
	write := func(w http.ResponseWriter, status int, payload any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req clinicapi.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user, ok := users[req.Email]
		if !ok {
			write(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		write(w, http.StatusOK, clinicapi.AuthResponse{Token: "tok-" + user.ID, User: user})
	})
	mux.HandleFunc("GET /users/doctors", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"data": []clinicapi.Doctor{{ID: "D1", Name: "Dr. Ada Brain"}}})
	})
	mux.HandleFunc("POST /appointments", func(w http.ResponseWriter, r *http.Request) {
		var req clinicapi.AppointmentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		write(w, http.StatusCreated, map[string]any{"data": clinicapi.Appointment{
			ID: "A1", Department: req.Department, Date: req.Date, Time: req.Time, Reason: req.Reason, Status: "pending",
		}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", io.Discard)
	clinic := newFakeClinic(t)
	api, err := clinicapi.New(clinicapi.Config{BaseURL: clinic.URL, Logger: logger})
	if err != nil {
		t.Fatalf("failed to build clinic client: %v", err)
	}
	signer, err := sessions.NewTokenSigner("router-test-secret")
	if err != nil {
		t.Fatalf("failed to build signer: %v", err)
	}
	redirects := booking.NewRedirects()
	t.Cleanup(redirects.Stop)
	registry := prometheus.NewRegistry()

	cfg := &Config{
		Logger: logger,
		Handlers: handlers.Config{
			API:           api,
			Sessions:      sessions.NewManager(sessions.NewMemoryStore(), signer, time.Hour, logger),
			Redirects:     redirects,
			Metrics:       metrics.NewPortalMetrics(registry),
			RedirectDelay: time.Hour,
			Now:           func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) },
		},
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return New(cfg)
}

func login(t *testing.T, router http.Handler, email string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, access.LoginPath,
		strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "clinic_session" {
			return c
		}
	}
	t.Fatalf("login did not set a session cookie")
	return nil
}

func do(router http.Handler, method, path string, cookie *http.Cookie, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodGet, "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAnonymousRedirectsToLogin(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", access.PatientDashboardPath, access.AdminDoctorApprovalsPath, "/doctor/appointments/A1/status"} {
		rr := do(router, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != access.LoginPath {
			t.Fatalf("%s: expected redirect to login, got %q", path, loc)
		}
	}
}

func TestRouterWrongRoleRedirectsToOwnDashboard(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "pat@example.com")

	rr := do(router, http.MethodGet, access.AdminDashboardPath, cookie, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != access.PatientDashboardPath {
		t.Fatalf("expected redirect to patient dashboard, got %q", loc)
	}

	rr = do(router, http.MethodPut, "/admin/doctor-approvals/D1/approve", cookie, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected guarded action to redirect, got %d", rr.Code)
	}

	rr = do(router, http.MethodGet, "/", cookie, nil)
	if loc := rr.Header().Get("Location"); loc != access.PatientDashboardPath {
		t.Fatalf("expected root to land on patient dashboard, got %q", loc)
	}
}

func TestRouterLoginPageRedirectsSignedInAdmin(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "admin@example.com")

	rr := do(router, http.MethodGet, access.LoginPath, cookie, nil)
	if loc := rr.Header().Get("Location"); rr.Code != http.StatusSeeOther || loc != access.AdminDashboardPath {
		t.Fatalf("expected 303 to admin dashboard, got %d %q", rr.Code, loc)
	}
}

func TestRouterLoginRejectsFormBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, access.LoginPath, strings.NewReader("email=pat@example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
}

func TestRouterBookingWizardOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "pat@example.com")
	base := access.PatientBookAppointmentPath

	steps := []struct {
		path string
		body any
	}{
		{base + "/department", map[string]string{"department": "Neurology"}},
		{base + "/advance", nil},
		{base + "/doctor", map[string]string{"doctor_id": "D1"}},
		{base + "/advance", nil},
		{base + "/schedule", map[string]string{"date": "2025-01-10", "time": "10:00 AM"}},
		{base + "/advance", nil},
		{base + "/submit", map[string]string{"reason": "headache"}},
	}
	var last *httptest.ResponseRecorder
	for _, s := range steps {
		last = do(router, http.MethodPost, s.path, cookie, s.body)
		if last.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", s.path, last.Code, last.Body.String())
		}
		if cc := last.Header().Get("Cache-Control"); cc != "no-store" {
			t.Fatalf("%s: expected no-store, got %q", s.path, cc)
		}
	}

	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
		Redirect struct {
			To string `json:"to"`
		} `json:"redirect"`
	}
	if err := json.NewDecoder(last.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode wizard response: %v", err)
	}
	if resp.Data.Status != "succeeded" {
		t.Fatalf("expected succeeded, got %q", resp.Data.Status)
	}
	if resp.Redirect.To != access.PatientDashboardPath {
		t.Fatalf("expected redirect to dashboard, got %q", resp.Redirect.To)
	}

	rr := do(router, http.MethodDelete, base, cookie, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on unmount, got %d", rr.Code)
	}
}

func TestRouterLogoutInvalidatesCookie(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "pat@example.com")

	rr := do(router, http.MethodPost, access.LogoutPath, cookie, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", rr.Code)
	}

	rr = do(router, http.MethodGet, access.PatientBookAppointmentPath, cookie, nil)
	if loc := rr.Header().Get("Location"); rr.Code != http.StatusSeeOther || loc != access.LoginPath {
		t.Fatalf("expected stale cookie to be treated as anonymous, got %d %q", rr.Code, loc)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	do(router, http.MethodGet, access.PatientDashboardPath, nil, nil)

	rr := do(router, http.MethodGet, "/metrics", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "clinic_portal_access_decisions_total") {
		t.Fatalf("expected access decision counter in metrics output")
	}
}
