package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/observability/metrics"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

var testNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// fakeBackend is an in-memory stand-in for the clinic REST backend.
type fakeBackend struct {
	mu            sync.Mutex
	server        *httptest.Server
	appointments  []clinicapi.Appointment
	created       []clinicapi.AppointmentRequest
	statusUpdates map[string]string
	readMarks     []string
	rejections    map[string]string
	createFails   string
	unauthorized  bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		statusUpdates: map[string]string{},
		rejections:    map[string]string{},
		appointments: []clinicapi.Appointment{
			{ID: "A1", Department: "Neurology", Date: "2025-01-01", Time: "09:00 AM", Reason: "checkup", Status: "pending"},
			{ID: "A2", Department: "Cardiology", Date: "2025-01-05", Time: "10:00 AM", Reason: "follow-up", Status: "confirmed"},
			{ID: "A3", Department: "Neurology", Date: "2024-12-20", Time: "02:00 PM", Reason: "scan", Status: "completed"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", fb.login)
	mux.HandleFunc("GET /users/doctors", func(w http.ResponseWriter, r *http.Request) {
		var docs []clinicapi.Doctor
		switch r.URL.Query().Get("department") {
		case "Neurology":
			docs = []clinicapi.Doctor{{ID: "D1", Name: "Dr. Ada Brain", Specialization: "Neurologist"}}
		case "Cardiology":
			docs = []clinicapi.Doctor{{ID: "C1", Name: "Dr. Hart", Specialization: "Cardiologist"}}
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"data": docs}})
	})
	mux.HandleFunc("GET /appointments", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		respondJSON(w, http.StatusOK, map[string]any{"data": fb.appointments})
	})
	mux.HandleFunc("POST /appointments", func(w http.ResponseWriter, r *http.Request) {
		var req clinicapi.AppointmentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if fb.createFails != "" {
			respondJSON(w, http.StatusConflict, map[string]string{"message": fb.createFails})
			return
		}
		fb.created = append(fb.created, req)
		respondJSON(w, http.StatusCreated, map[string]any{"data": clinicapi.Appointment{
			ID: "NEW", Department: req.Department, Date: req.Date, Time: req.Time, Reason: req.Reason, Status: "pending",
		}})
	})
	mux.HandleFunc("PUT /appointments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := r.PathValue("id")
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.statusUpdates[id] = body.Status
		for i := range fb.appointments {
			if fb.appointments[i].ID == id {
				fb.appointments[i].Status = body.Status
				respondJSON(w, http.StatusOK, map[string]any{"data": fb.appointments[i]})
				return
			}
		}
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Appointment not found"})
	})
	mux.HandleFunc("GET /messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"data": []clinicapi.Message{
			{ID: "M1", Sender: &clinicapi.Party{ID: r.PathValue("id")}, Content: "hello"},
		}})
	})
	mux.HandleFunc("PUT /messages/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.readMarks = append(fb.readMarks, r.PathValue("id"))
		fb.mu.Unlock()
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /messages", func(w http.ResponseWriter, r *http.Request) {
		var req clinicapi.SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		respondJSON(w, http.StatusCreated, map[string]any{"data": clinicapi.Message{
			ID: "M2", Receiver: &clinicapi.Party{ID: req.ReceiverID}, Content: req.Content,
		}})
	})
	mux.HandleFunc("PUT /admin/doctors/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		fb.rejections[r.PathValue("id")] = body.Reason
		fb.mu.Unlock()
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		denied := fb.unauthorized && r.URL.Path != "/auth/login"
		fb.mu.Unlock()
		if denied {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req clinicapi.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	switch req.Email {
	case "pat@example.com":
		respondJSON(w, http.StatusOK, clinicapi.AuthResponse{
			Token: "backend-token",
			User:  clinicapi.User{ID: "P1", Name: "Pat Patient", Email: req.Email, Role: "patient"},
		})
	case "nurse@example.com":
		respondJSON(w, http.StatusOK, clinicapi.AuthResponse{
			Token: "backend-token",
			User:  clinicapi.User{ID: "N1", Name: "Nora Nurse", Email: req.Email, Role: "nurse"},
		})
	default:
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}
}

func (fb *fakeBackend) setUnauthorized(v bool) {
	fb.mu.Lock()
	fb.unauthorized = v
	fb.mu.Unlock()
}

func (fb *fakeBackend) setCreateFailure(msg string) {
	fb.mu.Lock()
	fb.createFails = msg
	fb.mu.Unlock()
}

func (fb *fakeBackend) createdRequests() []clinicapi.AppointmentRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]clinicapi.AppointmentRequest(nil), fb.created...)
}

func (fb *fakeBackend) statusUpdate(id string) (string, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	v, ok := fb.statusUpdates[id]
	return v, ok
}

func (fb *fakeBackend) marks() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.readMarks...)
}

func (fb *fakeBackend) rejection(id string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.rejections[id]
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type testEnv struct {
	backend   *fakeBackend
	manager   *sessions.Manager
	redirects *booking.Redirects
	registry  *prometheus.Registry
	cfg       Config
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	api, err := clinicapi.New(clinicapi.Config{
		BaseURL:    backend.server.URL,
		MaxRetries: 0,
		Backoff:    time.Millisecond,
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	signer, err := sessions.NewTokenSigner("test-secret")
	require.NoError(t, err)
	manager := sessions.NewManager(sessions.NewMemoryStore(), signer, time.Hour, quietLogger())
	redirects := booking.NewRedirects()
	t.Cleanup(redirects.Stop)
	registry := prometheus.NewRegistry()

	return &testEnv{
		backend:   backend,
		manager:   manager,
		redirects: redirects,
		registry:  registry,
		cfg: Config{
			API:           api,
			Sessions:      manager,
			Redirects:     redirects,
			Metrics:       metrics.NewPortalMetrics(registry),
			Logger:        quietLogger(),
			RedirectDelay: 20 * time.Millisecond,
			Now:           func() time.Time { return testNow },
		},
	}
}

func (e *testEnv) signIn(t *testing.T, id, role string) *sessions.Record {
	t.Helper()
	rec, _, err := e.manager.Create(context.Background(), clinicapi.User{
		ID: id, Name: "User " + id, Email: id + "@example.com", Role: role,
	}, "backend-token")
	require.NoError(t, err)
	return rec
}

// serve invokes handler as the owner of rec. params become chi URL params.
func serve(handler http.HandlerFunc, rec *sessions.Record, method, target string, body any, params map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if rec != nil {
		s := rec.Session
		ctx = access.WithSession(ctx, &s)
		ctx = sessions.WithRecord(ctx, rec)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	rr := httptest.NewRecorder()
	handler(rr, req.WithContext(ctx))
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
