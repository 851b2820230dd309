package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/clinic-portal/internal/config"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

func TestSetupPortalMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupPortalMetrics()
	if handler == nil || metrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	metrics.ObserveAccess("/patient/dashboard", "allow")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "clinic_portal_access_decisions_total") {
		t.Fatalf("expected access counter to be exported")
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected runtime collectors to be registered")
	}
}

func TestSessionSecretFallsBackToRandom(t *testing.T) {
	logger := logging.New("error")
	a, err := sessionSecret(&appconfig.Config{}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := sessionSecret(&appconfig.Config{}, logger)
	if a == "" || a == b {
		t.Fatalf("expected distinct random secrets, got %q and %q", a, b)
	}

	configured, _ := sessionSecret(&appconfig.Config{SessionSecret: "fixed"}, logger)
	if configured != "fixed" {
		t.Fatalf("expected configured secret, got %q", configured)
	}
}

func TestBuildServerWithMemoryStore(t *testing.T) {
	cfg := &appconfig.Config{
		Port:                 "0",
		ClinicAPIURL:         "http://127.0.0.1:1/api",
		ClinicAPITimeout:     time.Second,
		SessionStore:         appconfig.SessionStoreMemory,
		SessionTTL:           time.Hour,
		CookieName:           "clinic_session",
		BookingRedirectDelay: time.Second,
		RateLimitRPS:         100,
		RateLimitBurst:       100,
	}
	app, err := buildServer(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer app.close()

	rr := httptest.NewRecorder()
	app.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected healthy server, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/doctor/dashboard", nil))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected anonymous redirect, got %d", rr.Code)
	}
	if app.sweeper == nil {
		t.Fatalf("expected memory store sweeper")
	}
}
