package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/internal/sessions"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	base
	redirects *booking.Redirects
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(cfg Config) *AuthHandler {
	return &AuthHandler{base: newBase(cfg), redirects: cfg.Redirects}
}

type authResult struct {
	Redirect string   `json:"redirect"`
	User     userView `json:"user"`
}

type pendingResult struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// LoginPage describes the login view. Logged-in callers go to their dashboard.
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if s, ok := access.SessionFromContext(r.Context()); ok && s.Role.Valid() {
		http.Redirect(w, r, access.LandingPath(s), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":     access.LoginPath,
		"title":    "Login",
		"register": access.RegisterPath,
	})
}

// RegisterPage describes the registration view.
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if s, ok := access.SessionFromContext(r.Context()); ok && s.Role.Valid() {
		http.Redirect(w, r, access.LandingPath(s), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":        access.RegisterPath,
		"title":       "Register",
		"roles":       []access.Role{access.RolePatient, access.RoleDoctor},
		"departments": booking.Departments(),
	})
}

// Login exchanges credentials for a session cookie.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req clinicapi.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		jsonError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	resp, err := h.api.Login(r.Context(), req)
	if err != nil {
		var remote *clinicapi.RemoteError
		if errors.As(err, &remote) && remote.StatusCode < http.StatusInternalServerError {
			jsonError(w, remote.Message, remote.StatusCode)
			return
		}
		h.logger.Error("login failed", "error", err)
		jsonError(w, clinicapi.MessageOf(err, "Login failed"), http.StatusBadGateway)
		return
	}
	h.startSession(w, r, resp, http.StatusOK)
}

// Register creates an account. Patients are logged in straight away; doctors
// wait for admin approval.
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req clinicapi.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil || role == access.RoleAdmin {
		jsonError(w, "Role must be patient or doctor", http.StatusBadRequest)
		return
	}
	req.Role = string(role)
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		jsonError(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}

	resp, err := h.api.Register(r.Context(), req)
	if err != nil {
		var remote *clinicapi.RemoteError
		if errors.As(err, &remote) && remote.StatusCode < http.StatusInternalServerError {
			jsonError(w, remote.Message, remote.StatusCode)
			return
		}
		h.logger.Error("registration failed", "error", err)
		jsonError(w, clinicapi.MessageOf(err, "Registration failed"), http.StatusBadGateway)
		return
	}
	if resp.Token == "" {
		writeJSON(w, http.StatusAccepted, pendingResult{
			Message:  "Registration submitted. You can log in once an admin approves your account.",
			Redirect: access.LoginPath,
		})
		return
	}
	h.startSession(w, r, resp, http.StatusCreated)
}

// Logout destroys the session and cancels any pending booking redirect.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if rec, ok := sessions.RecordFromContext(r.Context()); ok {
		if h.redirects != nil {
			h.redirects.Cancel(rec.ID)
		}
		if err := h.sessions.Destroy(r.Context(), rec.ID); err != nil {
			h.log(rec).Error("failed to destroy session", "error", err)
			jsonError(w, "logout failed", http.StatusInternalServerError)
			return
		}
	}
	middleware.ClearSessionCookie(w, h.cookieName)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": access.LoginPath})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, resp *clinicapi.AuthResponse, status int) {
	rec, token, err := h.sessions.Create(r.Context(), resp.User, resp.Token)
	if err != nil {
		if errors.Is(err, access.ErrUnknownRole) {
			h.logger.Warn("login refused for unknown role", "user_id", resp.User.ID, "role", resp.User.Role)
			jsonError(w, "Unsupported account role", http.StatusForbidden)
			return
		}
		h.logger.Error("failed to create session", "error", err)
		jsonError(w, "could not start session", http.StatusInternalServerError)
		return
	}
	middleware.SetSessionCookie(w, h.cookieName, token, int(h.sessions.TTL().Seconds()), h.cookieSecure)
	s := rec.Session
	writeJSON(w, status, authResult{
		Redirect: access.LandingPath(&s),
		User:     newUserView(&s),
	})
}
