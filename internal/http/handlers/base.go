// Package handlers serves the portal views and actions. Views answer with a
// JSON page model carrying the caller's navigation links.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/internal/observability/metrics"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// Config carries the shared dependencies of every portal handler.
type Config struct {
	API           *clinicapi.Client
	Sessions      *sessions.Manager
	Redirects     *booking.Redirects
	Metrics       *metrics.PortalMetrics
	Logger        *logging.Logger
	CookieName    string
	CookieSecure  bool
	RedirectDelay time.Duration
	Now           func() time.Time
}

type base struct {
	api          *clinicapi.Client
	sessions     *sessions.Manager
	metrics      *metrics.PortalMetrics
	logger       *logging.Logger
	cookieName   string
	cookieSecure bool
	now          func() time.Time
}

func newBase(cfg Config) base {
	if cfg.API == nil {
		panic("handlers: clinic api client required")
	}
	if cfg.Sessions == nil {
		panic("handlers: session manager required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "clinic_session"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return base{
		api:          cfg.API,
		sessions:     cfg.Sessions,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		now:          cfg.Now,
	}
}

type userView struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           access.Role `json:"role"`
	Department     string      `json:"department,omitempty"`
	Specialization string      `json:"specialization,omitempty"`
}

// pageView is the render model of every guarded view.
type pageView struct {
	Path  string           `json:"path"`
	Title string           `json:"title"`
	User  userView         `json:"user"`
	Nav   []access.NavItem `json:"nav"`
	Data  any              `json:"data"`
}

func newPage(path string, s *access.Session, data any) pageView {
	title := path
	if route, err := access.Lookup(path); err == nil {
		title = route.Title
	}
	return pageView{
		Path:  path,
		Title: title,
		User:  newUserView(s),
		Nav:   access.NavItemsFor(s.Role),
		Data:  data,
	}
}

func newUserView(s *access.Session) userView {
	return userView{
		ID:             s.UserID,
		Name:           s.Name,
		Email:          s.Email,
		Role:           s.Role,
		Department:     s.Department,
		Specialization: s.Specialization,
	}
}

// record returns the caller's session record, answering with a login redirect
// when there is none.
func (b *base) record(w http.ResponseWriter, r *http.Request) (*sessions.Record, bool) {
	rec, ok := sessions.RecordFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return nil, false
	}
	return rec, true
}

func (b *base) backend(rec *sessions.Record) *clinicapi.Client {
	return b.api.WithToken(rec.BackendToken)
}

func (b *base) log(rec *sessions.Record) *logging.Logger {
	return b.logger.WithSession(rec.ID, string(rec.Session.Role))
}

// expire ends a session whose backend token was refused and sends the client
// to the login view.
func (b *base) expire(w http.ResponseWriter, r *http.Request, rec *sessions.Record) {
	if err := b.sessions.Destroy(context.WithoutCancel(r.Context()), rec.ID); err != nil {
		b.log(rec).Error("failed to destroy expired session", "error", err)
	}
	middleware.ClearSessionCookie(w, b.cookieName)
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

// backendError answers a failed collaborator call: 401 ends the session,
// anything else is a 502 carrying the server's message.
func (b *base) backendError(w http.ResponseWriter, r *http.Request, rec *sessions.Record, err error, fallback string) {
	if clinicapi.IsUnauthorized(err) {
		b.log(rec).Info("backend token rejected, ending session")
		b.expire(w, r, rec)
		return
	}
	b.log(rec).Error("clinic backend call failed", "path", r.URL.Path, "error", err)
	jsonError(w, clinicapi.MessageOf(err, fallback), http.StatusBadGateway)
}
