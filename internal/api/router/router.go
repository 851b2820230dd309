package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Handlers           handlers.Config
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
	HealthChecks       map[string]handlers.HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	hc := cfg.Handlers
	if hc.Logger == nil {
		hc.Logger = logger
	}
	if hc.CookieName == "" {
		hc.CookieName = "clinic_session"
	}

	auth := handlers.NewAuthHandler(hc)
	views := handlers.NewViewHandler(hc)
	actions := handlers.NewActionHandler(hc)
	wizard := handlers.NewBookingHandler(hc)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimiter != nil {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimiter, hc.Metrics))
	}
	r.Use(httpmiddleware.LoadSession(hc.Sessions, hc.CookieName, logger))

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/", func(w http.ResponseWriter, r *http.Request) {
			s, _ := access.SessionFromContext(r.Context())
			http.Redirect(w, r, access.LandingPath(s), http.StatusSeeOther)
		})
		public.Get(access.LoginPath, auth.LoginPage)
		public.With(requireJSON).Post(access.LoginPath, auth.Login)
		public.Get(access.RegisterPath, auth.RegisterPage)
		public.With(requireJSON).Post(access.RegisterPath, auth.Register)
		public.Post(access.LogoutPath, auth.Logout)
	})

	p := portal{router: r, observer: hc.Metrics, logger: logger}

	// Patient views
	p.route(access.PatientDashboardPath, func(r chi.Router) {
		r.Get("/", views.PatientDashboard)
	})
	p.route(access.PatientBookAppointmentPath, func(r chi.Router) {
		r.Get("/", wizard.Mount)
		r.Delete("/", wizard.Unmount)
		r.Group(func(r chi.Router) {
			r.Use(requireJSON)
			r.Post("/department", wizard.SelectDepartment)
			r.Post("/doctor", wizard.SelectDoctor)
			r.Post("/schedule", wizard.SelectSchedule)
			r.Post("/reason", wizard.SetReason)
			r.Post("/advance", wizard.Advance)
			r.Post("/retreat", wizard.Retreat)
			r.Post("/submit", wizard.Submit)
		})
	})
	p.route(access.PatientAppointmentsPath, func(r chi.Router) {
		r.Get("/", views.PatientAppointments)
		r.Post("/{id}/cancel", actions.CancelAppointment)
	})
	p.route(access.PatientMessagesPath, func(r chi.Router) {
		r.Get("/", views.PatientMessages)
		messageRoutes(r, actions)
	})
	p.route(access.PatientRecordsPath, func(r chi.Router) {
		r.Get("/", views.PatientRecords)
	})

	// Doctor views
	p.route(access.DoctorDashboardPath, func(r chi.Router) {
		r.Get("/", views.DoctorDashboard)
	})
	p.route(access.DoctorAppointmentsPath, func(r chi.Router) {
		r.Get("/", views.DoctorAppointments)
		r.With(requireJSON).Put("/{id}/status", actions.UpdateAppointmentStatus)
	})
	p.route(access.DoctorMessagesPath, func(r chi.Router) {
		r.Get("/", views.DoctorMessages)
		messageRoutes(r, actions)
	})
	p.route(access.DoctorPatientsPath, func(r chi.Router) {
		r.Get("/", views.DoctorPatients)
		r.With(requireJSON).Post("/records", actions.CreateRecord)
	})

	// Admin views
	p.route(access.AdminDashboardPath, func(r chi.Router) {
		r.Get("/", views.AdminDashboard)
	})
	p.route(access.AdminDoctorApprovalsPath, func(r chi.Router) {
		r.Get("/", views.AdminDoctorApprovals)
		r.Put("/{id}/approve", actions.ApproveDoctor)
		r.With(requireJSON).Put("/{id}/reject", actions.RejectDoctor)
	})

	return r
}

func messageRoutes(r chi.Router, actions *handlers.ActionHandler) {
	r.Get("/{userID}", actions.Thread)
	r.With(requireJSON).Post("/{userID}", actions.Send)
	r.Put("/{userID}/read", actions.MarkRead)
}
