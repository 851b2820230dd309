package middleware

import (
	"net/http"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// AccessObserver is told about every guard decision.
type AccessObserver interface {
	ObserveAccess(route, outcome string)
}

// RequireRoute guards every handler behind it with the route's role set. A
// redirect decision answers 303 See Other with the target in Location.
func RequireRoute(route access.Route, observer AccessObserver, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := access.SessionFromContext(r.Context())
			decision := access.Authorize(route, s)
			if observer != nil {
				observer.ObserveAccess(route.Path, string(decision.Outcome))
			}
			if !decision.Allowed() {
				if s != nil {
					logger.WithSession(s.ID, string(s.Role)).Info("navigation redirected",
						"route", route.Path,
						"location", decision.Location,
					)
				}
				http.Redirect(w, r, decision.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
