package middleware

import (
	"context"
	"net/http"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// SessionRestorer resolves the session cookie to a stored record.
type SessionRestorer interface {
	Restore(ctx context.Context, token string) (*sessions.Record, error)
}

// LoadSession attaches the caller's session to the request context. Missing,
// expired and tampered cookies leave the request anonymous; the stale cookie
// is cleared.
func LoadSession(restorer SessionRestorer, cookieName string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			rec, err := restorer.Restore(r.Context(), cookie.Value)
			if err != nil {
				logger.Debug("session cookie rejected", "error", err, "path", r.URL.Path)
				ClearSessionCookie(w, cookieName)
				next.ServeHTTP(w, r)
				return
			}
			ctx := access.WithSession(r.Context(), &rec.Session)
			ctx = sessions.WithRecord(ctx, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSessionCookie writes the signed session cookie.
func SetSessionCookie(w http.ResponseWriter, name, token string, maxAgeSeconds int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
