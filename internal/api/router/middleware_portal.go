package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-portal/internal/access"
	httpmiddleware "github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// portal mounts guarded views. Every sub-route of a view inherits the view's
// role requirement.
type portal struct {
	router   chi.Router
	observer httpmiddleware.AccessObserver
	logger   *logging.Logger
}

func (p portal) route(path string, fn func(chi.Router)) {
	guard := httpmiddleware.RequireRoute(access.MustLookup(path), p.observer, p.logger)
	p.router.Route(path, func(r chi.Router) {
		r.Use(guard)
		r.Use(noStore)
		fn(r)
	})
}
