// internal/server/router.go
//
// Root router.
//
// Middleware order (outermost first):
//
//   RealIP → RequestID → AccessLog → Recoverer → ForceHTTPS → Security
//   → requestinfo.Enrich → component routes
//
// Recoverer sits inside AccessLog so a panicking handler is still logged
// with its 500 status.  /metrics is registered beside the components and
// shares the same chain.  Unknown paths and wrong methods answer with the
// JSON envelope, never an HTML page.

package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/krishnacabs/internal/component"
	"github.com/yanizio/krishnacabs/internal/middleware"
	"github.com/yanizio/krishnacabs/internal/requestinfo"
)

// plainHTTPPaths stay reachable over plain HTTP when ForceHTTPS is on, so
// health checks and scrapers that dial the pod IP get a direct answer.
var plainHTTPPaths = []string{"/api/health", "/metrics"}

// Options configures NewRouter.
type Options struct {
	Log        *zap.SugaredLogger
	ForceHTTPS bool
	Deps       component.Deps
	Components []component.Component // nil means component.All()
}

// NewRouter builds the chi router, initialises every component, and lets
// each register its routes.
func NewRouter(opts Options) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID(opts.Log))
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(opts.ForceHTTPS, plainHTTPPaths...))
	r.Use(middleware.Security(opts.ForceHTTPS))
	r.Use(requestinfo.Enrich)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		component.WriteEnvelope(w, r, http.StatusNotFound, false, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		component.WriteEnvelope(w, r, http.StatusMethodNotAllowed, false, "Method not allowed.")
	})

	r.Handle("/metrics", promhttp.Handler())

	comps := opts.Components
	if comps == nil {
		comps = component.All()
	}
	for _, c := range comps {
		if in, ok := c.(component.Initializer); ok {
			if err := in.Init(opts.Deps); err != nil {
				return nil, fmt.Errorf("init component %s: %w", c.Name(), err)
			}
		}
		c.Routes(r)
		if opts.Log != nil {
			opts.Log.Infow("component online", "component", c.Name())
		}
	}
	return r, nil
}
