// Package router sets up all HTTP routes and middleware chains for the
// inkwell server. It organizes routes into the JSON API used by the editor
// and the public site.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/web"
)

// Routes collects the handler groups served by the router.
type Routes struct {
	Preview *handlers.Preview
	Content *handlers.Content
	Public  *handlers.Public
	Cache   *handlers.Cache

	// PreviewLimiter rate-limits POST /api/preview. Nil disables limiting.
	PreviewLimiter *middleware.RateLimiter

	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(rt Routes) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and metrics.
	r.Get("/health", healthHandler)
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}

	// Embedded stylesheet for the site layout.
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: static assets missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if rt.PreviewLimiter != nil {
				r.Use(rt.PreviewLimiter.Middleware)
			}
			r.Post("/preview", rt.Preview.Render)
		})

		r.Post("/cache/flush", rt.Cache.Flush)

		r.Route("/content", func(r chi.Router) {
			r.Get("/", rt.Content.List)
			r.Post("/", rt.Content.Create)
			r.Get("/{id}", rt.Content.Get)
			r.Put("/{id}", rt.Content.Update)
			r.Delete("/{id}", rt.Content.Delete)
			r.Post("/{id}/publish", rt.Content.Publish)
		})
	})

	// Public routes, rendered by the engine.
	r.Get("/", rt.Public.Index)
	r.Get("/{slug}", rt.Public.Page)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
