package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Holography7/listkeeper/internal/api"
	apimiddleware "github.com/Holography7/listkeeper/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(apimiddleware.MetricsMiddleware(app.metrics))

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(
		app.identityStore,
		app.tokenService,
		app.passwordVerifier,
		app.resolver,
		app.expiryScheduler,
	)
	listHandler := api.NewListHandler(app.listStore, app.resolver, app.notifier)
	healthHandler := api.NewHealthHandler(app.db)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.resolver)

	// Public endpoints
	r.Post("/registration", authHandler.Register)
	r.Post("/tokens", authHandler.CreateTokens)
	r.Post("/tokens/refresh", authHandler.RefreshTokens)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/profile", authHandler.Profile)

		r.Route("/todo_list", func(r chi.Router) {
			r.Post("/", listHandler.Create)
			r.Get("/", listHandler.Index)
			r.Get("/{id}", listHandler.Get)
			r.Put("/{id}", listHandler.Update)
			r.Delete("/{id}", listHandler.Delete)
		})
	})

	// Operational endpoints
	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
