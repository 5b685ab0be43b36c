package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/YogindraChaudhari/Product-Advisor/app"
	"github.com/YogindraChaudhari/Product-Advisor/handlers"
	"github.com/YogindraChaudhari/Product-Advisor/middleware"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if budget := deps.Config.Providers.RequestBudget(); budget > 0 {
		r.Use(chimw.Timeout(budget))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var db handlers.HealthChecker
	if deps.DB != nil {
		db = deps.DB
	}

	health := handlers.NewHealthHandler(db, deps.Logger)
	adviceHandler := handlers.NewAdviceHandler(deps.AdviceService, deps.Logger)
	accountHandler := handlers.NewAccountHandler(deps.AdviceService, deps.Logger)
	providersHandler := handlers.NewProvidersHandler(
		deps.ProviderRegistry,
		deps.ProviderStats,
		deps.Config.Providers.DefaultProvider,
		deps.Logger,
	)

	// Health check endpoints
	r.Get("/health", health.HandleHealth)
	r.Get("/health/ready", health.HandleReadiness)

	if deps.ProviderStats != nil {
		r.Handle("/metrics", deps.ProviderStats.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Post("/advice", adviceHandler.HandleGenerate)
		r.Get("/advice/{user_id}", adviceHandler.HandleHistory)
		r.Delete("/advice/{id}", adviceHandler.HandleDelete)
		r.Patch("/advice/{id}", adviceHandler.HandleRename)

		// Older clients read history from here
		r.Get("/history/{user_id}", adviceHandler.HandleHistory)

		r.Post("/account/delete-account", accountHandler.HandleDeleteAccount)
		r.Post("/delete-account", accountHandler.HandleDeleteAccount)

		r.Get("/providers", providersHandler.HandleList)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
