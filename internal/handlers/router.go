package handlers

import (
	"net/http"
	"time"

	"github.com/fleetops/driver-safety/internal/middleware"
	"github.com/fleetops/driver-safety/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterConfig carries the pieces the router needs wired together.
type RouterConfig struct {
	ClientURL   string
	Environment string

	Auth      *AuthHandler
	Drivers   *DriverHandler
	Vehicles  *VehicleHandler
	Incidents *IncidentHandler
	Reports   *ReportsHandler

	AuthMW *middleware.AuthMiddleware
	RateMW *middleware.RateLimitMiddleware
}

// NewRouter assembles the full API surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler(cfg.Environment))

		r.Route("/auth", func(r chi.Router) {
			limited := r.With(cfg.RateMW.RateLimit(20, time.Minute))
			limited.Post("/register", cfg.Auth.Register)
			limited.Post("/login", cfg.Auth.Login)
			r.With(cfg.AuthMW.Authenticate).Get("/me", cfg.Auth.Me)
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Use(cfg.AuthMW.Authenticate)
			r.Use(cfg.AuthMW.RequireRoles(models.RoleAdmin, models.RoleManager))
			r.Get("/", cfg.Drivers.List)
			r.Get("/{id}", cfg.Drivers.Get)
			r.Put("/{id}", cfg.Drivers.Update)
			r.With(cfg.AuthMW.RequireRoles(models.RoleAdmin)).Delete("/{id}", cfg.Drivers.Delete)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Use(cfg.AuthMW.Authenticate)
			r.Get("/", cfg.Vehicles.List)
			r.Get("/{id}", cfg.Vehicles.Get)
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthMW.RequireRoles(models.RoleAdmin, models.RoleManager))
				r.Post("/", cfg.Vehicles.Create)
				r.Put("/{id}", cfg.Vehicles.Update)
			})
			r.With(cfg.AuthMW.RequireRoles(models.RoleAdmin)).Delete("/{id}", cfg.Vehicles.Delete)
		})

		r.Route("/incidents", func(r chi.Router) {
			r.Use(cfg.AuthMW.Authenticate)
			r.Post("/", cfg.Incidents.Create)
			r.Get("/", cfg.Incidents.List)
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthMW.RequireRoles(models.RoleAdmin, models.RoleManager))
				r.Post("/admin", cfg.Incidents.CreateAsAdmin)
				r.Put("/{id}/resolve", cfg.Incidents.Resolve)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(cfg.AuthMW.Authenticate)
			r.Use(cfg.AuthMW.RequireRoles(models.RoleAdmin, models.RoleManager))
			r.Get("/incidents-by-type", cfg.Reports.IncidentsByType)
			r.Get("/incidents-by-severity", cfg.Reports.IncidentsBySeverity)
			r.Get("/monthly-incidents", cfg.Reports.MonthlyIncidents)
			r.Get("/driver-performance", cfg.Reports.DriverPerformance)
			r.Get("/dashboard", cfg.Reports.Dashboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

func healthHandler(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message":     "Driver Safety API is running!",
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment,
		})
	}
}
