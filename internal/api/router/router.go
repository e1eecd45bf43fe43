// Package router assembles the HTTP surface: public booking and
// availability endpoints, admin scheduling endpoints behind JWT, and the
// operational health and metrics routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xidik12/MiyZapis-sub005/internal/http/handlers"
	httpmiddleware "github.com/xidik12/MiyZapis-sub005/internal/http/middleware"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Availability       *handlers.AvailabilityHandler
	Bookings           *handlers.BookingHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// BookingRateLimit caps booking admissions per second per IP; zero
	// disables the limiter.
	BookingRateLimit float64
	BookingRateBurst int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Availability != nil {
		r.Get("/specialists/{specialistID}/availability", cfg.Availability.List)
	}

	if cfg.Bookings != nil {
		r.Group(func(public chi.Router) {
			if cfg.BookingRateLimit > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.BookingRateLimit, cfg.BookingRateBurst))
			}
			public.Post("/bookings", cfg.Bookings.Create)
			public.Get("/bookings/{bookingID}", cfg.Bookings.Get)
			public.Post("/bookings/{bookingID}/transition", cfg.Bookings.Transition)
		})
	}

	if cfg.Availability != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Post("/specialists/{specialistID}/availability/generate", cfg.Availability.Generate)
			admin.Put("/specialists/{specialistID}/schedule", cfg.Availability.UpsertSchedule)
		})
	}

	return r
}
