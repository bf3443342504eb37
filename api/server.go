/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging via logrus
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*   Employee directory + per-employee balances/bookings
  /api/periods/*     Acquisition-period generation
  /api/balances/*    Ledger operations (sell, adjust, quote)
  /api/bookings/*    Individual booking lookup and cancellation
  /api/collective/*  Collective vacation actions
  /api/reports/*     HR dashboards
  /health            Liveness probe
  /metrics           Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/vacationd/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/balances", h.ListEmployeeBalances)
			r.Get("/{id}/bookings", h.ListEmployeeBookings)
			r.Post("/{id}/bookings", h.BookVacation)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Get("/eligible", h.ListEligible)
			r.Post("/materialize", h.MaterializePeriods)
		})

		r.Route("/balances", func(r chi.Router) {
			r.Get("/{id}", h.GetBalance)
			r.Post("/{id}/sell", h.SellDays)
			r.Post("/{id}/entitlement", h.AdjustEntitlement)
			r.Get("/{id}/cashout-quote", h.CashOutQuote)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
		})

		r.Route("/collective", func(r chi.Router) {
			r.Get("/", h.ListCollectives)
			r.Post("/", h.BookCollective)
			r.Delete("/{id}", h.CancelCollective)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/balances", h.BalanceReport)
			r.Get("/expiring", h.ExpiringBalances)
			r.Get("/totals", h.OrgTotals)
		})
	})

	// Operational endpoints
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
