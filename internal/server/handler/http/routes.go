package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/divya01062005/Ayurtrace/internal/middleware"
	"github.com/divya01062005/Ayurtrace/internal/models"
)

// NewRouter constructs the HTTP handler serving the AyurTrace API.
//
// Routes:
//
//	POST /api/auth/register                → authHandler.Register (rate limited)
//	POST /api/auth/login                   → authHandler.Login (rate limited)
//	GET  /api/auth/me/{walletAddress}      → authHandler.Me
//	GET  /api/batches                      → traceHandler.ListBatches (bearer)
//	POST /api/batches                      → traceHandler.CreateBatch (bearer, collector)
//	POST /api/events                       → traceHandler.LogEvent (bearer, downstream roles)
//	GET  /api/events/recent                → traceHandler.RecentEvents (bearer)
//	GET  /api/verify/{batchId}             → traceHandler.Verify (public)
//	GET  /api/stats                        → traceHandler.Stats (bearer, admin)
//	GET  /metrics                          → prometheus
func NewRouter(
	authHandler *AuthHandler,
	traceHandler *TraceHandler,
	tokens middleware.TokenParser,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(rate.Limit(5), 10))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})
		r.Get("/auth/me/{walletAddress}", authHandler.Me)
		r.Get("/verify/{batchId}", traceHandler.Verify)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens))
			r.Get("/batches", traceHandler.ListBatches)
			r.Get("/events/recent", traceHandler.RecentEvents)

			r.With(middleware.RequireRole(models.RoleCollector.String())).
				Post("/batches", traceHandler.CreateBatch)
			r.With(middleware.RequireRole(
				models.RoleAggregator.String(),
				models.RoleProcessor.String(),
				models.RoleManufacturer.String(),
			)).Post("/events", traceHandler.LogEvent)
			r.With(middleware.RequireRole(models.RoleAdmin.String())).
				Get("/stats", traceHandler.Stats)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
