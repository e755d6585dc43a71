package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/FACorreiaa/loci-recommend-engine/pkg/middleware"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	if deps.Config.Auth.Enabled && deps.Config.Auth.JWTSecret == "" {
		deps.Logger.Warn("JWT secret is empty; authentication middleware will reject requests")
	}

	chain := func(h http.Handler) http.Handler {
		h = middleware.BearerAuth(deps.Config.Auth.JWTSecret, deps.Config.Auth.Enabled)(h)
		h = middleware.Logging(deps.Logger)(h)
		h = middleware.Recovery(deps.Logger)(h)
		h = middleware.RateLimit(deps.Config.Server.RateLimitPerSecond, deps.Config.Server.RateLimitBurst)(h)
		return middleware.RequestID(h)
	}

	mux.Handle("POST /v1/recommendations", chain(http.HandlerFunc(deps.RecommendHandler.Recommend)))
	mux.Handle("POST /v1/markers/refresh", chain(http.HandlerFunc(deps.RecommendHandler.RefreshMarkers)))
	deps.Logger.Info("registered engine routes",
		"paths", []string{"/v1/recommendations", "/v1/markers/refresh"})

	registerUtilityRoutes(mux, deps)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	return corsHandler.Handler(mux)
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	deps.Logger.Info("registered utility routes",
		"paths", []string{"/health", "/ready", "/metrics"})
}
