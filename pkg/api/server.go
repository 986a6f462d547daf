// Package api is the hexforge REST service: firmware image upload,
// inspection, conversion, relocation, merging and pattern search over
// HTTP. Authentication is a shared API key in the X-API-Key header.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router with all routes configured
func NewRouter(server *Server, metrics *Metrics, config ServerConfig) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Image registry
		r.Post("/images", metrics.InstrumentHandler("POST", "/api/v1/images", server.handleUpload))
		r.Get("/images", metrics.InstrumentHandler("GET", "/api/v1/images", server.handleList))
		r.Post("/images/merge", metrics.InstrumentHandler("POST", "/api/v1/images/merge", server.handleMerge))
		r.Get("/images/{id}", metrics.InstrumentHandler("GET", "/api/v1/images/{id}", server.handleGetImage))
		r.Delete("/images/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/images/{id}", server.handleDeleteImage))

		// Conversions
		r.Get("/images/{id}/hex", metrics.InstrumentHandler("GET", "/api/v1/images/{id}/hex", server.handleHex))
		r.Get("/images/{id}/bin", metrics.InstrumentHandler("GET", "/api/v1/images/{id}/bin", server.handleBin))

		// Transformations
		r.Post("/images/{id}/relocate", metrics.InstrumentHandler("POST", "/api/v1/images/{id}/relocate", server.handleRelocate))
		r.Post("/images/{id}/search", metrics.InstrumentHandler("POST", "/api/v1/images/{id}/search", server.handleSearch))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(registry *Registry, config ServerConfig) error {
	// Initialize metrics
	metrics := NewMetrics()

	server := NewServer(registry, config, metrics)
	r := NewRouter(server, metrics, config)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting hexforge REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, r)
}
