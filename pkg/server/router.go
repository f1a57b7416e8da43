package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Default handler
	mux.HandleFunc("/", s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	// API endpoints with middleware
	mux.HandleFunc("/v1alpha1/deployables", s.withMiddleware(s.handleDeployables))
	mux.HandleFunc(deployablePathPrefix, s.withMiddleware(s.handleDeployableSubresource))
	mux.HandleFunc("/v1alpha1/tasks", s.withMiddleware(s.handleTasks))

	return mux
}
