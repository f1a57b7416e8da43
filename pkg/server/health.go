package server

import (
	"net/http"
	"time"

	"github.com/helmwire/helmwire/pkg/serializer"
)

// HealthResponse is the body of the health and readiness probes. The
// registry counts are reported so a dev loop polling readiness can also
// see whether its registrations landed.
type HealthResponse struct {
	Status      string    `json:"status" yaml:"status"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Deployables int       `json:"deployables" yaml:"deployables"`
	Tasks       int       `json:"tasks" yaml:"tasks"`
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, s.healthResponse("healthy", ""))
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		resp := s.healthResponse("not_ready", "service is shutting down or initializing")
		serializer.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, s.healthResponse("ready", ""))
}

func (s *Server) healthResponse(status, reason string) HealthResponse {
	deployables, tasks := s.store.Count()
	return HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Reason:      reason,
		Deployables: deployables,
		Tasks:       tasks,
	}
}
