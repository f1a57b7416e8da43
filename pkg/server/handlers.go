package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/host"
	"github.com/helmwire/helmwire/pkg/serializer"
)

const deployablePathPrefix = "/v1alpha1/deployables/"

// DeployableList is the response body for deployable listings.
type DeployableList struct {
	Deployables []DeployableRecord `json:"deployables" yaml:"deployables"`
	Count       int                `json:"count" yaml:"count"`
}

// TaskList is the response body for task listings.
type TaskList struct {
	Tasks []TaskRecord `json:"tasks" yaml:"tasks"`
	Count int          `json:"count" yaml:"count"`
}

// handleDeployables handles POST and GET /v1alpha1/deployables
func (s *Server) handleDeployables(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-API-Version", negotiateAPIVersion(r))

	switch r.Method {
	case http.MethodPost:
		s.registerDeployable(w, r)
	case http.MethodGet:
		s.listDeployables(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, r, http.StatusMethodNotAllowed, hwerrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
	}
}

func (s *Server) registerDeployable(w http.ResponseWriter, r *http.Request) {
	var spec host.DeployableSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		registrationsTotal.WithLabelValues("deployable", "rejected").Inc()
		WriteError(w, r, http.StatusBadRequest, hwerrors.ErrCodeInvalidRequest,
			"invalid request body: "+err.Error(), false, nil)
		return
	}

	if err := s.store.RegisterDeployable(spec); err != nil {
		registrationsTotal.WithLabelValues("deployable", "rejected").Inc()
		WriteErrorFromErr(w, r, err, "failed to register deployable", nil)
		return
	}
	registrationsTotal.WithLabelValues("deployable", "registered").Inc()

	slog.Info("registered deployable",
		"name", spec.Name,
		"imageDeps", len(spec.ImageDeps),
		"autoInit", spec.AutoInit,
	)

	rec, err := s.store.GetDeployable(spec.Name)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to read back deployable", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusCreated, rec)
}

func (s *Server) listDeployables(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	pattern := r.URL.Query().Get("name")

	records := s.store.ListDeployables(label, pattern)
	serializer.RespondJSON(w, http.StatusOK, DeployableList{
		Deployables: records,
		Count:       len(records),
	})
}

// handleDeployableSubresource handles GET /v1alpha1/deployables/{name}
// and POST /v1alpha1/deployables/{name}/{dependencies,labels}
func (s *Server) handleDeployableSubresource(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-API-Version", negotiateAPIVersion(r))

	rest := strings.TrimPrefix(r.URL.Path, deployablePathPrefix)
	name, sub, _ := strings.Cut(rest, "/")
	if name == "" {
		WriteError(w, r, http.StatusNotFound, hwerrors.ErrCodeNotFound,
			"deployable name is required", false, nil)
		return
	}

	switch sub {
	case "":
		s.getDeployable(w, r, name)
	case "dependencies":
		s.attachDependencies(w, r, name)
	case "labels":
		s.attachLabels(w, r, name)
	default:
		WriteError(w, r, http.StatusNotFound, hwerrors.ErrCodeNotFound,
			fmt.Sprintf("unknown subresource %q", sub), false, nil)
	}
}

func (s *Server) getDeployable(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r, http.StatusMethodNotAllowed, hwerrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	rec, err := s.store.GetDeployable(name)
	if err != nil {
		WriteErrorFromErr(w, r, err, "deployable not found", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, rec)
}

func (s *Server) attachDependencies(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, r, http.StatusMethodNotAllowed, hwerrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	var att host.DependencyAttachment
	if err := json.NewDecoder(r.Body).Decode(&att); err != nil {
		WriteError(w, r, http.StatusBadRequest, hwerrors.ErrCodeInvalidRequest,
			"invalid request body: "+err.Error(), false, nil)
		return
	}

	if err := s.store.AttachDependencies(name, att.Deps); err != nil {
		WriteErrorFromErr(w, r, err, "failed to attach dependencies", nil)
		return
	}
	attachmentsTotal.WithLabelValues("dependencies").Inc()

	rec, err := s.store.GetDeployable(name)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to read back deployable", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, rec)
}

func (s *Server) attachLabels(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, r, http.StatusMethodNotAllowed, hwerrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	var att host.LabelAttachment
	if err := json.NewDecoder(r.Body).Decode(&att); err != nil {
		WriteError(w, r, http.StatusBadRequest, hwerrors.ErrCodeInvalidRequest,
			"invalid request body: "+err.Error(), false, nil)
		return
	}

	if err := s.store.AttachLabels(name, att.Labels); err != nil {
		WriteErrorFromErr(w, r, err, "failed to attach labels", nil)
		return
	}
	attachmentsTotal.WithLabelValues("labels").Inc()

	rec, err := s.store.GetDeployable(name)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to read back deployable", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, rec)
}

// handleTasks handles POST and GET /v1alpha1/tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-API-Version", negotiateAPIVersion(r))

	switch r.Method {
	case http.MethodPost:
		s.registerTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, r, http.StatusMethodNotAllowed, hwerrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
	}
}

func (s *Server) registerTask(w http.ResponseWriter, r *http.Request) {
	var spec host.TaskSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		registrationsTotal.WithLabelValues("task", "rejected").Inc()
		WriteError(w, r, http.StatusBadRequest, hwerrors.ErrCodeInvalidRequest,
			"invalid request body: "+err.Error(), false, nil)
		return
	}

	if err := s.store.RegisterTask(spec); err != nil {
		registrationsTotal.WithLabelValues("task", "rejected").Inc()
		WriteErrorFromErr(w, r, err, "failed to register task", nil)
		return
	}
	registrationsTotal.WithLabelValues("task", "registered").Inc()

	slog.Info("registered task", "name", spec.Name, "argv", spec.Argv)

	serializer.RespondJSON(w, http.StatusCreated, TaskRecord{
		TaskSpec:     spec,
		RegisteredAt: time.Now(),
	})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	records := s.store.ListTasks()
	serializer.RespondJSON(w, http.StatusOK, TaskList{
		Tasks: records,
		Count: len(records),
	})
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	resp := struct {
		Name      string   `json:"name" yaml:"name"`
		Version   string   `json:"version" yaml:"version"`
		Ready     bool     `json:"ready" yaml:"ready"`
		Timestamp string   `json:"timestamp" yaml:"timestamp"`
		Routes    []string `json:"routes" yaml:"routes"`
	}{
		Name:      s.name,
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes: []string{
			"GET /v1alpha1/deployables",
			"POST /v1alpha1/deployables",
			"GET /v1alpha1/deployables/{name}",
			"POST /v1alpha1/deployables/{name}/dependencies",
			"POST /v1alpha1/deployables/{name}/labels",
			"GET /v1alpha1/tasks",
			"POST /v1alpha1/tasks",
			"GET /healthz",
			"GET /readyz",
			"GET /metrics",
		},
	}

	s.mu.RLock()
	resp.Ready = s.ready
	s.mu.RUnlock()

	serializer.RespondJSON(w, http.StatusOK, resp)
}
