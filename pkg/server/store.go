package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/host"
)

// DeployableRecord is a registered deployable plus the metadata attached
// to it after registration.
type DeployableRecord struct {
	host.DeployableSpec `json:",inline" yaml:",inline"`

	Dependencies []string  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Labels       []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	RegisteredAt time.Time `json:"registeredAt" yaml:"registeredAt"`
}

// TaskRecord is a registered task.
type TaskRecord struct {
	host.TaskSpec `json:",inline" yaml:",inline"`

	RegisteredAt time.Time `json:"registeredAt" yaml:"registeredAt"`
}

// Store keeps registered deployables and tasks with thread-safe
// operations. Deployables and tasks share one resource-name namespace,
// matching how the dev loop schedules them side by side.
type Store struct {
	deployables map[string]*DeployableRecord
	tasks       map[string]*TaskRecord

	mu sync.RWMutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		deployables: make(map[string]*DeployableRecord),
		tasks:       make(map[string]*TaskRecord),
	}
}

// RegisterDeployable adds a deployable under its resource name.
func (s *Store) RegisterDeployable(spec host.DeployableSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNameFree(spec.Name); err != nil {
		return err
	}
	s.deployables[spec.Name] = &DeployableRecord{
		DeployableSpec: spec,
		RegisteredAt:   time.Now(),
	}
	return nil
}

// RegisterTask adds a task under its resource name.
func (s *Store) RegisterTask(spec host.TaskSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNameFree(spec.Name); err != nil {
		return err
	}
	s.tasks[spec.Name] = &TaskRecord{
		TaskSpec:     spec,
		RegisteredAt: time.Now(),
	}
	return nil
}

// checkNameFree must be called with the write lock held.
func (s *Store) checkNameFree(name string) error {
	if _, ok := s.deployables[name]; ok {
		return hwerrors.Newf(hwerrors.ErrCodeAlreadyExists, "resource %q is already registered", name)
	}
	if _, ok := s.tasks[name]; ok {
		return hwerrors.Newf(hwerrors.ErrCodeAlreadyExists, "resource %q is already registered as a task", name)
	}
	return nil
}

// AttachDependencies appends deps to a registered deployable.
func (s *Store) AttachDependencies(name string, deps []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.deployables[name]
	if !ok {
		return hwerrors.Newf(hwerrors.ErrCodeNotFound, "deployable %q is not registered", name)
	}
	rec.Dependencies = appendMissing(rec.Dependencies, deps)
	return nil
}

// AttachLabels appends labels to a registered deployable.
func (s *Store) AttachLabels(name string, labels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.deployables[name]
	if !ok {
		return hwerrors.Newf(hwerrors.ErrCodeNotFound, "deployable %q is not registered", name)
	}
	rec.Labels = appendMissing(rec.Labels, labels)
	return nil
}

// GetDeployable retrieves a deployable by name.
func (s *Store) GetDeployable(name string) (DeployableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.deployables[name]
	if !ok {
		return DeployableRecord{}, hwerrors.Newf(hwerrors.ErrCodeNotFound, "deployable %q is not registered", name)
	}
	return copyDeployable(rec), nil
}

// ListDeployables returns registered deployables sorted by name.
// A non-empty label keeps only deployables carrying it; a non-empty
// pattern matches names with the usual * wildcards.
func (s *Store) ListDeployables(label, pattern string) []DeployableRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DeployableRecord, 0, len(s.deployables))
	for _, rec := range s.deployables {
		if label != "" && !containsString(rec.Labels, label) {
			continue
		}
		if pattern != "" && !matchesPattern(rec.Name, pattern) {
			continue
		}
		out = append(out, copyDeployable(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListTasks returns registered tasks sorted by name.
func (s *Store) ListTasks() []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskRecord, 0, len(s.tasks))
	for _, rec := range s.tasks {
		cp := *rec
		cp.Argv = append([]string(nil), rec.Argv...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered deployables and tasks.
func (s *Store) Count() (deployables, tasks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deployables), len(s.tasks)
}

func copyDeployable(rec *DeployableRecord) DeployableRecord {
	cp := *rec
	cp.FileDeps = append([]string(nil), rec.FileDeps...)
	cp.ImageDeps = append([]string(nil), rec.ImageDeps...)
	cp.Dependencies = append([]string(nil), rec.Dependencies...)
	cp.Labels = append([]string(nil), rec.Labels...)
	return cp
}

func appendMissing(have, add []string) []string {
	for _, v := range add {
		if !containsString(have, v) {
			have = append(have, v)
		}
	}
	return have
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// matchesPattern matches a name against a pattern with leading and
// trailing * wildcards.
func matchesPattern(name, pattern string) bool {
	if pattern == "*" {
		return true
	}

	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(name, strings.Trim(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, strings.TrimPrefix(pattern, "*"))
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	default:
		return name == pattern
	}
}
