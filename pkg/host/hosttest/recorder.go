// Package hosttest provides an in-memory host.Registry for tests.
package hosttest

import (
	"context"
	"sync"

	"github.com/helmwire/helmwire/pkg/host"
)

// Recorder implements host.Registry, recording every call in order.
// Error fields, when set, are returned by the corresponding method so
// tests can exercise failure paths.
type Recorder struct {
	mu sync.Mutex

	Deployables  []host.DeployableSpec
	Tasks        []host.TaskSpec
	Dependencies map[string][]string
	Labels       map[string][]string

	// calls holds method names in invocation order.
	calls []string

	RegisterDeployableErr error
	AttachDependenciesErr error
	AttachLabelsErr       error
	RegisterTaskErr       error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Dependencies: make(map[string][]string),
		Labels:       make(map[string][]string),
	}
}

var _ host.Registry = (*Recorder)(nil)

// RegisterDeployable implements host.Registry.
func (r *Recorder) RegisterDeployable(_ context.Context, spec host.DeployableSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "RegisterDeployable")
	if r.RegisterDeployableErr != nil {
		return r.RegisterDeployableErr
	}
	r.Deployables = append(r.Deployables, spec)
	return nil
}

// AttachDependencies implements host.Registry.
func (r *Recorder) AttachDependencies(_ context.Context, resourceName string, deps []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "AttachDependencies")
	if r.AttachDependenciesErr != nil {
		return r.AttachDependenciesErr
	}
	r.Dependencies[resourceName] = append(r.Dependencies[resourceName], deps...)
	return nil
}

// AttachLabels implements host.Registry.
func (r *Recorder) AttachLabels(_ context.Context, resourceName string, labels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "AttachLabels")
	if r.AttachLabelsErr != nil {
		return r.AttachLabelsErr
	}
	r.Labels[resourceName] = append(r.Labels[resourceName], labels...)
	return nil
}

// RegisterTask implements host.Registry.
func (r *Recorder) RegisterTask(_ context.Context, spec host.TaskSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "RegisterTask")
	if r.RegisterTaskErr != nil {
		return r.RegisterTaskErr
	}
	r.Tasks = append(r.Tasks, spec)
	return nil
}

// Calls returns the method names invoked so far, in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Deployable returns the recorded deployable with the given name, or
// nil when none was registered.
func (r *Recorder) Deployable(name string) *host.DeployableSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Deployables {
		if r.Deployables[i].Name == name {
			return &r.Deployables[i]
		}
	}
	return nil
}

// Task returns the recorded task with the given name, or nil.
func (r *Recorder) Task(name string) *host.TaskSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Tasks {
		if r.Tasks[i].Name == name {
			return &r.Tasks[i]
		}
	}
	return nil
}
