// Package host defines the narrow interface helmwire uses to talk to a
// dev-loop orchestration host, plus the wire types its implementations
// exchange. Keeping the surface to four calls lets the registrar be
// tested against an in-memory recorder and lets alternative hosts be
// plugged in without touching synthesis.
package host

import (
	"context"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/resource"
)

// Registry is the registration surface of an orchestration host.
type Registry interface {
	// RegisterDeployable registers a resource deployed by running
	// spec.ApplyCmd and torn down by running spec.DeleteCmd.
	RegisterDeployable(ctx context.Context, spec DeployableSpec) error

	// AttachDependencies orders resourceName after deps.
	AttachDependencies(ctx context.Context, resourceName string, deps []string) error

	// AttachLabels attaches categorization labels to resourceName.
	AttachLabels(ctx context.Context, resourceName string, labels []string) error

	// RegisterTask registers a parallel-capable local task.
	RegisterTask(ctx context.Context, spec TaskSpec) error
}

// DeployableSpec describes a command-deployed resource. The host runs
// ApplyCmd through `sh -c` with TILT_IMAGE_<i> variables populated per
// ImageDeps order; ApplyCmd's stdout must be exactly the rendered
// manifest YAML. DeleteCmd tears the resource down and must succeed
// when nothing is deployed.
type DeployableSpec struct {
	Name              string                    `json:"name" yaml:"name"`
	ApplyCmd          string                    `json:"applyCmd" yaml:"applyCmd"`
	DeleteCmd         string                    `json:"deleteCmd" yaml:"deleteCmd"`
	FileDeps          []string                  `json:"fileDeps,omitempty" yaml:"fileDeps,omitempty"`
	ImageDeps         []string                  `json:"imageDeps,omitempty" yaml:"imageDeps,omitempty"`
	ImageSelector     string                    `json:"imageSelector,omitempty" yaml:"imageSelector,omitempty"`
	ContainerSelector string                    `json:"containerSelector,omitempty" yaml:"containerSelector,omitempty"`
	LiveUpdate        []resource.LiveUpdateStep `json:"liveUpdate,omitempty" yaml:"liveUpdate,omitempty"`
	AutoInit          bool                      `json:"autoInit" yaml:"autoInit"`
	PodReadiness      string                    `json:"podReadiness,omitempty" yaml:"podReadiness,omitempty"`
	PortForwards      []string                  `json:"portForwards,omitempty" yaml:"portForwards,omitempty"`
}

// Validate checks the fields every host needs populated.
func (s DeployableSpec) Validate() error {
	if s.Name == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidRequest, "deployable: name is required")
	}
	if s.ApplyCmd == "" {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidRequest, "deployable %q: applyCmd is required", s.Name)
	}
	if s.DeleteCmd == "" {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidRequest, "deployable %q: deleteCmd is required", s.Name)
	}
	return nil
}

// TaskSpec describes a local argv task. Argv is executed without a
// shell, so no element is quoted or expanded.
type TaskSpec struct {
	Name          string         `json:"name" yaml:"name"`
	Argv          []string       `json:"argv" yaml:"argv"`
	AllowParallel bool           `json:"allowParallel" yaml:"allowParallel"`
	Options       map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Validate checks the fields every host needs populated.
func (s TaskSpec) Validate() error {
	if s.Name == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidRequest, "task: name is required")
	}
	if len(s.Argv) == 0 {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidRequest, "task %q: argv is required", s.Name)
	}
	return nil
}

// DependencyAttachment is the wire payload for AttachDependencies.
type DependencyAttachment struct {
	Deps []string `json:"deps" yaml:"deps"`
}

// LabelAttachment is the wire payload for AttachLabels.
type LabelAttachment struct {
	Labels []string `json:"labels" yaml:"labels"`
}
