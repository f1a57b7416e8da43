package resource

import (
	"k8s.io/utils/ptr"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
)

// ChartResource declares one Helm chart to run under a dev-loop host.
// The chart field takes any form the helm CLI accepts: a local path,
// packaged .tgz, repo/name reference or oci:// URL.
type ChartResource struct {
	// Name is the host resource name.
	Name string `json:"name" yaml:"name"`

	// Chart is the chart reference handed to helm unmodified.
	Chart string `json:"chart" yaml:"chart"`

	// ReleaseName overrides the Helm release name; defaults to Name.
	ReleaseName string `json:"releaseName,omitempty" yaml:"releaseName,omitempty"`

	// Namespace scopes helm and kubectl invocations when set.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// FileDeps are local paths whose changes re-trigger the deploy.
	FileDeps []string `json:"fileDeps,omitempty" yaml:"fileDeps,omitempty"`

	// ImageDeps are image references built by the host and injected
	// into chart values. Position i pairs with ImageKeys[i].
	ImageDeps []string `json:"imageDeps,omitempty" yaml:"imageDeps,omitempty"`

	// ImageKeys are the values paths receiving injected references.
	ImageKeys KeyList `json:"imageKeys,omitempty" yaml:"imageKeys,omitempty"`

	// Flags are extra helm upgrade tokens, shell-escaped verbatim.
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`

	// ImageSelector matches images inside the rendered manifest for
	// live-update when no ImageDeps are declared.
	ImageSelector string `json:"imageSelector,omitempty" yaml:"imageSelector,omitempty"`

	// ContainerSelector matches containers for live-update when no
	// ImageDeps are declared.
	ContainerSelector string `json:"containerSelector,omitempty" yaml:"containerSelector,omitempty"`

	// LiveUpdate steps are passed to the host verbatim.
	LiveUpdate []LiveUpdateStep `json:"liveUpdate,omitempty" yaml:"liveUpdate,omitempty"`

	// ResourceDeps order this resource after others.
	ResourceDeps []string `json:"resourceDeps,omitempty" yaml:"resourceDeps,omitempty"`

	// Labels categorize the resource in host UIs.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// AutoInit controls whether the host deploys the resource on
	// startup. Unset means true.
	AutoInit *bool `json:"autoInit,omitempty" yaml:"autoInit,omitempty"`

	// PodReadiness is the host readiness mode ("", "wait", "ignore").
	PodReadiness string `json:"podReadiness,omitempty" yaml:"podReadiness,omitempty"`

	// PortForwards are host port-forward specs, passed through.
	PortForwards []string `json:"portForwards,omitempty" yaml:"portForwards,omitempty"`
}

// WithDefaults returns a copy with optional fields resolved: the
// release name falls back to the resource name and AutoInit to true.
func (c ChartResource) WithDefaults() ChartResource {
	out := c
	if out.ReleaseName == "" {
		out.ReleaseName = out.Name
	}
	if out.AutoInit == nil {
		out.AutoInit = ptr.To(true)
	}
	return out
}

// Validate checks the structural invariants a spec must satisfy before
// commands can be synthesized for it.
func (c ChartResource) Validate() error {
	if c.Name == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidResource, "chart resource: name is required")
	}
	if c.Chart == "" {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidResource, "chart resource %q: chart is required", c.Name)
	}
	if err := c.ValidateImageBindings(); err != nil {
		return err
	}
	for i, k := range c.ImageKeys {
		if k == nil {
			return hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"chart resource %q: image key %d is nil", c.Name, i)
		}
	}
	return nil
}

// ValidateImageBindings enforces the pairing invariant between image
// dependencies and values keys.
func (c ChartResource) ValidateImageBindings() error {
	if len(c.ImageDeps) != len(c.ImageKeys) {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidResource,
			"chart resource %q: %d imageDeps but %d imageKeys; they must pair one to one",
			c.Name, len(c.ImageDeps), len(c.ImageKeys))
	}
	return nil
}
