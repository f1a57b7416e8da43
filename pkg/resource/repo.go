package resource

import (
	hwerrors "github.com/helmwire/helmwire/pkg/errors"
)

// Repo declares a Helm chart repository to make available before any
// chart resource that pulls from it.
type Repo struct {
	// Name is the repository name other specs reference charts by.
	Name string `json:"name" yaml:"name"`

	// URL is the repository URL.
	URL string `json:"url" yaml:"url"`

	// ResourceName overrides the host task name; defaults to Name.
	ResourceName string `json:"resourceName,omitempty" yaml:"resourceName,omitempty"`

	// Username and Password are injected as --username/--password
	// flags. They end up in the registered argv unredacted; callers
	// who care should rely on host-side secret handling instead.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Options are passed through to the host task unmodified
	// (labels, trigger mode, ...).
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// WithDefaults returns a copy with ResourceName resolved.
func (r Repo) WithDefaults() Repo {
	out := r
	if out.ResourceName == "" {
		out.ResourceName = out.Name
	}
	return out
}

// Validate checks required fields.
func (r Repo) Validate() error {
	if r.Name == "" {
		return hwerrors.New(hwerrors.ErrCodeInvalidResource, "repo: name is required")
	}
	if r.URL == "" {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidResource, "repo %q: url is required", r.Name)
	}
	return nil
}
