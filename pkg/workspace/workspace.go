// Package workspace loads, validates, and evaluates declarative
// helmwire files. A workspace is a Kubernetes-style resource document
// listing chart repositories and chart resources; evaluation registers
// its entries with a host in declaration order.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/resource"
	"github.com/helmwire/helmwire/pkg/serializer"
)

const (
	// APIVersion is the schema version workspace documents must carry.
	APIVersion = "helmwire.dev/v1alpha1"

	// KindWorkspace is the kind workspace documents must carry.
	KindWorkspace = "Workspace"
)

// Metadata names a workspace.
type Metadata struct {
	Name   string            `json:"name,omitempty" yaml:"name,omitempty"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Header is the resource header of a workspace document.
type Header struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       string   `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate checks the header pins the exact schema this package reads.
func (h Header) Validate() error {
	if h.APIVersion != APIVersion {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidWorkspace,
			"workspace: apiVersion %q is not supported; want %q", h.APIVersion, APIVersion)
	}
	if h.Kind != KindWorkspace {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidWorkspace,
			"workspace: kind %q is not supported; want %q", h.Kind, KindWorkspace)
	}
	return nil
}

// Workspace is one declarative helmwire document.
type Workspace struct {
	Header `yaml:",inline"`

	// Repos are registered before any chart, in declaration order.
	Repos []resource.Repo `json:"repos,omitempty" yaml:"repos,omitempty"`

	// Charts are registered after repos, in declaration order.
	Charts []resource.ChartResource `json:"charts,omitempty" yaml:"charts,omitempty"`
}

// New returns an empty workspace with a populated header.
func New(name string) *Workspace {
	return &Workspace{
		Header: Header{
			APIVersion: APIVersion,
			Kind:       KindWorkspace,
			Metadata:   Metadata{Name: name},
		},
	}
}

// FromBytes decodes a workspace document strictly: unknown fields are
// errors, and the header must match this package's schema exactly.
func FromBytes(data []byte) (*Workspace, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ws Workspace
	if err := dec.Decode(&ws); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, hwerrors.New(hwerrors.ErrCodeInvalidWorkspace, "workspace: empty document")
		}
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInvalidWorkspace, "workspace: decode failed", err)
	}

	if err := ws.Header.Validate(); err != nil {
		return nil, err
	}
	return &ws, nil
}

// FromFile loads a workspace from a local path.
func FromFile(path string) (*Workspace, error) {
	return FromSource(path, "")
}

// FromSource loads a workspace from a file path, HTTP(S) URL, or
// cm://namespace/name ConfigMap URI. The kubeconfig applies to
// ConfigMap sources only.
func FromSource(source, kubeconfig string) (*Workspace, error) {
	data, err := serializer.ReadSource(source, kubeconfig)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInvalidWorkspace, "workspace: read failed", err)
	}
	return FromBytes(data)
}

// Validate checks every entry structurally and rejects resource name
// collisions across repos and charts.
func (ws *Workspace) Validate() error {
	seen := make(map[string]string)

	for i, repo := range ws.Repos {
		if err := repo.Validate(); err != nil {
			return fmt.Errorf("repos[%d]: %w", i, err)
		}
		name := repo.WithDefaults().ResourceName
		if prev, ok := seen[name]; ok {
			return hwerrors.Newf(hwerrors.ErrCodeInvalidWorkspace,
				"workspace: resource name %q used by both %s and repos[%d]", name, prev, i)
		}
		seen[name] = fmt.Sprintf("repos[%d]", i)
	}

	for i, chart := range ws.Charts {
		if err := chart.Validate(); err != nil {
			return fmt.Errorf("charts[%d]: %w", i, err)
		}
		if prev, ok := seen[chart.Name]; ok {
			return hwerrors.Newf(hwerrors.ErrCodeInvalidWorkspace,
				"workspace: resource name %q used by both %s and charts[%d]", chart.Name, prev, i)
		}
		seen[chart.Name] = fmt.Sprintf("charts[%d]", i)
	}
	return nil
}
