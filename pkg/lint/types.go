/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/

package lint

import "time"

const (
	// APIVersion is the API version for lint reports.
	APIVersion = "helmwire.dev/v1alpha1"

	// Kind is the kind for lint reports.
	Kind = "LintReport"
)

// Severity grades a finding.
type Severity string

const (
	// SeverityError marks findings that make a workspace unregisterable.
	SeverityError Severity = "error"

	// SeverityWarning marks findings that register but likely misbehave.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks observations worth a look.
	SeverityInfo Severity = "info"
)

// Status is the overall report outcome.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Finding is one lint observation tied to a workspace entry.
type Finding struct {
	// Severity grades the finding.
	Severity Severity `json:"severity" yaml:"severity"`

	// Resource names the entry the finding is about, e.g.
	// "charts[0] app" or "repos[1] bitnami".
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`

	// Message describes the problem.
	Message string `json:"message" yaml:"message"`
}

// Summary aggregates a report's findings.
type Summary struct {
	Errors   int           `json:"errors" yaml:"errors"`
	Warnings int           `json:"warnings" yaml:"warnings"`
	Infos    int           `json:"infos" yaml:"infos"`
	Total    int           `json:"total" yaml:"total"`
	Status   Status        `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the result of linting one workspace.
type Report struct {
	Kind       string `json:"kind" yaml:"kind"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`

	// Version is the linter version that produced the report.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Workspace is the linted workspace's metadata name.
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty"`

	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
	Summary  Summary   `json:"summary" yaml:"summary"`
}

// NewReport returns an empty report with its header populated.
func NewReport(version string) *Report {
	return &Report{
		Kind:       Kind,
		APIVersion: APIVersion,
		Version:    version,
	}
}

// add appends a finding and updates the running counts.
func (r *Report) add(severity Severity, resource, message string) {
	r.Findings = append(r.Findings, Finding{
		Severity: severity,
		Resource: resource,
		Message:  message,
	})
	switch severity {
	case SeverityError:
		r.Summary.Errors++
	case SeverityWarning:
		r.Summary.Warnings++
	case SeverityInfo:
		r.Summary.Infos++
	}
}

// HasErrors reports whether any finding is an error.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}
