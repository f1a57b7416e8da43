/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package lint checks workspaces for problems registration would
// reject, plus hazards that register cleanly but misbehave at apply
// time.
package lint

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/helmwire/helmwire/pkg/imageref"
	"github.com/helmwire/helmwire/pkg/resource"
	"github.com/helmwire/helmwire/pkg/workspace"
)

// maxSuggestionDistance bounds how far a name can be from a known one
// before a "did you mean" suggestion reads as noise.
const maxSuggestionDistance = 3

// Linter evaluates workspaces into reports.
type Linter struct {
	// Version is the linter version (typically the CLI version).
	Version string
}

// Option is a functional option for configuring Linter instances.
type Option func(*Linter)

// WithVersion returns an Option that sets the Linter version string.
func WithVersion(version string) Option {
	return func(l *Linter) {
		l.Version = version
	}
}

// New creates a new Linter with the provided options.
func New(opts ...Option) *Linter {
	l := &Linter{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lint checks every workspace entry. Findings land in the report; the
// error return is reserved for nil input and context cancellation.
func (l *Linter) Lint(ctx context.Context, ws *workspace.Workspace) (*Report, error) {
	start := time.Now()

	if ws == nil {
		return nil, fmt.Errorf("workspace cannot be nil")
	}

	report := NewReport(l.Version)
	report.Workspace = ws.Metadata.Name

	// Collect every resource name up front so dependency targets
	// resolve regardless of declaration order.
	known := make([]string, 0, len(ws.Repos)+len(ws.Charts))
	for _, repo := range ws.Repos {
		known = append(known, repo.WithDefaults().ResourceName)
	}
	for _, chart := range ws.Charts {
		known = append(known, chart.Name)
	}

	seen := make(map[string]string)

	for i, repo := range ws.Repos {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		l.lintRepo(report, i, repo, seen)
	}

	for i, chart := range ws.Charts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		l.lintChart(report, i, chart, seen, known)
	}

	report.Summary.Total = len(report.Findings)
	report.Summary.Duration = time.Since(start)

	switch {
	case report.Summary.Errors > 0:
		report.Summary.Status = StatusFail
	case report.Summary.Warnings > 0:
		report.Summary.Status = StatusWarn
	default:
		report.Summary.Status = StatusPass
	}

	slog.Debug("lint completed",
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"infos", report.Summary.Infos,
		"status", report.Summary.Status,
		"duration", report.Summary.Duration)

	return report, nil
}

func (l *Linter) lintRepo(report *Report, i int, repo resource.Repo, seen map[string]string) {
	ref := fmt.Sprintf("repos[%d] %s", i, repo.Name)
	if repo.Name == "" {
		ref = fmt.Sprintf("repos[%d]", i)
		report.add(SeverityError, ref, "name is required")
	}

	switch {
	case repo.URL == "":
		report.add(SeverityError, ref, "url is required")
	case !hasScheme(repo.URL, "http://", "https://", "oci://"):
		report.add(SeverityWarning, ref, fmt.Sprintf("url %q has no http(s) or oci scheme", repo.URL))
	}

	if repo.Password != "" {
		report.add(SeverityInfo, ref, "password is embedded in the registered argv; prefer host-side secret handling")
	}

	l.checkDuplicate(report, ref, repo.WithDefaults().ResourceName, seen)
}

func (l *Linter) lintChart(report *Report, i int, chart resource.ChartResource, seen map[string]string, known []string) {
	ref := fmt.Sprintf("charts[%d] %s", i, chart.Name)
	if chart.Name == "" {
		ref = fmt.Sprintf("charts[%d]", i)
		report.add(SeverityError, ref, "name is required")
	}
	if chart.Chart == "" {
		report.add(SeverityError, ref, "chart is required")
	}

	l.checkDuplicate(report, ref, chart.Name, seen)

	if len(chart.ImageDeps) != len(chart.ImageKeys) {
		report.add(SeverityError, ref, fmt.Sprintf(
			"%d imageDeps but %d imageKeys; they must pair one to one",
			len(chart.ImageDeps), len(chart.ImageKeys)))
	}
	for k, key := range chart.ImageKeys {
		if key == nil {
			report.add(SeverityError, ref, fmt.Sprintf(
				"image key %d has no shape; want a string or [repository, tag] pair", k))
		}
	}

	if (chart.ImageSelector != "" || chart.ContainerSelector != "") && len(chart.ImageDeps) > 0 {
		report.add(SeverityWarning, ref, "imageSelector/containerSelector are ignored when imageDeps are declared")
	}
	if chart.ImageSelector != "" && chart.ContainerSelector != "" {
		report.add(SeverityWarning, ref, "imageSelector and containerSelector are both set; the host honors only one")
	}

	for d, dep := range chart.ImageDeps {
		if err := imageref.Validate(dep); err != nil {
			report.add(SeverityError, ref, err.Error())
			continue
		}
		if d >= len(chart.ImageKeys) {
			continue
		}
		if _, pair := chart.ImageKeys[d].(resource.RepoTagKey); pair {
			if reason := imageref.TagSplitHazard(dep); reason != "" {
				report.add(SeverityWarning, ref, reason)
			}
		}
	}

	for _, dep := range chart.ResourceDeps {
		if slices.Contains(known, dep) {
			continue
		}
		msg := fmt.Sprintf("resourceDeps target %q is not declared in this workspace", dep)
		if suggestion := closest(dep, known); suggestion != "" {
			msg += fmt.Sprintf("; did you mean %q?", suggestion)
		}
		report.add(SeverityError, ref, msg)
	}

	for _, flag := range chart.Flags {
		lower := strings.ToLower(flag)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			report.add(SeverityInfo, ref, fmt.Sprintf(
				"flag %q looks like a credential; it will appear verbatim in the host command", flag))
			break
		}
	}
}

func (l *Linter) checkDuplicate(report *Report, ref, name string, seen map[string]string) {
	if name == "" {
		return
	}
	if prev, ok := seen[name]; ok {
		report.add(SeverityError, ref, fmt.Sprintf("resource name %q already used by %s", name, prev))
		return
	}
	seen[name] = ref
}

// closest returns the known name nearest to target, when near enough
// to be a plausible typo.
func closest(target string, known []string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, name := range known {
		if name == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(target, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func hasScheme(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s) {
			return true
		}
	}
	return false
}
