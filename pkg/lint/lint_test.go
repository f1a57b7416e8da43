/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/

package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmwire/helmwire/pkg/resource"
	"github.com/helmwire/helmwire/pkg/workspace"
)

func lintWorkspace(t *testing.T, ws *workspace.Workspace) *Report {
	t.Helper()
	report, err := New(WithVersion("test")).Lint(context.Background(), ws)
	require.NoError(t, err)
	return report
}

func findingMessages(r *Report) []string {
	var out []string
	for _, f := range r.Findings {
		out = append(out, f.Message)
	}
	return out
}

func TestLintCleanWorkspacePasses(t *testing.T) {
	ws := workspace.New("dev")
	ws.Repos = []resource.Repo{{Name: "bitnami", URL: "https://charts.bitnami.com/bitnami"}}
	ws.Charts = []resource.ChartResource{
		{
			Name:         "app",
			Chart:        "bitnami/nginx",
			ImageDeps:    []string{"registry.example.com/app"},
			ImageKeys:    resource.KeyList{resource.SingleKey("image.name")},
			ResourceDeps: []string{"bitnami"},
		},
	}

	report := lintWorkspace(t, ws)

	assert.Empty(t, report.Findings)
	assert.Equal(t, StatusPass, report.Summary.Status)
	assert.False(t, report.HasErrors())
	assert.Equal(t, "dev", report.Workspace)
	assert.Equal(t, "test", report.Version)
}

func TestLintImageCountMismatch(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{
			Name:      "app",
			Chart:     "./chart",
			ImageDeps: []string{"a", "b"},
			ImageKeys: resource.KeyList{resource.SingleKey("image")},
		},
	}

	report := lintWorkspace(t, ws)

	assert.Equal(t, StatusFail, report.Summary.Status)
	assert.True(t, report.HasErrors())
	assert.Contains(t, findingMessages(report), "2 imageDeps but 1 imageKeys; they must pair one to one")
}

func TestLintUnknownDependencySuggestsNearestName(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{Name: "app-backend", Chart: "./backend"},
		{Name: "app-frontend", Chart: "./frontend", ResourceDeps: []string{"app-backnd"}},
	}

	report := lintWorkspace(t, ws)

	require.True(t, report.HasErrors())
	var msg string
	for _, f := range report.Findings {
		if f.Severity == SeverityError {
			msg = f.Message
		}
	}
	assert.Contains(t, msg, `resourceDeps target "app-backnd" is not declared`)
	assert.Contains(t, msg, `did you mean "app-backend"?`)
}

func TestLintUnknownDependencyFarNameGetsNoSuggestion(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{Name: "app", Chart: "./chart", ResourceDeps: []string{"completely-different"}},
	}

	report := lintWorkspace(t, ws)

	require.True(t, report.HasErrors())
	for _, f := range report.Findings {
		assert.NotContains(t, f.Message, "did you mean")
	}
}

func TestLintPairKeyPortedRegistryWarns(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{
			Name:      "app",
			Chart:     "./chart",
			ImageDeps: []string{"localhost:5000/app"},
			ImageKeys: resource.KeyList{resource.RepoTagKey{Repository: "image.repo", Tag: "image.tag"}},
		},
	}

	report := lintWorkspace(t, ws)

	assert.Equal(t, StatusWarn, report.Summary.Status)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, SeverityWarning, report.Findings[0].Severity)
	assert.Contains(t, report.Findings[0].Message, "localhost:5000")
}

func TestLintSingleKeyPortedRegistryDoesNotWarn(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{
			Name:      "app",
			Chart:     "./chart",
			ImageDeps: []string{"localhost:5000/app"},
			ImageKeys: resource.KeyList{resource.SingleKey("image")},
		},
	}

	report := lintWorkspace(t, ws)
	assert.Empty(t, report.Findings)
}

func TestLintSelectorWithImageDepsWarns(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{
			Name:          "app",
			Chart:         "./chart",
			ImageDeps:     []string{"registry.example.com/app"},
			ImageKeys:     resource.KeyList{resource.SingleKey("image")},
			ImageSelector: "registry.example.com/*",
		},
	}

	report := lintWorkspace(t, ws)

	assert.Equal(t, StatusWarn, report.Summary.Status)
	assert.Contains(t, findingMessages(report),
		"imageSelector/containerSelector are ignored when imageDeps are declared")
}

func TestLintDuplicateNames(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{Name: "app", Chart: "./a"},
		{Name: "app", Chart: "./b"},
	}

	report := lintWorkspace(t, ws)

	require.True(t, report.HasErrors())
	assert.Contains(t, findingMessages(report), `resource name "app" already used by charts[0] app`)
}

func TestLintRepoFindings(t *testing.T) {
	ws := workspace.New("dev")
	ws.Repos = []resource.Repo{
		{Name: "broken"},
		{Name: "schemeless", URL: "charts.example.com"},
		{Name: "secret", URL: "https://charts.example.com", Username: "u", Password: "hunter2"},
	}

	report := lintWorkspace(t, ws)

	msgs := findingMessages(report)
	assert.Contains(t, msgs, "url is required")
	assert.Contains(t, msgs, `url "charts.example.com" has no http(s) or oci scheme`)
	assert.Contains(t, msgs, "password is embedded in the registered argv; prefer host-side secret handling")
	assert.Equal(t, 1, report.Summary.Errors)
	assert.Equal(t, 1, report.Summary.Warnings)
	assert.Equal(t, 1, report.Summary.Infos)
}

func TestLintInvalidImageReference(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{
			Name:      "app",
			Chart:     "./chart",
			ImageDeps: []string{"Invalid IMAGE"},
			ImageKeys: resource.KeyList{resource.SingleKey("image")},
		},
	}

	report := lintWorkspace(t, ws)

	require.True(t, report.HasErrors())
	assert.Contains(t, report.Findings[0].Message, "invalid image reference")
}

func TestLintCredentialLookingFlag(t *testing.T) {
	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{
		{Name: "app", Chart: "./chart", Flags: []string{"--set", "db.password=hunter2"}},
	}

	report := lintWorkspace(t, ws)

	assert.Equal(t, 1, report.Summary.Infos)
	assert.Equal(t, StatusPass, report.Summary.Status)
}

func TestLintNilWorkspace(t *testing.T) {
	_, err := New().Lint(context.Background(), nil)
	assert.Error(t, err)
}

func TestLintCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ws := workspace.New("dev")
	ws.Charts = []resource.ChartResource{{Name: "app", Chart: "./chart"}}

	_, err := New().Lint(ctx, ws)
	assert.ErrorIs(t, err, context.Canceled)
}
