/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helmwire/helmwire/pkg/lint"
)

func TestLintCmd_CommandStructure(t *testing.T) {
	cmd := lintCmd()

	if cmd.Name != "lint" {
		t.Errorf("Name = %v, want lint", cmd.Name)
	}
	if cmd.Usage == "" {
		t.Error("Usage should not be empty")
	}
	if cmd.Description == "" {
		t.Error("Description should not be empty")
	}
	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}

	requiredFlags := []string{"file", "output", "format", "kubeconfig"}
	for _, flagName := range requiredFlags {
		found := false
		for _, flag := range cmd.Flags {
			if hasName(flag, flagName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("required flag %q not found", flagName)
		}
	}
}

func TestLintCmd_CleanWorkspacePasses(t *testing.T) {
	wsPath := writeWorkspaceFixture(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	args := []string{
		"helmwire", "lint",
		"--file", wsPath,
		"--format", "json",
		"--output", outPath,
	}
	if err := Run(context.Background(), args); err != nil {
		t.Fatalf("lint failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report lint.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.Errors != 0 {
		t.Errorf("errors = %d, want 0; findings: %+v", report.Summary.Errors, report.Findings)
	}
	if report.Workspace != "dev" {
		t.Errorf("workspace = %q, want dev", report.Workspace)
	}
}

func TestLintCmd_BrokenWorkspaceFails(t *testing.T) {
	// Two charts claim the same resource name.
	broken := `apiVersion: helmwire.dev/v1alpha1
kind: Workspace
metadata:
  name: broken
charts:
  - name: app
    chart: ./charts/app
  - name: app
    chart: ./charts/other
`
	wsPath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(wsPath, []byte(broken), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "report.json")
	args := []string{"helmwire", "lint", "--file", wsPath, "--format", "json", "--output", outPath}
	err := Run(context.Background(), args)
	if err == nil {
		t.Fatal("expected lint to fail")
	}
	if !strings.Contains(err.Error(), "lint found") {
		t.Errorf("error = %v, want lint failure message", err)
	}

	// The report is still written before the command fails.
	data, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("read report: %v", readErr)
	}
	var report lint.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.Errors == 0 {
		t.Error("expected error findings in report")
	}
}
