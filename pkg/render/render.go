// Package render writes a workspace out as a self-contained bundle
// directory: one apply/delete script pair per chart, one argv task
// file per repository, plus a workspace snapshot and checksums. The
// scripts carry exactly the commands a host would register, so a
// bundle is runnable without any host attached.
package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/helmcmd"
	"github.com/helmwire/helmwire/pkg/host"
	"github.com/helmwire/helmwire/pkg/resource"
	"github.com/helmwire/helmwire/pkg/workspace"
)

const (
	chartsDirName    = "charts"
	tasksDirName     = "tasks"
	snapshotFileName = "workspace.yaml"
	checksumFileName = "checksums.txt"
)

// Renderer writes workspace bundles.
type Renderer struct {
	includeSnapshot  bool
	includeChecksums bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSnapshot controls whether the workspace snapshot is written.
func WithSnapshot(enabled bool) Option {
	return func(r *Renderer) { r.includeSnapshot = enabled }
}

// WithChecksums controls whether the checksums file is written.
func WithChecksums(enabled bool) Option {
	return func(r *Renderer) { r.includeChecksums = enabled }
}

// New creates a Renderer. Snapshot and checksums are on by default.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		includeSnapshot:  true,
		includeChecksums: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the bundle for ws under dir and reports what it wrote.
func (r *Renderer) Render(ctx context.Context, ws *workspace.Workspace, dir string) (*Result, error) {
	if ws == nil {
		return nil, hwerrors.New(hwerrors.ErrCodeInvalidWorkspace, "render: workspace is nil")
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := NewResult(ws.Metadata.Name)

	slog.Debug("rendering workspace bundle",
		"output_dir", dir,
		"repos", len(ws.Repos),
		"charts", len(ws.Charts),
	)

	dirs := []string{dir}
	if len(ws.Charts) > 0 {
		dirs = append(dirs, filepath.Join(dir, chartsDirName))
	}
	if len(ws.Repos) > 0 {
		dirs = append(dirs, filepath.Join(dir, tasksDirName))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return result, hwerrors.Wrap(hwerrors.ErrCodeInternal, "failed to create bundle directory", err)
		}
	}

	writer := &fileWriter{result: result}

	for _, repo := range ws.Repos {
		if err := checkContext(ctx); err != nil {
			return result, err
		}
		if err := r.renderRepoTask(writer, dir, repo.WithDefaults()); err != nil {
			return result, fmt.Errorf("repo %q: %w", repo.Name, err)
		}
	}

	for _, chart := range ws.Charts {
		if err := checkContext(ctx); err != nil {
			return result, err
		}
		if err := r.renderChartScripts(writer, dir, chart.WithDefaults()); err != nil {
			return result, fmt.Errorf("chart %q: %w", chart.Name, err)
		}
	}

	if r.includeSnapshot {
		if err := r.renderSnapshot(writer, dir, ws); err != nil {
			return result, err
		}
	}

	if r.includeChecksums {
		if err := r.renderChecksums(writer, dir, result); err != nil {
			return result, err
		}
	}

	result.Duration = time.Since(start)
	result.MarkSuccess()

	slog.Info("workspace bundle rendered",
		"workspace", ws.Metadata.Name,
		"files", len(result.Files),
		"size_bytes", result.Size,
		"duration", result.Duration.Round(time.Millisecond),
	)

	return result, nil
}

// renderRepoTask writes the argv task file for one repository.
func (r *Renderer) renderRepoTask(writer *fileWriter, dir string, repo resource.Repo) error {
	task := host.TaskSpec{
		Name:          repo.ResourceName,
		Argv:          helmcmd.RepoAddArgs(repo),
		AllowParallel: true,
		Options:       repo.Options,
	}

	content, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInternal, "failed to encode task", err)
	}
	content = append(content, '\n')

	path := filepath.Join(dir, tasksDirName, repo.ResourceName+".json")
	return writer.write(path, content, 0644)
}

// renderChartScripts writes the apply/delete script pair for one chart.
func (r *Renderer) renderChartScripts(writer *fileWriter, dir string, chart resource.ChartResource) error {
	cmds, err := helmcmd.Build(chart)
	if err != nil {
		return err
	}

	chartDir := filepath.Join(dir, chartsDirName, chart.Name)
	if err := os.MkdirAll(chartDir, 0755); err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInternal, "failed to create chart directory", err)
	}

	applyScript := "#!/bin/sh\n"
	if len(chart.ImageKeys) > 0 {
		// The TILT_IMAGE_<i> references must reach the shell unquoted.
		applyScript += "# shellcheck disable=SC2086,SC2154\n"
	}
	applyScript += cmds.Apply + "\n"
	if err := writer.write(filepath.Join(chartDir, "apply.sh"), []byte(applyScript), 0755); err != nil {
		return err
	}

	deleteScript := "#!/bin/sh\n" + cmds.Delete + "\n"
	return writer.write(filepath.Join(chartDir, "delete.sh"), []byte(deleteScript), 0755)
}

// renderSnapshot writes the workspace document the bundle was rendered
// from.
func (r *Renderer) renderSnapshot(writer *fileWriter, dir string, ws *workspace.Workspace) error {
	content, err := yaml.Marshal(ws)
	if err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInternal, "failed to encode workspace snapshot", err)
	}
	return writer.write(filepath.Join(dir, snapshotFileName), content, 0644)
}

// renderChecksums writes a SHA256 manifest over everything written so
// far.
func (r *Renderer) renderChecksums(writer *fileWriter, dir string, result *Result) error {
	var content bytes.Buffer
	fmt.Fprintf(&content, "# %s bundle checksums (SHA256)\n", result.Workspace)
	fmt.Fprintf(&content, "# Generated: %s\n\n", result.GeneratedAt())

	for _, file := range result.Files {
		if filepath.Base(file) == checksumFileName {
			continue
		}

		fileContent, err := os.ReadFile(file)
		if err != nil {
			return hwerrors.Wrap(hwerrors.ErrCodeInternal, "failed to read file for checksum", err)
		}

		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}

		fmt.Fprintf(&content, "%s  %s\n", ComputeChecksum(fileContent), relPath)
	}

	return writer.write(filepath.Join(dir, checksumFileName), content.Bytes(), 0644)
}

// ComputeChecksum computes the SHA256 checksum of the given content.
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// fileWriter writes bundle files and tracks them on the result.
type fileWriter struct {
	result *Result
}

func (w *fileWriter) write(path string, content []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.result.AddFile(path, int64(len(content)))

	slog.Debug("file written",
		"path", path,
		"size_bytes", len(content),
		"permissions", perm,
	)

	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
