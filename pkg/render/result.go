package render

import (
	"fmt"
	"time"
)

// Result tracks the files a bundle render produced.
type Result struct {
	// Workspace is the name of the rendered workspace.
	Workspace string `json:"workspace" yaml:"workspace"`

	// Files lists every path written, in write order.
	Files []string `json:"files" yaml:"files"`

	// Errors collects non-fatal problems hit along the way.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Size is the total bytes written.
	Size int64 `json:"sizeBytes" yaml:"sizeBytes"`

	// Duration is the wall time the render took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Success is set once the render completes without fatal errors.
	Success bool `json:"success" yaml:"success"`

	generatedAt time.Time
}

// NewResult creates a Result for the named workspace.
func NewResult(workspace string) *Result {
	return &Result{
		Workspace:   workspace,
		Files:       []string{},
		Errors:      []string{},
		generatedAt: time.Now().UTC(),
	}
}

// AddFile records a written file and its size.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// AddError records a non-fatal error. Nil errors are ignored.
func (r *Result) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// MarkSuccess marks the render as completed.
func (r *Result) MarkSuccess() {
	r.Success = true
}

// HasErrors reports whether any non-fatal errors were recorded.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// GeneratedAt returns the render start time in RFC 3339 form.
func (r *Result) GeneratedAt() string {
	return r.generatedAt.Format(time.RFC3339)
}

// Summary returns a one-line human-readable render summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d files, %s in %s",
		len(r.Files), formatBytes(r.Size), r.Duration.Round(time.Millisecond))
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
