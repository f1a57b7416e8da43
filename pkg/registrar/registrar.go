// Package registrar turns declarative chart and repo specs into host
// registrations: it synthesizes the deploy commands, registers the
// resource, then attaches scheduling and labeling metadata.
package registrar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helmwire/helmwire/pkg/helmcmd"
	"github.com/helmwire/helmwire/pkg/host"
	"github.com/helmwire/helmwire/pkg/imageref"
	"github.com/helmwire/helmwire/pkg/resource"
)

// Registrar registers chart resources and repo tasks with a host.
type Registrar struct {
	host host.Registry
}

// New returns a Registrar talking to the given host registry.
func New(h host.Registry) *Registrar {
	return &Registrar{host: h}
}

// InstallChart registers res as a command-deployed resource. Optional
// fields are defaulted, the image binding invariant is checked, and the
// apply/delete commands synthesized; metadata attachment happens only
// after registration succeeds. Host errors propagate wrapped, never
// retried or reclassified.
func (r *Registrar) InstallChart(ctx context.Context, res resource.ChartResource) error {
	res = res.WithDefaults()

	if err := res.ValidateImageBindings(); err != nil {
		return err
	}
	r.warnOnSplitHazards(res)

	cmds, err := helmcmd.Build(res)
	if err != nil {
		return err
	}

	spec := host.DeployableSpec{
		Name:              res.Name,
		ApplyCmd:          cmds.Apply,
		DeleteCmd:         cmds.Delete,
		FileDeps:          res.FileDeps,
		ImageDeps:         res.ImageDeps,
		ImageSelector:     res.ImageSelector,
		ContainerSelector: res.ContainerSelector,
		LiveUpdate:        res.LiveUpdate,
		AutoInit:          *res.AutoInit,
		PodReadiness:      res.PodReadiness,
		PortForwards:      res.PortForwards,
	}

	if err := r.host.RegisterDeployable(ctx, spec); err != nil {
		return fmt.Errorf("register deployable %q: %w", res.Name, err)
	}

	if len(res.ResourceDeps) > 0 {
		if err := r.host.AttachDependencies(ctx, res.Name, res.ResourceDeps); err != nil {
			return fmt.Errorf("attach dependencies to %q: %w", res.Name, err)
		}
	}

	if len(res.Labels) > 0 {
		if err := r.host.AttachLabels(ctx, res.Name, res.Labels); err != nil {
			return fmt.Errorf("attach labels to %q: %w", res.Name, err)
		}
	}

	slog.Debug("chart resource registered",
		"name", res.Name,
		"release", res.ReleaseName,
		"namespace", res.Namespace,
		"images", len(res.ImageDeps),
	)
	return nil
}

// AddRepo registers repo as a parallel-capable host task running
// `helm repo add --force-update`. Identical specs produce identical
// argv, so re-evaluation is safe.
func (r *Registrar) AddRepo(ctx context.Context, repo resource.Repo) error {
	repo = repo.WithDefaults()

	if err := repo.Validate(); err != nil {
		return err
	}

	task := host.TaskSpec{
		Name:          repo.ResourceName,
		Argv:          helmcmd.RepoAddArgs(repo),
		AllowParallel: true,
		Options:       repo.Options,
	}

	if err := r.host.RegisterTask(ctx, task); err != nil {
		return fmt.Errorf("register repo task %q: %w", repo.ResourceName, err)
	}

	slog.Debug("repo task registered", "name", repo.ResourceName, "url", repo.URL)
	return nil
}

// warnOnSplitHazards logs when a pair key will split an image
// reference the last-colon heuristic misreads. The commands are not
// altered; the warning is the contract.
func (r *Registrar) warnOnSplitHazards(res resource.ChartResource) {
	for i, key := range res.ImageKeys {
		if _, ok := key.(resource.RepoTagKey); !ok {
			continue
		}
		if i >= len(res.ImageDeps) {
			continue
		}
		if reason := imageref.TagSplitHazard(res.ImageDeps[i]); reason != "" {
			slog.Warn("image reference may split incorrectly",
				"resource", res.Name,
				"image", res.ImageDeps[i],
				"reason", reason,
			)
		}
	}
}
