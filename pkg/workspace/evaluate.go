package workspace

import (
	"context"
	"fmt"

	"github.com/helmwire/helmwire/pkg/registrar"
)

// Evaluate registers every workspace entry with the host: repos first
// so charts can resolve against them, then charts, each group in
// declaration order. The first failure aborts evaluation.
func Evaluate(ctx context.Context, reg *registrar.Registrar, ws *Workspace) error {
	for _, repo := range ws.Repos {
		if err := reg.AddRepo(ctx, repo); err != nil {
			return fmt.Errorf("repo %q: %w", repo.Name, err)
		}
	}
	for _, chart := range ws.Charts {
		if err := reg.InstallChart(ctx, chart); err != nil {
			return fmt.Errorf("chart %q: %w", chart.Name, err)
		}
	}
	return nil
}
