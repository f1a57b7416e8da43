/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/helmwire/helmwire/pkg/lint"
)

func lintCmd() *cli.Command {
	return &cli.Command{
		Name:                  "lint",
		EnableShellCompletion: true,
		Usage:                 "Check a workspace for problems without registering anything",
		Description: `Lints a workspace and reports findings graded error, warning, or info:
  - Structural problems that make an entry unregisterable (errors)
  - Duplicate resource names across repos and charts (errors)
  - Unquoted values that a shell would split or expand (warnings)
  - Chart references that look like a typo of a declared repo (warnings)
  - Values that carry image references verbatim (info)

The report can be output in JSON, YAML, or table format. The exit code is
non-zero when any error-severity finding is present, so lint gates CI.

# Examples

Lint a workspace:
  helmwire lint --file helmwire.yaml

Lint with JSON output for machine consumption:
  helmwire lint --file helmwire.yaml --format json

Write the report to a file:
  helmwire lint --file helmwire.yaml --output report.yaml`,
		Flags: []cli.Flag{
			fileFlag,
			outputFlag,
			formatFlag,
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}

			report, err := lint.New(lint.WithVersion(version)).Lint(ctx, ws)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}

			ser, cleanup, err := newSerializer(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := ser.Serialize(ctx, report); err != nil {
				return err
			}

			if report.HasErrors() {
				return fmt.Errorf("lint found %d error(s) in workspace %q",
					report.Summary.Errors, ws.Metadata.Name)
			}
			return nil
		},
	}
}
