/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/helmwire/helmwire/pkg/serializer"
	"github.com/helmwire/helmwire/pkg/workspace"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// loadWorkspace reads the workspace named by --file, honoring
// --kubeconfig for ConfigMap sources.
func loadWorkspace(cmd *cli.Command) (*workspace.Workspace, error) {
	source := cmd.String("file")
	ws, err := workspace.FromSource(source, cmd.String("kubeconfig"))
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace from %q: %w", source, err)
	}
	return ws, nil
}

// newSerializer opens the destination named by --output in the format
// named by --format. The returned cleanup closes the destination and
// is safe to defer.
func newSerializer(cmd *cli.Command) (serializer.Serializer, func(), error) {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return nil, nil, err
	}

	ser, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if c, ok := ser.(serializer.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}
	return ser, cleanup, nil
}
