/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/helmwire/helmwire/pkg/logging"
	"github.com/helmwire/helmwire/pkg/serializer"
)

const (
	name           = "helmwire"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/helmwire/helmwire/pkg/cli.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared across subcommands.
var (
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Required: true,
		Usage: `Path/URI of the workspace to load.
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout). Supports ConfigMap URIs (cm://namespace/name).",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}

	hostFlag = &cli.StringFlag{
		Name:    "host",
		Value:   "http://localhost:8080",
		Usage:   "Base URL of the helmwire host server",
		Sources: cli.EnvVars("HELMWIRE_HOST"),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "Path to the kubeconfig file (used for cm:// sources and outputs)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
)

// New assembles the root command with every subcommand attached.
func New() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Turn declarative Helm chart specs into dev-loop deployment commands",
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLogger(name, version, logging.Options{
				Debug: cmd.Bool("debug"),
				JSON:  cmd.Bool("log-json"),
			})
			return ctx, nil
		},
		Commands: []*cli.Command{
			renderCmd(),
			lintCmd(),
			registerCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// Run executes the CLI with the given arguments and is the entry point
// used by cmd/helmwire.
func Run(ctx context.Context, args []string) error {
	return New().Run(ctx, args)
}
