/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/helmwire/helmwire/pkg/oci"
	"github.com/helmwire/helmwire/pkg/render"
	"github.com/helmwire/helmwire/pkg/serializer"
	"github.com/helmwire/helmwire/pkg/workspace"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:                  "render",
		EnableShellCompletion: true,
		Usage:                 "Render a workspace into a deployment bundle on disk",
		Description: `Renders every repo and chart in a workspace into a self-contained bundle
directory without talking to a host. The synthesized commands are the same
bytes a host registration would carry.

# Bundle Layout

  - charts/<name>/apply.sh: Install-or-upgrade command for one chart
  - charts/<name>/delete.sh: Uninstall command for the same chart
  - tasks/<name>.json: Repo registration task (helm repo add argv)
  - workspace.yaml: Copy of the input workspace for reference
  - checksums.txt: SHA256 manifest of every rendered file

# Examples

Render a workspace into ./bundle:
  helmwire render --file helmwire.yaml --output ./bundle

Render only charts matching a pattern:
  helmwire render --file helmwire.yaml --only 'app-*' --output ./bundle

Print the render summary as JSON:
  helmwire render --file helmwire.yaml --output ./bundle --format json

Push the bundle to an OCI registry:
  helmwire render --file helmwire.yaml --output ./bundle \
    --push --registry ghcr.io --repository acme/helmwire-bundle --tag v1.0.0

# Deployment

After rendering, deploy a chart with:
  sh <output>/charts/<name>/apply.sh

Remove it again with:
  sh <output>/charts/<name>/delete.sh`,
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Output directory path for the rendered bundle",
			},
			&cli.StringSliceFlag{
				Name:  "only",
				Usage: "Render only charts whose name matches the pattern (supports * wildcards, can be repeated)",
			},
			formatFlag,
			// OCI push flags
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Push the rendered bundle as an OCI artifact to a registry",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "OCI registry host (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "OCI repository path (e.g., acme/helmwire-bundle)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "OCI artifact tag (default: latest)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outputDir := cmd.String("output")

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			// OCI push options
			pushEnabled := cmd.Bool("push")
			registryHost := cmd.String("registry")
			repository := cmd.String("repository")
			tag := cmd.String("tag")
			insecureTLS := cmd.Bool("insecure-tls")
			plainHTTP := cmd.Bool("plain-http")

			// Validate push flags before doing any work
			if pushEnabled {
				if registryHost == "" {
					return fmt.Errorf("--registry is required when --push is enabled")
				}
				if repository == "" {
					return fmt.Errorf("--repository is required when --push is enabled")
				}
				if err := oci.ValidateRegistryReference(registryHost, repository); err != nil {
					return fmt.Errorf("invalid OCI reference: %w", err)
				}
			}

			ws, err := loadWorkspace(cmd)
			if err != nil {
				slog.Error("failed to load workspace", "error", err)
				return err
			}

			only := cmd.StringSlice("only")
			ws = workspace.Filter(ws, only)
			if len(only) > 0 && len(ws.Charts) == 0 {
				return fmt.Errorf("no charts match --only patterns %v", only)
			}

			slog.Info("rendering bundle",
				slog.String("workspace", ws.Metadata.Name),
				slog.String("output", outputDir),
			)

			out, err := render.New().Render(ctx, ws, outputDir)
			if err != nil {
				slog.Error("bundle render failed", "error", err)
				return err
			}

			slog.Info("bundle rendered",
				"workspace", out.Workspace,
				"files", len(out.Files),
				"size_bytes", out.Size,
				"duration_sec", out.Duration.Seconds(),
				"output_dir", outputDir,
			)

			if err := serializer.NewStdoutWriter(outFormat).Serialize(ctx, out); err != nil {
				return err
			}

			printRenderInstructions(outputDir)

			// Push to OCI registry if enabled
			if pushEnabled {
				absOutputDir, err := filepath.Abs(outputDir)
				if err != nil {
					return fmt.Errorf("failed to resolve output directory: %w", err)
				}

				imageTag := tag
				if imageTag == "" {
					imageTag = "latest"
				}

				slog.Info("pushing bundle to OCI registry",
					"registry", registryHost,
					"repository", repository,
					"tag", imageTag,
				)

				// Package locally first
				packageResult, err := oci.Package(ctx, oci.PackageOptions{
					SourceDir:  absOutputDir,
					OutputDir:  absOutputDir,
					Registry:   registryHost,
					Repository: repository,
					Tag:        imageTag,
				})
				if err != nil {
					return fmt.Errorf("failed to package OCI artifact: %w", err)
				}

				slog.Info("OCI artifact packaged locally",
					"reference", packageResult.Reference,
					"digest", packageResult.Digest,
					"store_path", packageResult.StorePath,
				)

				// Push to remote registry
				pushResult, err := oci.PushFromStore(ctx, packageResult.StorePath, oci.PushOptions{
					Registry:    registryHost,
					Repository:  repository,
					Tag:         imageTag,
					PlainHTTP:   plainHTTP,
					InsecureTLS: insecureTLS,
				})
				if err != nil {
					return fmt.Errorf("failed to push OCI artifact to registry: %w", err)
				}

				slog.Info("OCI artifact pushed successfully",
					"reference", pushResult.Reference,
					"digest", pushResult.Digest,
				)
			}

			return nil
		},
	}
}

// printRenderInstructions prints user-friendly deployment instructions.
func printRenderInstructions(outputDir string) {
	fmt.Printf("\nBundle rendered successfully!\n")
	fmt.Printf("Output directory: %s\n", outputDir)
	fmt.Printf("\nTo deploy a chart:\n")
	fmt.Printf("  sh %s/charts/<name>/apply.sh\n", outputDir)
	fmt.Printf("\nTo remove it:\n")
	fmt.Printf("  sh %s/charts/<name>/delete.sh\n", outputDir)
}
