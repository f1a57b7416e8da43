/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/helmwire/helmwire/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the reference host server",
		Description: `Runs the reference helmwire host: an HTTP server exposing the v1alpha1
registration API backed by an in-memory store. Deployables and tasks
registered here live until the process exits.

Every setting is also reachable through HELMWIRE_SERVER_* environment
variables (HELMWIRE_SERVER_PORT, HELMWIRE_SERVER_RATE_LIMIT, ...); flags
take precedence over the environment.

# Endpoints

  - POST /v1alpha1/deployables: Register a deployable
  - GET  /v1alpha1/deployables: List deployables (?label=, ?name=)
  - GET  /v1alpha1/deployables/{name}: Fetch one deployable
  - POST /v1alpha1/deployables/{name}/dependencies: Attach dependencies
  - POST /v1alpha1/deployables/{name}/labels: Attach labels
  - POST /v1alpha1/tasks: Register a task
  - GET  /v1alpha1/tasks: List tasks
  - GET  /healthz, /readyz, /metrics

# Examples

Run on the default port:
  helmwire serve

Run on a custom port with a tighter rate limit:
  helmwire serve --port 9090 --rate-limit 20 --rate-limit-burst 40`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port",
			},
			&cli.IntFlag{
				Name:  "rate-limit",
				Usage: "Sustained request rate limit in requests per second",
			},
			&cli.IntFlag{
				Name:  "rate-limit-burst",
				Usage: "Burst size for the request rate limiter",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := server.DefaultConfig()
			if cmd.IsSet("address") {
				cfg.Address = cmd.String("address")
			}
			if cmd.IsSet("port") {
				cfg.Port = cmd.Int("port")
			}
			if cmd.IsSet("rate-limit") {
				cfg.RateLimit = rate.Limit(cmd.Int("rate-limit"))
			}
			if cmd.IsSet("rate-limit-burst") {
				cfg.RateLimitBurst = cmd.Int("rate-limit-burst")
			}

			slog.Info("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)

			s := server.New(
				server.WithName(name),
				server.WithVersion(version),
				server.WithConfig(cfg),
			)

			if err := s.Run(ctx); err != nil {
				slog.Error("server exited with error", "error", err)
				return err
			}
			return nil
		},
	}
}
