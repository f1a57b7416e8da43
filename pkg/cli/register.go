/*
Copyright © 2026 Helmwire Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/helmwire/helmwire/pkg/host/httpapi"
	"github.com/helmwire/helmwire/pkg/registrar"
	"github.com/helmwire/helmwire/pkg/workspace"
)

func registerCmd() *cli.Command {
	return &cli.Command{
		Name:                  "register",
		EnableShellCompletion: true,
		Usage:                 "Register a workspace's repos and charts with a host server",
		Description: `Evaluates a workspace against a running helmwire host: repos are
registered first so charts can resolve against them, then charts, each
group in declaration order. Evaluation stops at the first failure, so a
rejected entry leaves later entries unregistered.

Registration is not idempotent. Re-registering a workspace whose names
are already taken fails with a conflict; restart the host (or use a fresh
one) to re-register.

# Examples

Register against a local host:
  helmwire register --file helmwire.yaml

Register against a remote host with a shorter timeout:
  helmwire register --file helmwire.yaml --host http://helmwire.dev.internal:8080 --timeout 10s`,
		Flags: []cli.Flag{
			fileFlag,
			hostFlag,
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "Overall timeout for evaluating the workspace",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.Validate(); err != nil {
				return err
			}

			hostURL := cmd.String("host")
			client, err := httpapi.NewClient(hostURL,
				httpapi.WithUserAgent(fmt.Sprintf("%s/%s", name, version)),
			)
			if err != nil {
				return err
			}

			slog.Info("registering workspace",
				slog.String("workspace", ws.Metadata.Name),
				slog.String("host", hostURL),
				slog.Int("repos", len(ws.Repos)),
				slog.Int("charts", len(ws.Charts)),
			)

			evalCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			if err := workspace.Evaluate(evalCtx, registrar.New(client), ws); err != nil {
				slog.Error("workspace evaluation failed", "error", err)
				return err
			}

			fmt.Printf("Registered %d repo(s) and %d chart(s) with %s\n",
				len(ws.Repos), len(ws.Charts), hostURL)
			return nil
		},
	}
}
