// Copyright © 2026 Helmwire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface for the helmwire tool.
//
// # Overview
//
// The helmwire CLI drives the chart-to-dev-loop workflow: declaring Helm
// repos and charts in a workspace file, checking the workspace, and turning
// it into deployment commands, either registered with a running host or
// rendered to disk as a bundle. It is designed for developers wiring Helm
// charts into an inner dev loop and for CI pipelines that gate on lint.
//
// # Commands
//
// lint - Check a workspace without side effects:
//
//	helmwire lint --file helmwire.yaml
//	helmwire lint --file helmwire.yaml --format json --output report.json
//
// Grades findings error/warning/info: structural problems, duplicate
// resource names, shell-hostile values, likely repo typos. Exits non-zero
// when any error-severity finding is present.
//
// register - Evaluate a workspace against a host:
//
//	helmwire register --file helmwire.yaml --host http://localhost:8080
//	helmwire register --file helmwire.yaml --timeout 10s
//
// Registers repos first, then charts, in declaration order. Each chart
// becomes a deployable carrying its apply and delete commands; each repo
// becomes a task carrying its helm repo add argv.
//
// render - Write a workspace's commands to disk:
//
//	helmwire render --file helmwire.yaml --output ./bundle
//	helmwire render --file helmwire.yaml --only 'app-*' --output ./bundle
//	helmwire render --file helmwire.yaml --output ./bundle --push \
//	  --registry ghcr.io --repository acme/helmwire-bundle --tag v1.0.0
//
// Produces charts/<name>/{apply.sh,delete.sh}, tasks/<name>.json, a
// workspace.yaml snapshot, and a SHA256 checksum manifest. With --push the
// bundle is packaged as an OCI artifact and pushed to a registry.
//
// serve - Run the reference host:
//
//	helmwire serve --port 8080
//	helmwire serve --rate-limit 20 --rate-limit-burst 40
//
// Exposes the v1alpha1 registration API over HTTP with an in-memory store,
// health/readiness probes, and Prometheus metrics.
//
// version - Print build information:
//
//	helmwire version
//	helmwire version --format json
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
// YAML (default):
//   - Human-readable, preserves structure
//   - Suitable for version control
//
// JSON:
//   - Machine-parseable, compact
//   - Suitable for programmatic consumption
//
// Table:
//   - Flattened FIELD/VALUE text representation
//   - Suitable for terminal viewing
//
// # Usage Examples
//
// Complete workflow:
//
//	helmwire lint --file helmwire.yaml
//	helmwire serve &
//	helmwire register --file helmwire.yaml --host http://localhost:8080
//
// Offline workflow:
//
//	helmwire render --file helmwire.yaml --output ./bundle
//	sh ./bundle/charts/app/apply.sh
//
// ConfigMap-based workflow:
//
//	helmwire lint --file cm://dev/helmwire-workspace
//	helmwire register --file cm://dev/helmwire-workspace
//
// # Environment Variables
//
//	LOG_LEVEL                Set logging verbosity (debug, info, warn, error)
//	HELMWIRE_HOST            Default host URL for register
//	HELMWIRE_SERVER_PORT     Listen port for serve (see pkg/server for the full set)
//	KUBECONFIG               Path to kubeconfig file for cm:// sources
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, lint errors, execution failure)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/workspace - Workspace loading, validation, and evaluation
//   - pkg/lint - Workspace analysis and reporting
//   - pkg/registrar - Chart and repo registration against a host
//   - pkg/render - Bundle rendering to disk
//   - pkg/oci - OCI artifact packaging and pushing
//   - pkg/server - Reference host implementation
//   - pkg/serializer - Output formatting (including ConfigMap)
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/helmwire/helmwire/pkg/cli.version=1.0.0'"
package cli
