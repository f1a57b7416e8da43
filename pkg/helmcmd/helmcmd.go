// Package helmcmd synthesizes the shell commands and argv sequences a
// dev-loop host runs to deploy Helm charts and register repositories.
//
// Synthesis is pure string assembly: helm is never executed here, and
// the emitted bytes for a given spec never change between runs. Image
// references are injected by the host at apply time through
// TILT_IMAGE_<i> environment variables, so the --set flags that
// reference them are left unquoted for the shell to expand.
//
// Known limitation: pair keys split the injected reference on its last
// colon (${VAR%:*} / ${VAR##*:}). A registry with a port in an
// untagged reference puts its colon where the tag separator is
// expected; the split is kept byte-stable anyway and the lint layer
// warns about such references.
package helmcmd

import (
	"fmt"
	"strings"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/resource"
	"github.com/helmwire/helmwire/pkg/shellquote"
)

const imageEnvPrefix = "TILT_IMAGE_"

// ImageEnvVar returns the environment variable name the host binds the
// i-th image dependency to, counted in imageDeps order.
func ImageEnvVar(i int) string {
	return fmt.Sprintf("%s%d", imageEnvPrefix, i)
}

// CommandSet pairs the synthesized apply and delete commands for one
// chart resource.
type CommandSet struct {
	Apply  string `json:"apply" yaml:"apply"`
	Delete string `json:"delete" yaml:"delete"`
}

// Build synthesizes the apply/delete command pair for res. Optional
// fields are defaulted first; caller-supplied flags are shell-escaped
// and image injection flags appended after them.
func Build(res resource.ChartResource) (CommandSet, error) {
	res = res.WithDefaults()

	apply, err := buildApply(res)
	if err != nil {
		return CommandSet{}, err
	}
	return CommandSet{Apply: apply, Delete: buildDelete(res)}, nil
}

// buildApply renders the strict-mode apply script: upgrade the release
// with its output shunted to stderr, then print the rendered manifest
// refreshed with live cluster state on stdout.
func buildApply(res resource.ChartResource) (string, error) {
	flags := shellquote.QuoteAll(res.Flags)
	inject, err := InjectionFlags(res.ImageKeys)
	if err != nil {
		return "", err
	}
	flags = append(flags, inject...)

	upgrade := []string{"helm", "upgrade"}
	upgrade = append(upgrade, flags...)
	upgrade = append(upgrade, namespaceArgs(res.Namespace)...)
	upgrade = append(upgrade,
		"--install",
		shellquote.Quote(res.ReleaseName),
		shellquote.Quote(res.Chart),
		"1>&2",
	)

	manifest := []string{"helm", "get", "manifest"}
	manifest = append(manifest, namespaceArgs(res.Namespace)...)
	manifest = append(manifest, shellquote.Quote(res.ReleaseName))

	kubectl := []string{"kubectl", "get"}
	kubectl = append(kubectl, namespaceArgs(res.Namespace)...)
	kubectl = append(kubectl, "-oyaml", "-f", "-")

	return "set -ex;\n" +
		strings.Join(upgrade, " ") + ";\n" +
		strings.Join(manifest, " ") + " | " + strings.Join(kubectl, " "), nil
}

// buildDelete renders the teardown command. The trailing `|| true`
// keeps teardown from blocking when the release never installed.
func buildDelete(res resource.ChartResource) string {
	parts := []string{"helm", "uninstall"}
	parts = append(parts, namespaceArgs(res.Namespace)...)
	parts = append(parts, shellquote.Quote(res.ReleaseName))
	return strings.Join(parts, " ") + " || true"
}

// namespaceArgs returns the --namespace tokens, or nothing when the
// resource rides the ambient namespace.
func namespaceArgs(ns string) []string {
	if ns == "" {
		return nil
	}
	return []string{"--namespace", shellquote.Quote(ns)}
}

// InjectionFlags returns the --set flags binding each image key to its
// TILT_IMAGE_<i> variable. The flags must survive to the shell
// unquoted so the variable references expand at apply time.
func InjectionFlags(keys resource.KeyList) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	flags := make([]string, 0, len(keys))
	for i, key := range keys {
		env := ImageEnvVar(i)
		switch k := key.(type) {
		case resource.SingleKey:
			flags = append(flags, fmt.Sprintf("--set %s=$%s", k, env))
		case resource.RepoTagKey:
			// Split on the last colon: %:* strips the tag, ##*:
			// keeps only the tag.
			flags = append(flags,
				fmt.Sprintf("--set %s=${%s%%:*}", k.Repository, env),
				fmt.Sprintf("--set %s=${%s##*:}", k.Tag, env),
			)
		default:
			return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"image key %d: unsupported shape %T; expected a string or a [repository, tag] pair", i, key)
		}
	}
	return flags, nil
}

// RepoAddArgs returns the argv sequence registering a chart repository.
// --force-update makes re-registration idempotent; credentials, when
// set, ride as flags in name/url/--username/--password order.
func RepoAddArgs(r resource.Repo) []string {
	args := []string{"helm", "repo", "add", r.Name, r.URL, "--force-update"}
	if r.Username != "" {
		args = append(args, "--username", r.Username)
	}
	if r.Password != "" {
		args = append(args, "--password", r.Password)
	}
	return args
}
