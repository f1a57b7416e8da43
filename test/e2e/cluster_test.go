//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/helmwire/helmwire/pkg/helmcmd"
	"github.com/helmwire/helmwire/pkg/manifest"
	"github.com/helmwire/helmwire/pkg/resource"
)

const testImage = "busybox:1.36"

// TestChartApplyDeleteLifecycle runs a synthesized command pair against
// a real cluster: apply installs the release and prints its manifest on
// stdout, delete tears it down and stays green when re-run.
func TestChartApplyDeleteLifecycle(t *testing.T) {
	fw.RequireCluster(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ns := "helmwire-e2e-" + uuid.NewString()[:8]
	cleanup := fw.CreateNamespace(t, ctx, ns)
	defer cleanup()

	chartDir := writeTestChart(t)

	res := resource.ChartResource{
		Name:      "web",
		Chart:     chartDir,
		Namespace: ns,
		ImageDeps: []string{"web-image"},
		ImageKeys: resource.KeyList{
			resource.RepoTagKey{Repository: "image.repository", Tag: "image.tag"},
		},
	}
	cs, err := helmcmd.Build(res)
	require.NoError(t, err)

	t.Logf("apply command:\n%s", cs.Apply)
	stdout, stderr, err := fw.RunShell(ctx, cs.Apply, helmcmd.ImageEnvVar(0)+"="+testImage)
	require.NoError(t, err, "apply failed:\n%s", stderr)

	// Stdout is the release manifest refreshed with live cluster
	// state; the injected image must have made it through the shell
	// split intact.
	objs, err := manifest.Objects([]byte(stdout))
	require.NoError(t, err)
	require.NotEmpty(t, objs, "apply printed no manifest on stdout")

	images, err := manifest.Images([]byte(stdout))
	require.NoError(t, err)
	refs := make([]string, 0, len(images))
	for _, img := range images {
		refs = append(refs, img.Ref)
	}
	assert.Contains(t, refs, testImage)

	fw.WaitForDeploymentReady(t, ctx, ns, "web", 3*time.Minute)

	_, stderr, err = fw.RunShell(ctx, cs.Delete)
	require.NoError(t, err, "delete failed:\n%s", stderr)

	// Teardown is idempotent: deleting an absent release still exits
	// zero.
	_, stderr, err = fw.RunShell(ctx, cs.Delete)
	require.NoError(t, err, "repeated delete failed:\n%s", stderr)

	fw.WaitForCondition(t, fmt.Sprintf("deployment %s/web gone", ns), 2*time.Minute, func() bool {
		_, err := fw.Clientset().AppsV1().Deployments(ns).Get(ctx, "web", metav1.GetOptions{})
		return apierrors.IsNotFound(err)
	})
}

// writeTestChart lays down a minimal chart whose image is driven by the
// values keys the lifecycle test injects into.
func writeTestChart(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"Chart.yaml": `apiVersion: v2
name: web
version: 0.1.0
`,
		"values.yaml": `image:
  repository: busybox
  tag: latest
`,
		"templates/deployment.yaml": `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 1
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: "{{ .Values.image.repository }}:{{ .Values.image.tag }}"
          command: ["sleep", "3600"]
`,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
