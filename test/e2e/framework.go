//go:build e2e

// Package e2e exercises the full helmwire flow: workspace evaluation
// against an in-process reference host, and, when helm, kubectl, and a
// reachable cluster are present, execution of the synthesized commands
// against that cluster. Tests that need the cluster half skip with a
// reason when it is unavailable.
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/helmwire/helmwire/pkg/host/httpapi"
	kubeclient "github.com/helmwire/helmwire/pkg/k8s/client"
	"github.com/helmwire/helmwire/pkg/server"
)

// Framework holds the in-process host and, when available, a client to
// the cluster the synthesized commands will run against.
type Framework struct {
	mu sync.RWMutex

	store  *server.Store
	host   *httptest.Server
	client *httpapi.Client

	shPath     string
	clientset  *kubernetes.Clientset
	clusterErr error
}

// NewFramework creates a framework instance. Call Setup before use.
func NewFramework() *Framework {
	return &Framework{}
}

// Setup starts the reference host in-process and probes for the
// cluster toolchain. A missing cluster is not an error; tests that
// need one consult RequireCluster.
func (f *Framework) Setup() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.store = server.NewStore()
	srv := server.New(
		server.WithName("helmwire-e2e"),
		server.WithVersion("e2e"),
		server.WithStore(f.store),
	)
	f.host = httptest.NewServer(srv.Handler())

	client, err := httpapi.NewClient(f.host.URL)
	if err != nil {
		return fmt.Errorf("build host client: %w", err)
	}
	f.client = client

	f.clusterErr = f.probeCluster()
	if f.clusterErr != nil {
		fmt.Printf("cluster half disabled: %v\n", f.clusterErr)
	}
	return nil
}

// Teardown stops the in-process host.
func (f *Framework) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.host != nil {
		f.host.Close()
	}
}

// probeCluster locates the binaries the synthesized commands run
// through and checks that a cluster answers on the ambient kubeconfig.
func (f *Framework) probeCluster() error {
	var err error
	if f.shPath, err = exec.LookPath("sh"); err != nil {
		return fmt.Errorf("sh not found")
	}
	if _, err = exec.LookPath("helm"); err != nil {
		return fmt.Errorf("helm not found")
	}
	if _, err = exec.LookPath("kubectl"); err != nil {
		return fmt.Errorf("kubectl not found")
	}

	clientset, _, err := kubeclient.GetKubeClient()
	if err != nil {
		return fmt.Errorf("kubeconfig: %w", err)
	}
	if _, err := clientset.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("cluster unreachable: %w", err)
	}
	f.clientset = clientset
	return nil
}

// HostURL returns the base URL of the in-process reference host.
func (f *Framework) HostURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.host.URL
}

// Client returns the registration client bound to the in-process host.
func (f *Framework) Client() *httpapi.Client {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.client
}

// Store returns the host's backing store for direct state assertions.
func (f *Framework) Store() *server.Store {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.store
}

// Clientset returns the cluster client. Nil unless probeCluster passed.
func (f *Framework) Clientset() *kubernetes.Clientset {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.clientset
}

// RequireCluster skips the test when the cluster half is unavailable.
func (f *Framework) RequireCluster(t *testing.T) {
	t.Helper()

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.clusterErr != nil {
		t.Skipf("cluster unavailable: %v", f.clusterErr)
	}
}

// RunShell executes a synthesized command the way the host does: one
// `sh -c` invocation with extra environment variables appended.
func (f *Framework) RunShell(ctx context.Context, command string, extraEnv ...string) (stdout, stderr string, err error) {
	f.mu.RLock()
	shPath := f.shPath
	f.mu.RUnlock()
	if shPath == "" {
		shPath = "sh"
	}

	cmd := exec.CommandContext(ctx, shPath, "-c", command)
	cmd.Env = append(os.Environ(), extraEnv...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// WaitForCondition polls until condition returns true or timeout is
// reached.
func (f *Framework) WaitForCondition(t *testing.T, desc string, timeout time.Duration, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("timeout waiting for %s", desc)
}

// WaitForDeploymentReady waits until the deployment reports all
// desired replicas ready.
func (f *Framework) WaitForDeploymentReady(t *testing.T, ctx context.Context, namespace, name string, timeout time.Duration) {
	t.Helper()
	t.Logf("waiting for deployment %s/%s", namespace, name)

	f.WaitForCondition(t, fmt.Sprintf("deployment %s/%s ready", namespace, name), timeout, func() bool {
		dep, err := f.Clientset().AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false
		}
		desired := int32(1)
		if dep.Spec.Replicas != nil {
			desired = *dep.Spec.Replicas
		}
		return dep.Status.ReadyReplicas == desired
	})
}

// CreateNamespace creates a namespace and returns a cleanup function.
// HELMWIRE_E2E_KEEP preserves it for post-mortem inspection.
func (f *Framework) CreateNamespace(t *testing.T, ctx context.Context, name string) func() {
	t.Helper()

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
	if _, err := f.Clientset().CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		t.Fatalf("create namespace %s: %v", name, err)
	}

	return func() {
		if os.Getenv("HELMWIRE_E2E_KEEP") != "" {
			t.Logf("namespace preserved: %s", name)
			return
		}
		delCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_ = f.Clientset().CoreV1().Namespaces().Delete(delCtx, name, metav1.DeleteOptions{})
	}
}
