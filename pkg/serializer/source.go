package serializer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	k8sclient "github.com/helmwire/helmwire/pkg/k8s/client"
)

const (
	sourceTimeout = 30 * time.Second

	// maxSourceBytes bounds remote source reads.
	maxSourceBytes = 10 << 20
)

// FromFile loads a YAML or JSON document of type T from a file path,
// an HTTP(S) URL, or a cm://namespace/name ConfigMap URI.
func FromFile[T any](source string) (*T, error) {
	return FromFileWithKubeconfig[T](source, "")
}

// FromFileWithKubeconfig is FromFile with an explicit kubeconfig path
// used when the source is a ConfigMap URI.
func FromFileWithKubeconfig[T any](source, kubeconfig string) (*T, error) {
	data, err := ReadSource(source, kubeconfig)
	if err != nil {
		return nil, err
	}

	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	return &out, nil
}

// ReadSource fetches raw bytes from a file path, HTTP(S) URL, or
// ConfigMap URI. Callers needing strict decoding read the bytes and
// decode themselves.
func ReadSource(source, kubeconfig string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, ConfigMapURIScheme):
		return readConfigMapSource(source, kubeconfig)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return readHTTPSource(source)
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return data, nil
	}
}

func readHTTPSource(url string) ([]byte, error) {
	client := &http.Client{Timeout: sourceTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
}

func readConfigMapSource(uri, kubeconfig string) ([]byte, error) {
	namespace, name, err := ParseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}

	var clientset *kubernetes.Clientset
	if kubeconfig == "" {
		clientset, _, err = k8sclient.GetKubeClient()
	} else {
		clientset, _, err = k8sclient.BuildKubeClient(kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kube client: %w", err)
	}

	cm, err := clientset.CoreV1().ConfigMaps(namespace).Get(context.Background(), name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	if len(cm.Data) == 1 {
		for _, v := range cm.Data {
			return []byte(v), nil
		}
	}
	for _, key := range []string{"workspace.yaml", "output.yaml", "output.json"} {
		if v, ok := cm.Data[key]; ok {
			return []byte(v), nil
		}
	}
	return nil, fmt.Errorf("ConfigMap %s/%s has %d data keys; expected exactly one", namespace, name, len(cm.Data))
}
