package serializer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	k8sclient "github.com/helmwire/helmwire/pkg/k8s/client"
)

// configMapWriter buffers rendered output and uploads it as a
// Kubernetes ConfigMap when closed, so partial renders never reach the
// cluster.
type configMapWriter struct {
	namespace string
	name      string
	format    Format
	buf       bytes.Buffer
	inner     *Writer
}

func newConfigMapWriter(format Format, uri string) (*configMapWriter, error) {
	namespace, name, err := ParseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}
	w := &configMapWriter{namespace: namespace, name: name, format: format}
	w.inner = NewWriter(format, &w.buf)
	return w, nil
}

// ParseConfigMapURI splits cm://namespace/name into its parts.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: want cm://namespace/name", uri)
	}
	return parts[0], parts[1], nil
}

// Serialize renders data into the buffer.
func (w *configMapWriter) Serialize(ctx context.Context, data any) error {
	return w.inner.Serialize(ctx, data)
}

// Close uploads the buffered output, creating or updating the target
// ConfigMap.
func (w *configMapWriter) Close() error {
	ctx := context.Background()

	clientset, _, err := k8sclient.GetKubeClient()
	if err != nil {
		return fmt.Errorf("failed to build kube client: %w", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      w.name,
			Namespace: w.namespace,
		},
		Data: map[string]string{
			w.dataKey(): w.buf.String(),
		},
	}

	_, err = clientset.CoreV1().ConfigMaps(w.namespace).Create(ctx, cm, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = clientset.CoreV1().ConfigMaps(w.namespace).Update(ctx, cm, metav1.UpdateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to store ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

func (w *configMapWriter) dataKey() string {
	switch w.format {
	case FormatYAML:
		return "output.yaml"
	case FormatTable:
		return "output.txt"
	default:
		return "output.json"
	}
}
