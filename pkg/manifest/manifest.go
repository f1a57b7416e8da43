// Package manifest inspects rendered Kubernetes manifests. Apply
// commands print the release manifest on stdout; this package parses
// that stream and reports which container images it runs, so callers
// can verify image injection end to end.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
)

// podSpecPath maps workload kinds to the location of their pod spec.
var podSpecPath = map[string][]string{
	"Pod":         {"spec"},
	"Deployment":  {"spec", "template", "spec"},
	"StatefulSet": {"spec", "template", "spec"},
	"DaemonSet":   {"spec", "template", "spec"},
	"ReplicaSet":  {"spec", "template", "spec"},
	"Job":         {"spec", "template", "spec"},
	"CronJob":     {"spec", "jobTemplate", "spec", "template", "spec"},
}

// Objects decodes a multi-document YAML or JSON manifest into
// unstructured objects, skipping empty documents. List objects, as
// emitted by `kubectl get -oyaml` for multiple resources, are expanded
// into their items.
func Objects(data []byte) ([]*unstructured.Unstructured, error) {
	dec := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)

	var out []*unstructured.Unstructured
	for {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode manifest document %d: %w", len(out), err)
		}
		if len(obj) == 0 {
			continue
		}
		out = appendExpanded(out, &unstructured.Unstructured{Object: obj})
	}
	return out, nil
}

func appendExpanded(out []*unstructured.Unstructured, obj *unstructured.Unstructured) []*unstructured.Unstructured {
	if !obj.IsList() {
		return append(out, obj)
	}
	items, _, _ := unstructured.NestedSlice(obj.Object, "items")
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = appendExpanded(out, &unstructured.Unstructured{Object: m})
	}
	return out
}

// Image is one container image found in a manifest, with every
// workload location running it.
type Image struct {
	Ref       string   `json:"ref" yaml:"ref"`
	Locations []string `json:"locations" yaml:"locations"`
}

// Images extracts the container images a rendered manifest runs,
// walking the pod specs of workload kinds that carry them. Results are
// sorted by reference for stable output.
func Images(data []byte) ([]Image, error) {
	objs, err := Objects(data)
	if err != nil {
		return nil, err
	}

	locations := make(map[string][]string)
	record := func(ref, location string) {
		if ref == "" {
			return
		}
		locations[ref] = append(locations[ref], location)
	}

	for _, obj := range objs {
		path, ok := podSpecPath[obj.GetKind()]
		if !ok {
			continue
		}
		spec, found, err := unstructured.NestedMap(obj.Object, path...)
		if err != nil || !found {
			continue
		}

		prefix := obj.GetName()
		if ns := obj.GetNamespace(); ns != "" {
			prefix = ns + "/" + prefix
		}

		walkContainers(spec, "containers", prefix, "", record)
		walkContainers(spec, "initContainers", prefix, "init-", record)
		walkContainers(spec, "ephemeralContainers", prefix, "ephemeral-", record)
	}

	refs := make([]string, 0, len(locations))
	for ref := range locations {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	images := make([]Image, 0, len(refs))
	for _, ref := range refs {
		images = append(images, Image{Ref: ref, Locations: locations[ref]})
	}

	slog.Debug("extracted container images", slog.Int("count", len(images)))
	return images, nil
}

func walkContainers(spec map[string]any, field, prefix, role string, record func(ref, location string)) {
	containers, found, err := unstructured.NestedSlice(spec, field)
	if err != nil || !found {
		return
	}
	for _, c := range containers {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		image, _, _ := unstructured.NestedString(m, "image")
		name, _, _ := unstructured.NestedString(m, "name")
		record(image, fmt.Sprintf("%s:%s%s", prefix, role, name))
	}
}
