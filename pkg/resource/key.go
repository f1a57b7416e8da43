package resource

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
)

// ImageKey names the Helm values path(s) an injected image reference is
// written to. Exactly two shapes exist: a single values path receiving
// the full repo:tag reference, or a repository/tag pair of paths the
// reference is split across. The interface is sealed; a type switch
// over SingleKey and RepoTagKey is exhaustive.
type ImageKey interface {
	fmt.Stringer

	// sealed marks the two legal implementations.
	sealed()
}

// SingleKey is a values path that receives the combined repo:tag
// reference, e.g. "image".
type SingleKey string

func (SingleKey) sealed() {}

func (k SingleKey) String() string { return string(k) }

// RepoTagKey is a pair of values paths; the image reference is split on
// its last colon into Repository and Tag.
type RepoTagKey struct {
	Repository string
	Tag        string
}

func (RepoTagKey) sealed() {}

func (k RepoTagKey) String() string {
	return fmt.Sprintf("[%s, %s]", k.Repository, k.Tag)
}

// KeyList is a YAML/JSON-decodable []ImageKey. A scalar entry decodes
// to SingleKey; a two-element sequence of scalars decodes to RepoTagKey;
// everything else is rejected naming the offending index and shape.
type KeyList []ImageKey

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *KeyList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
			"imageKeys: expected a sequence, got %s", yamlKindName(node))
	}

	keys := make(KeyList, 0, len(node.Content))
	for i, item := range node.Content {
		key, err := decodeKeyNode(i, item)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	*l = keys
	return nil
}

func decodeKeyNode(index int, node *yaml.Node) (ImageKey, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"image key %d: %v", index, err)
		}
		return SingleKey(s), nil

	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"image key %d: expected a [repository, tag] pair, got a %d-element sequence",
				index, len(node.Content))
		}
		var pair [2]string
		for j, elem := range node.Content {
			if elem.Kind != yaml.ScalarNode {
				return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
					"image key %d: pair element %d must be a string, got %s",
					index, j, yamlKindName(elem))
			}
			if err := elem.Decode(&pair[j]); err != nil {
				return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
					"image key %d: %v", index, err)
			}
		}
		return RepoTagKey{Repository: pair[0], Tag: pair[1]}, nil

	default:
		return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
			"image key %d: expected a string or a [repository, tag] pair, got %s",
			index, yamlKindName(node))
	}
}

// MarshalYAML implements yaml.Marshaler, emitting the same compact
// shapes UnmarshalYAML accepts.
func (l KeyList) MarshalYAML() (any, error) {
	out := make([]any, len(l))
	for i, k := range l {
		switch key := k.(type) {
		case SingleKey:
			out[i] = string(key)
		case RepoTagKey:
			out[i] = []string{key.Repository, key.Tag}
		default:
			return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"image key %d: unsupported shape %T", i, k)
		}
	}
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler with the same shapes as YAML.
func (l *KeyList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInvalidImageKey, "imageKeys: expected an array", err)
	}

	keys := make(KeyList, 0, len(raw))
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			keys = append(keys, SingleKey(s))
			continue
		}

		var pair []string
		if err := json.Unmarshal(item, &pair); err == nil {
			if len(pair) != 2 {
				return hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
					"image key %d: expected a [repository, tag] pair, got a %d-element array", i, len(pair))
			}
			keys = append(keys, RepoTagKey{Repository: pair[0], Tag: pair[1]})
			continue
		}

		return hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
			"image key %d: expected a string or a [repository, tag] pair", i)
	}
	*l = keys
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l KeyList) MarshalJSON() ([]byte, error) {
	out := make([]any, len(l))
	for i, k := range l {
		switch key := k.(type) {
		case SingleKey:
			out[i] = string(key)
		case RepoTagKey:
			out[i] = []string{key.Repository, key.Tag}
		default:
			return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidImageKey,
				"image key %d: unsupported shape %T", i, k)
		}
	}
	return json.Marshal(out)
}

func yamlKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	case yaml.DocumentNode:
		return "a document"
	default:
		return "an unknown node"
	}
}
