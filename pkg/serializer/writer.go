// Package serializer renders command output to files, stdout, HTTP
// responses, or Kubernetes ConfigMaps in a caller-selected format.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	}
	return true
}

// SupportedFormats returns the accepted format names for flag help.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Serializer renders a value to its destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by serializers that hold a destination needing
// release (files, ConfigMap uploads).
type Closer interface {
	Close() error
}

// Writer serializes values to an io.Writer in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
	closer io.Closer
	closed bool
}

// NewWriter returns a Writer emitting format to out. Unknown formats
// fall back to JSON and a nil out falls back to stdout.
func NewWriter(format Format, out io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	w := &Writer{format: format, out: out}
	if c, ok := out.(io.Closer); ok && out != os.Stdout {
		w.closer = c
	}
	return w
}

// NewStdoutWriter returns a Writer emitting format to stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a serializer for dest: blank or "-"
// selects stdout, cm://namespace/name a ConfigMap, anything else a
// file created at that path.
func NewFileWriterOrStdout(format Format, dest string) (Serializer, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" || dest == StdoutURI {
		return NewStdoutWriter(format), nil
	}
	if strings.HasPrefix(dest, ConfigMapURIScheme) {
		// Not a direct return: a failed constructor must yield a nil
		// Serializer, not a typed-nil *configMapWriter in the interface.
		w, err := newConfigMapWriter(format, dest)
		if err != nil {
			return nil, err
		}
		return w, nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return NewWriter(format, f), nil
}

// Serialize renders data in the writer's format.
func (w *Writer) Serialize(_ context.Context, data any) error {
	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return w.serializeTable(data)
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

// Close releases the underlying destination. Closing a stdout writer,
// or closing twice, is a no-op.
func (w *Writer) Close() error {
	if w.closed || w.closer == nil {
		return nil
	}
	w.closed = true
	return w.closer.Close()
}

// serializeTable renders data as a FIELD/VALUE table with nested
// structures flattened into dotted paths and slices into [i] indices.
func (w *Writer) serializeTable(data any) error {
	rows, err := flatten(data)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>\t")
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.key, r.value)
	}
	return tw.Flush()
}

type tableRow struct {
	key   string
	value string
}

// flatten normalizes data through a JSON round trip, then walks it
// depth-first with map keys sorted so output is deterministic.
func flatten(data any) ([]tableRow, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}
	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}

	var rows []tableRow
	walkValue("", norm, &rows)
	return rows, nil
}

func walkValue(prefix string, v any, rows *[]tableRow) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkValue(joinKey(prefix, k), val[k], rows)
		}
	case []any:
		for i, item := range val {
			walkValue(fmt.Sprintf("%s[%d]", prefix, i), item, rows)
		}
	case nil:
		*rows = append(*rows, tableRow{key: prefix, value: "<nil>"})
	default:
		*rows = append(*rows, tableRow{key: prefix, value: fmt.Sprintf("%v", val)})
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
