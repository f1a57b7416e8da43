// Package imageref inspects container image references declared as
// image dependencies. It exists to catch, ahead of time, references
// the pair-key tag split misreads at apply time.
package imageref

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// Validate reports whether ref parses as a container image reference
// under the usual docker.io normalization rules.
func Validate(ref string) error {
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return nil
}

// TagSplitHazard returns a non-empty reason when splitting ref on its
// last colon can yield something other than repository and tag. Pair
// image keys are injected as ${VAR%:*} and ${VAR##*:}, which reads the
// text after the last colon as the tag; a registry port or a digest
// puts a colon where that heuristic does not expect one.
//
// The split is a compatibility contract and is never corrected here;
// callers surface the reason as a warning.
func TagSplitHazard(ref string) string {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		// Not parseable; Validate reports this case.
		return ""
	}

	if _, isDigested := named.(reference.Digested); isDigested {
		return fmt.Sprintf("image %q is digest-pinned; the last-colon tag split reads the digest hex as the tag", ref)
	}

	if domain := reference.Domain(named); strings.Contains(domain, ":") {
		return fmt.Sprintf("image %q uses registry %q with a port; when the injected reference carries no tag, the last-colon split reads the port and path as the tag", ref, domain)
	}

	return ""
}
