package workspace

import "strings"

// Filter returns a copy of ws keeping only charts whose name matches
// at least one pattern. Repos are always kept; with no patterns the
// workspace passes through unchanged.
//
// Patterns support shell-style wildcards:
//   - "prefix*" matches names starting with "prefix"
//   - "*suffix" matches names ending with "suffix"
//   - "*contains*" matches names containing "contains"
//   - "exact" matches names exactly
func Filter(ws *Workspace, patterns []string) *Workspace {
	if len(patterns) == 0 {
		return ws
	}

	out := *ws
	out.Charts = nil
	for _, chart := range ws.Charts {
		for _, pattern := range patterns {
			if matchesPattern(chart.Name, pattern) {
				out.Charts = append(out.Charts, chart)
				break
			}
		}
	}
	return &out
}

// matchesPattern checks if a name matches a wildcard pattern.
func matchesPattern(name, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return name == pattern
	}

	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		return strings.Contains(name, strings.Trim(pattern, "*"))
	}

	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(name, strings.TrimPrefix(pattern, "*"))
	}

	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}

	return false
}
