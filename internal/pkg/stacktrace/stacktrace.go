// Package stacktrace trims runtime stacks down to this module's own frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw debug.Stack() dump, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)

		// file lines look like "/src/module/internal/x/y.go:42 +0x1d"
		loc, _, _ := strings.Cut(line, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}
		if i := strings.Index(loc, "/internal/"); i >= 0 {
			paths = append(paths, loc[i+1:])
		}
	}
	return paths
}
