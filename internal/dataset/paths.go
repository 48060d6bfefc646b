package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPaths resolves glob patterns, including "**", into a sorted list of
// unique files. Directories are walked for supported extensions.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if !info.IsDir() {
				add(filepath.Clean(pattern))
				continue
			}
			pattern = filepath.Join(pattern, "**", "*")
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}
		for _, m := range matches {
			if Supported(m) {
				add(m)
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, patterns)
	}
	sort.Strings(out)
	return out, nil
}
