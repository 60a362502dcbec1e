package main

import (
	"fmt"
	"path/filepath"
	"sort"
)

// collectSources returns args as given, or the *.html files under dir in sorted order.
func collectSources(args []string, dir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
