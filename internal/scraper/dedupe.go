package scraper

import (
	"regexp"
	"strings"

	"github.com/travischeung/generalized-web-scraper/internal/config"
)

var resolutionSuffix = config.CompileRegexes()["resolutionSuffix"]

// DedupeResolutions collapses URLs that differ only by a size suffix such as
// -500x500 or _max. The longest URL of each group wins; groups keep the order
// in which they were first seen.
func DedupeResolutions(urls []string) []string {
	return dedupeWith(urls, resolutionSuffix)
}

func dedupeWith(urls []string, suffix *regexp.Regexp) []string {
	order := make([]string, 0, len(urls))
	best := make(map[string]string, len(urls))

	for _, u := range urls {
		key := resolutionIdentity(u, suffix)
		current, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = u
			continue
		}
		if len(u) > len(current) {
			best[key] = u
		}
	}

	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func resolutionIdentity(u string, suffix *regexp.Regexp) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return suffix.ReplaceAllString(u, "")
}
