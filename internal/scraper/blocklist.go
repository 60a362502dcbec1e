package scraper

import (
	"net/url"
	"strings"

	"github.com/travischeung/generalized-web-scraper/internal/config"
)

// DropNonProductURLs removes URLs whose path contains a blocklisted substring.
// An empty blocklist falls back to config.NonProductPathSubstrings.
func DropNonProductURLs(urls, blocklist []string) []string {
	if len(blocklist) == 0 {
		blocklist = config.NonProductPathSubstrings
	}

	kept := make([]string, 0, len(urls))
	for _, raw := range urls {
		if isNonProductURL(raw, blocklist) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}

func isNonProductURL(raw string, blocklist []string) bool {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	return ContainsAny(strings.ToLower(path), blocklist)
}
