// Package scraper provides helper functions for content distillation.
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindContentContainer returns the first element matching a main-content
// selector, falling back to body
func FindContentContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range strings.Split(ContentSelectors, ",") {
		selector = strings.TrimSpace(selector)
		if found := doc.Find(selector); found.Length() > 0 {
			return found.First()
		}
	}
	return doc.Selection
}

// pruneForOptions drops the markup the options exclude; links are unwrapped so their text survives
func pruneForOptions(sel *goquery.Selection, opts DistillOptions) {
	sel.Find(NonContentTags).Remove()
	if !opts.IncludeImages {
		sel.Find("img, picture, figure > source").Remove()
	}
	if !opts.IncludeTables {
		sel.Find("table").Remove()
	}
	if !opts.IncludeLinks {
		sel.Find("a").Each(func(_ int, a *goquery.Selection) {
			a.ReplaceWithSelection(a.Contents())
		})
	}
}
