package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

type ImageExtractor struct {
	regexes map[string]*regexp.Regexp
}

func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{
		regexes: config.CompileRegexes(),
	}
}

// candidateSet accumulates URLs in first-seen order with merged hints
type candidateSet struct {
	urls  []string
	hints map[string]string
}

func (c *candidateSet) add(u, hint string) {
	if !isCandidateURL(u) {
		return
	}
	if _, seen := c.hints[u]; !seen {
		c.urls = append(c.urls, u)
		c.hints[u] = ""
	}

	hint = strings.TrimSpace(hint)
	if hint == "" {
		return
	}
	switch prev := c.hints[u]; {
	case prev == "":
		c.hints[u] = hint
	case !strings.Contains(prev, hint):
		c.hints[u] = prev + "; " + hint
	}
}

// CollectCandidates finds every image URL a page references: <img> sources and
// srcsets, image meta tags, then JSON-LD image fields. Relative URLs resolve
// against baseURL, or the page's <base href> when baseURL is empty.
func (ie *ImageExtractor) CollectCandidates(page, baseURL string) models.ImageCandidates {
	set := &candidateSet{urls: []string{}, hints: map[string]string{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return models.ImageCandidates{URLs: set.urls, Hints: set.hints}
	}

	if baseURL == "" {
		if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
			baseURL = strings.TrimSpace(href)
		}
	}

	ie.extractImgTags(doc, baseURL, set)
	ie.extractMetaImages(doc, baseURL, set)
	ie.extractJSONLDImages(doc, baseURL, set)

	return models.ImageCandidates{URLs: set.urls, Hints: set.hints}
}

// extractImgTags reads every src-like attribute of each img, then its best srcset entry
func (ie *ImageExtractor) extractImgTags(doc *goquery.Document, baseURL string, set *candidateSet) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")

		for _, attr := range imgSourceAttrs {
			if src, ok := s.Attr(attr); ok {
				set.add(ie.toAbsoluteURL(src, baseURL), alt)
			}
		}
		for _, attr := range imgSrcsetAttrs {
			if srcset, ok := s.Attr(attr); ok {
				if best := ie.pickFromSrcset(srcset); best != "" {
					set.add(ie.toAbsoluteURL(best, baseURL), alt)
				}
			}
		}
	})
}

// extractMetaImages reads og:image, og:image:secure_url and twitter:image
func (ie *ImageExtractor) extractMetaImages(doc *goquery.Document, baseURL string, set *candidateSet) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))

		matched := false
		for _, k := range imageMetaKeys {
			if key == k {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		if content, ok := s.Attr("content"); ok {
			set.add(ie.toAbsoluteURL(content, baseURL), key)
		}
	})
}

// extractJSONLDImages reads image/images from top-level JSON-LD objects
func (ie *ImageExtractor) extractJSONLDImages(doc *goquery.Document, baseURL string, set *candidateSet) {
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scriptType, _ := s.Attr("type")
		if strings.ToLower(strings.TrimSpace(scriptType)) != ScriptTypeJSONLD {
			return
		}
		payload, err := decodeJSON(s.Text())
		if err != nil {
			return
		}

		for _, item := range toList(payload) {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for _, key := range []string{"image", "images"} {
				for _, ref := range toList(obj[key]) {
					if u := imageRef(ref); u != nil {
						set.add(ie.toAbsoluteURL(*u, baseURL), JSONLDImageHint)
					}
				}
			}
		}
	})
}

// pickFromSrcset selects the entry with the largest descriptor number; ties keep the first
func (ie *ImageExtractor) pickFromSrcset(srcset string) string {
	best := ""
	bestScore := -1

	for _, item := range strings.Split(srcset, ",") {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			continue
		}

		score := 0
		if len(fields) > 1 {
			if digits := ie.regexes["descriptorDigits"].FindString(strings.ToLower(fields[1])); digits != "" {
				if n, err := strconv.Atoi(digits); err == nil {
					score = n
				}
			}
		}
		if score > bestScore {
			best = fields[0]
			bestScore = score
		}
	}

	return best
}

// toAbsoluteURL resolves a reference against base and upgrades protocol-relative URLs to https
func (ie *ImageExtractor) toAbsoluteURL(raw, baseURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if baseURL == "" || hasHTTPScheme(raw) {
		return raw
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return raw
	}
	rel, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	abs := base.ResolveReference(rel)
	if strings.HasPrefix(abs.String(), "//") {
		return "https:" + abs.String()
	}
	return abs.String()
}

// isCandidateURL keeps absolute http(s) URLs that point somewhere below the host root
func isCandidateURL(u string) bool {
	if !hasHTTPScheme(u) {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.Trim(parsed.Path, "/") != ""
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
