// Package scraper provides constants used throughout the distillation pipeline.
package scraper

import "time"

// Timeout constants
const (
	// MediaTimeout bounds the whole image lane of one page
	MediaTimeout   = 30 * time.Second
	ResolveTimeout = 90 * time.Second
	MaxRedirects   = 5
)

// Content extraction selectors
const (
	ContentSelectors = "main, article, [role='main'], #product, .product, .product-detail, .pdp, .content, body"
	NonContentTags   = "script, style, noscript, nav, header, footer, iframe, svg, form"
)

// Meta tag keys that point at a page image
const (
	OGImage       = "og:image"
	OGImageSecure = "og:image:secure_url"
	TwitterImage  = "twitter:image"
)

// Hint recorded for image URLs harvested from JSON-LD
const JSONLDImageHint = "json-ld image"

// Script types read by the metadata extractor
const (
	ScriptTypeJSONLD = "application/ld+json"
	ScriptTypeJSON   = "application/json"
)

// Text processing constants
const (
	DoubleNewline = "\n\n"
	TripleNewline = "\n\n\n"
	DoubleSpace   = "  "
	SingleSpace   = " "
)

// Thin-content thresholds for the recall fallback
const (
	MinArticleWords   = 50
	MinArticleQuality = 30
)

// Embedded JSON traversal bounds
const (
	maxEmbeddedDepth  = 4
	maxEmbeddedFanout = 10
)

var imageMetaKeys = []string{OGImage, OGImageSecure, TwitterImage}

// imgSourceAttrs are tried in order on every <img>; srcset variants come after.
var imgSourceAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

var imgSrcsetAttrs = []string{"srcset", "data-srcset"}

// productAttributeMarkers select which data-* attributes look product related.
var productAttributeMarkers = []string{"product", "price", "sku", "id", "image", "brand"}

// colorwayListKeys name the lists a framework payload uses for per-color entries.
var colorwayListKeys = []string{"colorwayImages", "colorways", "variants"}

// productSearchKeys bound the recursive search over embedded payloads.
var productSearchKeys = map[string]bool{
	"colorDescription": true,
	"colorwayImages":   true,
	"color":            true,
	"variants":         true,
	"hasVariant":       true,
	"products":         true,
	"productGroups":    true,
	"image":            true,
	"images":           true,
}

// Bot-protection interstitial markers
var CloudflarePatterns = []string{
	"cloudflare ray id",
	"attention required",
	"what can i do to resolve this?",
	"why have i been blocked?",
	"performance & security by cloudflare",
	"checking your browser before accessing",
}
