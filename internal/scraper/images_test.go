package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickFromSrcset(t *testing.T) {
	ie := NewImageExtractor()

	tests := []struct {
		name   string
		srcset string
		want   string
	}{
		{"largest width wins", "a.jpg 400w, b.jpg 1200w, c.jpg 2x", "b.jpg"},
		{"ties keep the first entry", "x.jpg 2x, y.jpg 2x", "x.jpg"},
		{"missing descriptor scores zero", "n.jpg, m.jpg 1x", "m.jpg"},
		{"single bare url", "only.jpg", "only.jpg"},
		{"empty entries are skipped", " , p.jpg 300w,", "p.jpg"},
		{"empty srcset", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ie.pickFromSrcset(tt.srcset))
		})
	}
}

func TestToAbsoluteURL(t *testing.T) {
	ie := NewImageExtractor()

	assert.Equal(t, "https://shop.example.com/p/b.jpg", ie.toAbsoluteURL("b.jpg", "https://shop.example.com/p/1"))
	assert.Equal(t, "https://shop.example.com/img/b.jpg", ie.toAbsoluteURL(" /img/b.jpg ", "https://shop.example.com/p/1"))
	assert.Equal(t, "https://cdn.example.com/i.jpg", ie.toAbsoluteURL("//cdn.example.com/i.jpg", "https://shop.example.com/"))
	assert.Equal(t, "https://cdn.example.com/i.jpg", ie.toAbsoluteURL("//cdn.example.com/i.jpg", ""))
	assert.Equal(t, "http://other.example.com/x.png", ie.toAbsoluteURL("http://other.example.com/x.png", "https://shop.example.com/"))
	assert.Equal(t, "relative.jpg", ie.toAbsoluteURL("relative.jpg", ""))
	assert.Equal(t, "", ie.toAbsoluteURL("   ", "https://shop.example.com/"))
}

func TestCollectCandidatesSrcsetScenario(t *testing.T) {
	page := `<img srcset="a.jpg 400w, b.jpg 1200w, c.jpg 2x" alt="Trail Shoe">`

	got := NewImageExtractor().CollectCandidates(page, "https://shop.example.com/p/1")

	assert.Equal(t, []string{"https://shop.example.com/p/b.jpg"}, got.URLs)
	assert.Equal(t, "Trail Shoe", got.Hints["https://shop.example.com/p/b.jpg"])
}

func TestCollectCandidatesSourcesAndHints(t *testing.T) {
	page := `<html><head>
<meta property="og:image" content="https://cdn.example.com/red.jpg">
<meta name="twitter:image" content="https://cdn.example.com/red.jpg">
<meta property="og:title" content="https://cdn.example.com/not-an-image.jpg">
<script type="application/ld+json">[{"@type":"Product","image":["https://cdn.example.com/red.jpg",{"url":"https://cdn.example.com/side.jpg"}]},{"@type":"Organization","images":{"url":"/logo-mark.png"}}]</script>
</head><body>
<img src="https://cdn.example.com/red.jpg" alt=" Red Shoe ">
<img src="https://cdn.example.com/red.jpg" alt="Red Shoe">
<img data-src="//cdn.example.com/lazy.jpg" data-lazy-src="/lazy-2.jpg">
<img data-original="data:image/gif;base64,R0lGOD" src="https://cdn.example.com/">
<img src="mailto:someone@example.com">
</body></html>`

	got := NewImageExtractor().CollectCandidates(page, "https://shop.example.com/item")

	assert.Equal(t, []string{
		"https://cdn.example.com/red.jpg",
		"https://cdn.example.com/lazy.jpg",
		"https://shop.example.com/lazy-2.jpg",
		"https://cdn.example.com/side.jpg",
		"https://shop.example.com/logo-mark.png",
	}, got.URLs)

	assert.Equal(t, "Red Shoe; og:image; twitter:image; json-ld image", got.Hints["https://cdn.example.com/red.jpg"])
	assert.Equal(t, "", got.Hints["https://cdn.example.com/lazy.jpg"])
	assert.Equal(t, JSONLDImageHint, got.Hints["https://cdn.example.com/side.jpg"])
}

func TestCollectCandidatesUsesBaseTag(t *testing.T) {
	page := `<html><head><base href="https://static.example.com/assets/"></head>
<body><img src="shoe.webp" alt="Shoe"></body></html>`

	got := NewImageExtractor().CollectCandidates(page, "")

	assert.Equal(t, []string{"https://static.example.com/assets/shoe.webp"}, got.URLs)
}

func TestCollectCandidatesWithoutBaseDropsRelative(t *testing.T) {
	got := NewImageExtractor().CollectCandidates(`<img src="images/shoe.jpg">`, "")

	assert.Empty(t, got.URLs)
	assert.NotNil(t, got.URLs)
}

func TestCollectCandidatesIsIdempotent(t *testing.T) {
	page := `<img src="https://cdn.example.com/a.jpg" alt="A"><meta property="og:image" content="https://cdn.example.com/b.jpg">`
	ie := NewImageExtractor()

	assert.Equal(t, ie.CollectCandidates(page, ""), ie.CollectCandidates(page, ""))
}

func TestDropNonProductURLs(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/email_sign_up/banner.jpg",
		"https://cdn.example.com/products/shoe.jpg",
		"https://cdn.example.com/Assets/LOGO.png",
		"https://cdn.example.com/emailPrompt-2.jpg",
		"https://cdn.example.com/shoe.jpg?campaign=promo",
	}

	got := DropNonProductURLs(urls, nil)

	assert.Equal(t, []string{
		"https://cdn.example.com/products/shoe.jpg",
		"https://cdn.example.com/shoe.jpg?campaign=promo",
	}, got)
}

func TestDropNonProductURLsCustomList(t *testing.T) {
	urls := []string{"https://cdn.example.com/banner.jpg", "https://cdn.example.com/swatch.jpg"}

	got := DropNonProductURLs(urls, []string{"swatch"})

	assert.Equal(t, []string{"https://cdn.example.com/banner.jpg"}, got)
}

func TestDedupeResolutions(t *testing.T) {
	got := DedupeResolutions([]string{
		"https://cdn.example.com/shoe-500x500.jpg",
		"https://cdn.example.com/side.jpg",
		"https://cdn.example.com/shoe-max.jpg",
		"https://cdn.example.com/side_thumb.jpg?v=2",
		"https://cdn.example.com/other.jpg",
	})

	assert.Equal(t, []string{
		"https://cdn.example.com/shoe-500x500.jpg",
		"https://cdn.example.com/side_thumb.jpg?v=2",
		"https://cdn.example.com/other.jpg",
	}, got)
}

func TestDedupeResolutionsEmpty(t *testing.T) {
	got := DedupeResolutions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
