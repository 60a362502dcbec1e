package resolver

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

const instructions = `# Role
You are a Senior Data Integrity Agent. Reconcile raw web extraction data into a single, high-fidelity JSON product object.

# Inputs
1. Truth Sheet: fields built from schema.org JSON-LD and embedded page data. It may be missing or wrong for some fields; judge it field by field.
2. Product Context (Markdown): distilled main content of the page. Use it for any field the Truth Sheet lacks or gets wrong.
3. Product JSON-LD: every JSON-LD block on the page. Price may sit in offers or hasVariant[].offers.
4. Verified Media: image URLs that passed size and aspect checks. Prefer these.
5. Image Candidates: page image URLs that passed the non-product path filter. Use them when Verified Media is empty.
6. Image Metadata: per-image hints (alt text, meta tag, structured-data origin) keyed by URL.

# Instructions
- Judge the Truth Sheet before using it for each field; fall back to Product Context when it is empty or clearly wrong.
- Prefer human-readable, display-ready values over IDs or internal codes.
- Choose product-only images. Exclude marketing, banners, email sign-up art, partner or certification logos.
- Critical fields (name, price, description): return null when no input supplies them. Never invent them.
- Display fields (brand, key_features) may be conservatively inferred from the name, headings or breadcrumbs.
- Output ONLY valid JSON. No prose.

# Schema Requirements
{
  "name": "string | null",
  "brand": "string | null",
  "price": {"price": number, "currency": "string", "compare_at_price": number | null} | null,
  "description": "string | null (concise, focus on specs)",
  "key_features": ["string"],
  "primary_image": "url | null",
  "gallery": ["url"]
}`

var promptTemplate = template.Must(template.New("prompt").Parse(`{{.Instructions}}

# Input Data
<truth_sheet>
{{.TruthSheet}}
</truth_sheet>

<product_context>
{{.Markdown}}
</product_context>

<product_json_ld>
{{.ProductJSONLD}}
</product_json_ld>

<verified_media>
{{.VerifiedImages}}
</verified_media>

<image_candidates>
{{.ImageCandidates}}
</image_candidates>

<image_metadata>
{{.ImageMetadata}}
</image_metadata>

# Response
`))

type promptData struct {
	Instructions    string
	TruthSheet      string
	Markdown        string
	ProductJSONLD   string
	VerifiedImages  string
	ImageCandidates string
	ImageMetadata   string
}

// BuildPrompt renders the arbitration prompt for one page.
func BuildPrompt(pc models.PipelineContext) (string, error) {
	data := promptData{
		Instructions: instructions,
		Markdown:     pc.MDContent,
	}

	var err error
	fields := []struct {
		dst *string
		v   any
	}{
		{&data.TruthSheet, pc.TruthSheet},
		{&data.ProductJSONLD, nonNil(pc.ProductJSONLD)},
		{&data.VerifiedImages, nonNilStrings(pc.VerifiedImages)},
		{&data.ImageCandidates, nonNilStrings(pc.ImageCandidates)},
		{&data.ImageMetadata, nonNilHints(pc.ImageMetadata)},
	}
	for _, f := range fields {
		if *f.dst, err = compactJSON(f.v); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return sb.String(), nil
}

func compactJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding prompt input: %w", err)
	}
	return string(b), nil
}

func nonNil(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilHints(v []models.ImageHint) []models.ImageHint {
	if v == nil {
		return []models.ImageHint{}
	}
	return v
}
