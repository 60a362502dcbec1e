package models

// MetadataBag holds the machine-readable signals harvested from one page.
type MetadataBag struct {
	// JSONLD is one entry per ld+json block; top-level arrays are flattened in place.
	JSONLD []any `json:"json_ld"`
	// EmbeddedJSON keeps object payloads of application/json scripts only.
	EmbeddedJSON []map[string]any `json:"embedded_json"`
	// Meta maps a lowercased property/name key to the first content seen for it.
	Meta map[string]string `json:"meta"`
	// ProductAttributes keeps product-looking data-* attributes, keyed by raw name.
	ProductAttributes map[string]string `json:"product_attributes"`
}

// NewMetadataBag returns a bag with every container allocated and empty.
func NewMetadataBag() MetadataBag {
	return MetadataBag{
		JSONLD:            []any{},
		EmbeddedJSON:      []map[string]any{},
		Meta:              map[string]string{},
		ProductAttributes: map[string]string{},
	}
}

// Price is a monetary amount with an optional compare-at (list) price.
type Price struct {
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	CompareAtPrice *float64 `json:"compare_at_price"`
}

// Variant is one purchasable variation of a product.
type Variant struct {
	SKU      *string  `json:"sku"`
	Color    *string  `json:"color"`
	Size     *string  `json:"size"`
	Price    *float64 `json:"price"`
	ImageURL *string  `json:"image_url"`
}

// TruthSheet is the reconciled view of a product built from deterministic sources.
// Scalars stay nil and collections stay empty unless a source supplied them.
type TruthSheet struct {
	Name        *string   `json:"name"`
	Price       *Price    `json:"price"`
	Description *string   `json:"description"`
	KeyFeatures []string  `json:"key_features"`
	ImageURLs   []string  `json:"image_urls"`
	VideoURL    *string   `json:"video_url"`
	Category    *string   `json:"category"`
	Brand       *string   `json:"brand"`
	Colors      []string  `json:"colors"`
	Variants    []Variant `json:"variants"`
}

// NewTruthSheet returns an all-empty truth sheet.
func NewTruthSheet() TruthSheet {
	return TruthSheet{
		KeyFeatures: []string{},
		ImageURLs:   []string{},
		Colors:      []string{},
		Variants:    []Variant{},
	}
}

// EmbeddedProduct is what the miner recovers from a framework page-data payload.
type EmbeddedProduct struct {
	Colors    []string  `json:"colors,omitempty"`
	Variants  []Variant `json:"variants,omitempty"`
	ImageURLs []string  `json:"image_urls,omitempty"`
}

// Empty reports whether no signal was found.
func (e EmbeddedProduct) Empty() bool {
	return len(e.Colors) == 0 && len(e.Variants) == 0 && len(e.ImageURLs) == 0
}

// HybridContext is the structured-data lane output.
type HybridContext struct {
	TruthSheet    TruthSheet `json:"truth_sheet"`
	MDContent     string     `json:"md_content"`
	ProductJSONLD []any      `json:"product_json_ld"`
}

// ImageCandidates is the ordered, deduplicated set of page image URLs with hints.
type ImageCandidates struct {
	URLs  []string
	Hints map[string]string
}

// ImageHint pairs a candidate URL with its human-readable hint ("" when none).
type ImageHint struct {
	URL  string `json:"url"`
	Hint string `json:"hint"`
}

// MediaResult is the image lane output.
type MediaResult struct {
	Images            []string    `json:"images"`
	Candidates        []string    `json:"candidates"`
	CandidateMetadata []ImageHint `json:"candidate_metadata"`
}

// PipelineContext is everything handed to the arbitration step for one page.
type PipelineContext struct {
	TruthSheet      TruthSheet  `json:"truth_sheet"`
	MDContent       string      `json:"md_content"`
	ProductJSONLD   []any       `json:"product_json_ld"`
	VerifiedImages  []string    `json:"verified_images"`
	ImageCandidates []string    `json:"image_candidates"`
	ImageMetadata   []ImageHint `json:"image_metadata"`
}

// Product is the final catalog record produced by arbitration.
type Product struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Price       *Price   `json:"price"`
	Description *string  `json:"description"`
	KeyFeatures []string `json:"key_features"`
	ImageURLs   []string `json:"image_urls"`
}

// DefaultProduct is substituted whenever a page cannot be resolved.
func DefaultProduct() Product {
	return Product{
		KeyFeatures: []string{},
		ImageURLs:   []string{},
	}
}

// Result is the per-page outcome of a batch run. Exactly one of Product or Err is set.
type Result struct {
	Source  string
	Product *Product
	Err     error
}

// OK reports whether the page produced a product.
func (r Result) OK() bool {
	return r.Err == nil && r.Product != nil
}
