package scraper

import (
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// SelectProductJSONLD returns the first JSON-LD object typed Product (directly
// or within an @type list), or nil.
func SelectProductJSONLD(entries []any) map[string]any {
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if isProductType(obj["@type"]) {
			return obj
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// BuildTruthSheet reconciles the deterministic sources of a page into one
// truth sheet. Every field is resolved independently and stays empty unless a
// source actually supplied it.
func BuildTruthSheet(bag models.MetadataBag, blocklist []string) models.TruthSheet {
	ld := SelectProductJSONLD(bag.JSONLD)
	if ld == nil {
		ld = map[string]any{}
	}

	ts := models.NewTruthSheet()
	ts.Name = stringValue(ld["name"])
	ts.Description = stringValue(ld["description"])
	ts.Category = stringValue(ld["category"])
	ts.Brand = brandOf(ld["brand"])
	ts.Price = priceOf(ld["offers"])
	ts.KeyFeatures = keyFeaturesOf(ld)
	ts.VideoURL = videoOf(ld["video"])
	ts.Colors = colorsOf(ld["color"])
	ts.Variants = variantsOf(ld["hasVariant"])

	ts.ImageURLs = DropNonProductURLs(jsonLDImages(ld), blocklist)
	if len(ts.ImageURLs) == 0 {
		if og := stringValue(bag.Meta[OGImage]); og != nil {
			ts.ImageURLs = []string{*og}
		}
	}

	if len(ts.Variants) == 0 {
		if sku := scalarString(ld["sku"]); sku != nil {
			ts.Variants = append(ts.Variants, syntheticVariant(ld, sku, ts))
		}
	}

	for _, payload := range bag.EmbeddedJSON {
		mergeEmbedded(&ts, MineEmbeddedProduct(payload))
	}
	ts.ImageURLs = DropNonProductURLs(ts.ImageURLs, blocklist)

	return ts
}

// mergeEmbedded fills colors and variants only when still empty but unions
// image URLs, so embedded images supplement JSON-LD ones.
func mergeEmbedded(ts *models.TruthSheet, found models.EmbeddedProduct) {
	if len(ts.Colors) == 0 && len(found.Colors) > 0 {
		ts.Colors = append(ts.Colors, found.Colors...)
	}
	if len(ts.Variants) == 0 && len(found.Variants) > 0 {
		ts.Variants = append(ts.Variants, found.Variants...)
	}
	for _, u := range found.ImageURLs {
		ts.ImageURLs = appendUnique(ts.ImageURLs, u)
	}
}

func brandOf(v any) *string {
	if obj, ok := v.(map[string]any); ok {
		return scalarString(obj["name"])
	}
	return stringValue(v)
}

func priceOf(offers any) *models.Price {
	for _, item := range toList(offers) {
		offer, ok := item.(map[string]any)
		if !ok {
			continue
		}
		amount := floatValue(offer["price"])
		if amount == nil {
			continue
		}

		currency := "USD"
		if c := stringValue(offer["priceCurrency"]); c != nil {
			currency = *c
		}
		return &models.Price{
			Price:          *amount,
			Currency:       currency,
			CompareAtPrice: floatValue(offer["highPrice"]),
		}
	}
	return nil
}

func keyFeaturesOf(ld map[string]any) []string {
	features := []string{}

	notes := ld["positiveNotes"]
	if list, ok := notes.(map[string]any); ok {
		// ItemList form: {"@type": "ItemList", "itemListElement": [...]}
		notes = list["itemListElement"]
	}
	for _, note := range toList(notes) {
		var text *string
		if obj, ok := note.(map[string]any); ok {
			text = scalarString(obj["name"])
		} else {
			text = scalarString(note)
		}
		if text != nil {
			features = append(features, *text)
		}
	}
	if len(features) > 0 {
		return features
	}

	for _, item := range toList(ld["additionalProperty"]) {
		prop, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text := scalarString(firstTruthy(prop, "value", "name")); text != nil {
			features = append(features, *text)
		}
	}
	return features
}

func jsonLDImages(ld map[string]any) []string {
	urls := []string{}
	for _, ref := range toList(firstTruthy(ld, "images", "image")) {
		if u := imageRef(ref); u != nil {
			urls = appendUnique(urls, *u)
		}
	}
	if len(urls) == 0 {
		if u := stringValue(ld["image"]); u != nil {
			urls = append(urls, *u)
		}
	}
	return urls
}

func videoOf(v any) *string {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	switch t := v.(type) {
	case string:
		return stringValue(t)
	case map[string]any:
		return stringValue(firstTruthy(t, "embedUrl", "contentUrl"))
	}
	return nil
}

func colorsOf(v any) []string {
	colors := []string{}
	for _, c := range toList(v) {
		if s := scalarString(c); s != nil {
			colors = append(colors, *s)
		}
	}
	return colors
}

func variantsOf(v any) []models.Variant {
	variants := []models.Variant{}
	for _, item := range toList(v) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		size := scalarString(obj["size"])
		if size == nil {
			size = scalarString(obj["width"])
		}
		price := floatValue(obj["price"])
		if price == nil {
			if offer := priceOf(obj["offers"]); offer != nil {
				price = &offer.Price
			}
		}

		variants = append(variants, models.Variant{
			SKU:      scalarString(obj["sku"]),
			Color:    scalarString(obj["color"]),
			Size:     size,
			Price:    price,
			ImageURL: variantImage(obj),
		})
	}
	return variants
}

func variantImage(obj map[string]any) *string {
	ref := firstTruthy(obj, "image", "image_url")
	if list, ok := ref.([]any); ok && len(list) > 0 {
		ref = list[0]
	}
	return imageRef(ref)
}

func syntheticVariant(ld map[string]any, sku *string, ts models.TruthSheet) models.Variant {
	v := models.Variant{
		SKU:   sku,
		Color: scalarString(ld["color"]),
	}
	if ts.Price != nil {
		price := ts.Price.Price
		v.Price = &price
	}
	if len(ts.ImageURLs) > 0 {
		first := ts.ImageURLs[0]
		v.ImageURL = &first
	}
	return v
}
