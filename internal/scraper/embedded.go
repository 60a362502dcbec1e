package scraper

import (
	"sort"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// MineEmbeddedProduct looks for colorway and variant data in a framework
// page-data payload (Next.js __NEXT_DATA__, Nuxt state and similar).
//
// Known locations are tried first: props.pageProps, props.__N_PAGE_PROPS__ or
// props, then data or data.data. Only when neither yields anything is the whole
// object searched for product keys, bounded in depth and list fan-out.
func MineEmbeddedProduct(data map[string]any) models.EmbeddedProduct {
	m := &productMiner{}

	if props, ok := data["props"].(map[string]any); ok {
		pageProps := props
		if v := firstTruthy(props, "pageProps", "__N_PAGE_PROPS__"); v != nil {
			pageProps, _ = v.(map[string]any)
		}
		if len(pageProps) > 0 {
			m.harvest(pageProps)
		}
	}

	if m.empty() {
		if nuxt, ok := data["data"].(map[string]any); ok {
			if inner, ok := nuxt["data"].(map[string]any); ok {
				nuxt = inner
			}
			m.harvest(nuxt)
		}
	}

	if m.empty() {
		m.search(data, 0)
	}

	return models.EmbeddedProduct{
		Colors:    m.colors,
		Variants:  m.variants,
		ImageURLs: m.images,
	}
}

type productMiner struct {
	colors   []string
	variants []models.Variant
	images   []string
}

func (m *productMiner) empty() bool {
	return len(m.colors) == 0 && len(m.variants) == 0 && len(m.images) == 0
}

func (m *productMiner) addColor(c *string) {
	if c != nil {
		m.colors = appendUnique(m.colors, *c)
	}
}

func (m *productMiner) addImage(u *string) {
	if u != nil {
		m.images = appendUnique(m.images, *u)
	}
}

// harvest reads the first colorway-style list found on obj.
func (m *productMiner) harvest(obj map[string]any) {
	list, ok := firstTruthy(obj, colorwayListKeys...).([]any)
	if !ok {
		return
	}
	m.harvestList(list)
}

func (m *productMiner) harvestList(list []any) {
	for _, item := range list {
		cw, ok := item.(map[string]any)
		if !ok {
			continue
		}

		color := scalarString(firstTruthy(cw, "colorDescription", "color", "name"))
		img := colorwayImage(cw)
		m.addColor(color)
		m.addImage(img)

		sku := scalarString(cw["sku"])
		if sku == nil {
			sku = scalarString(cw["id"])
		}
		m.variants = append(m.variants, models.Variant{
			SKU:      sku,
			Color:    color,
			Price:    floatValue(cw["price"]),
			ImageURL: img,
		})
	}
}

func colorwayImage(cw map[string]any) *string {
	if v := firstTruthy(cw, "squarishImg", "portraitImg"); v != nil {
		return stringValue(v)
	}
	return imageRef(cw["image"])
}

// search walks obj looking for allow-listed keys. Keys are visited in sorted
// order so the result does not depend on map iteration.
func (m *productMiner) search(obj map[string]any, depth int) {
	if depth >= maxEmbeddedDepth {
		return
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := obj[key]
		if productSearchKeys[key] {
			m.visitProductKey(key, val)
		}

		switch t := val.(type) {
		case map[string]any:
			m.search(t, depth+1)
		case []any:
			if len(t) == 0 {
				continue
			}
			if _, isObj := t[0].(map[string]any); !isObj {
				continue
			}
			for i, item := range t {
				if i >= maxEmbeddedFanout {
					break
				}
				if child, ok := item.(map[string]any); ok {
					m.search(child, depth+1)
				}
			}
		}
	}
}

func (m *productMiner) visitProductKey(key string, val any) {
	switch key {
	case "colorwayImages", "variants", "hasVariant", "products":
		if list, ok := val.([]any); ok && len(list) > 0 {
			if _, isObj := list[0].(map[string]any); isObj {
				m.harvestList(list)
			}
		}
	case "color", "colorDescription":
		if truthy(val) {
			m.addColor(scalarString(val))
		}
	case "image", "images":
		for _, ref := range toList(val) {
			m.addImage(imageRef(ref))
		}
	}
}
