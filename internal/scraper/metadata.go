package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// ExtractMetadata harvests JSON-LD, embedded JSON, meta tags and product-looking
// data-* attributes in one pass. Malformed blocks are skipped; empty or broken
// markup yields an empty bag.
func ExtractMetadata(page string) models.MetadataBag {
	bag := models.NewMetadataBag()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return bag
	}
	collectMetadata(doc, &bag)
	return bag
}

func collectMetadata(doc *goquery.Document, bag *models.MetadataBag) {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		switch node.Data {
		case "script":
			collectScript(s, bag)
		case "meta":
			collectMeta(s, bag)
		}
		collectDataAttributes(node, bag)
	})
}

func collectScript(s *goquery.Selection, bag *models.MetadataBag) {
	scriptType, _ := s.Attr("type")
	scriptType = strings.ToLower(strings.TrimSpace(scriptType))
	if scriptType != ScriptTypeJSONLD && scriptType != ScriptTypeJSON {
		return
	}

	payload, err := decodeJSON(s.Text())
	if err != nil {
		return
	}

	if scriptType == ScriptTypeJSONLD {
		if list, ok := payload.([]any); ok {
			bag.JSONLD = append(bag.JSONLD, list...)
		} else {
			bag.JSONLD = append(bag.JSONLD, payload)
		}
		return
	}

	if obj, ok := payload.(map[string]any); ok {
		bag.EmbeddedJSON = append(bag.EmbeddedJSON, obj)
	}
}

func collectMeta(s *goquery.Selection, bag *models.MetadataBag) {
	key, _ := s.Attr("property")
	if key == "" {
		key, _ = s.Attr("name")
	}
	content, hasContent := s.Attr("content")
	if key == "" || !hasContent {
		return
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if _, seen := bag.Meta[key]; seen {
		return
	}
	bag.Meta[key] = strings.TrimSpace(content)
}

func collectDataAttributes(node *html.Node, bag *models.MetadataBag) {
	for _, attr := range node.Attr {
		name := strings.ToLower(attr.Key)
		if !strings.HasPrefix(name, "data-") {
			continue
		}
		if !ContainsAny(name, productAttributeMarkers) {
			continue
		}
		bag.ProductAttributes[attr.Key] = attr.Val
	}
}
