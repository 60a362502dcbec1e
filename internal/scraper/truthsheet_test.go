package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

func truthSheetFor(t *testing.T, page string) models.TruthSheet {
	t.Helper()
	return BuildTruthSheet(ExtractMetadata(page), nil)
}

func ldScript(body string) string {
	return `<script type="application/ld+json">` + body + `</script>`
}

func TestBuildTruthSheetDrill(t *testing.T) {
	ts := truthSheetFor(t, ldScript(`{"@type":"Product","name":"Drill","offers":{"price":"129.00","priceCurrency":"USD"},"sku":"2385458"}`))

	require.NotNil(t, ts.Name)
	assert.Equal(t, "Drill", *ts.Name)

	require.NotNil(t, ts.Price)
	assert.Equal(t, 129.0, ts.Price.Price)
	assert.Equal(t, "USD", ts.Price.Currency)
	assert.Nil(t, ts.Price.CompareAtPrice)

	require.Len(t, ts.Variants, 1)
	v := ts.Variants[0]
	require.NotNil(t, v.SKU)
	assert.Equal(t, "2385458", *v.SKU)
	require.NotNil(t, v.Price)
	assert.Equal(t, 129.0, *v.Price)
	assert.Nil(t, v.Color)
	assert.Nil(t, v.Size)
	assert.Nil(t, v.ImageURL)
}

func TestBuildTruthSheetProductGroupFallsBackToOGImage(t *testing.T) {
	page := ldScript(`{"@type":"ProductGroup","name":"Air Max","brand":{"name":"Nike"},"image":"https://cdn.example.com/group.jpg"}`) +
		`<meta property="og:image" content="https://cdn.example.com/og.jpg">`

	ts := truthSheetFor(t, page)

	assert.Nil(t, ts.Name)
	assert.Nil(t, ts.Brand)
	assert.Nil(t, ts.Price)
	assert.Equal(t, []string{"https://cdn.example.com/og.jpg"}, ts.ImageURLs)
}

func TestBuildTruthSheetAllAbsent(t *testing.T) {
	ts := truthSheetFor(t, `<html><body><p>Nothing structured here.</p></body></html>`)
	assert.Equal(t, models.NewTruthSheet(), ts)
}

func TestBuildTruthSheetFields(t *testing.T) {
	page := ldScript(`[
		{"@type":"BreadcrumbList"},
		{"@type":["Product","Thing"],
		 "name":"  Miller Trousers ",
		 "description":"Cotton lyocell trousers",
		 "category":"Pants",
		 "brand":"  Everlane ",
		 "offers":[{"price":"call us"},{"price":98,"priceCurrency":"EUR","highPrice":"120"}],
		 "positiveNotes":[" Breathable ",{"name":"Soft hand"},{"@type":"ListItem"},""],
		 "image":[{"url":"https://cdn.example.com/1.jpg"},"https://cdn.example.com/2.jpg","https://cdn.example.com/1.jpg","https://cdn.example.com/promo/sale.jpg"],
		 "video":[{"@type":"VideoObject","contentUrl":"https://cdn.example.com/v.mp4"}],
		 "color":" Navy ",
		 "hasVariant":[
			{"sku":"T-30","color":"Navy","width":"30","offers":{"price":"98.00"},"image":{"contentUrl":"https://cdn.example.com/30.jpg"}},
			{"sku":31,"size":"31","price":99.5,"image_url":"https://cdn.example.com/31.jpg"}
		 ]}
	]`)

	ts := truthSheetFor(t, page)

	require.NotNil(t, ts.Name)
	assert.Equal(t, "Miller Trousers", *ts.Name)
	assert.Equal(t, "Cotton lyocell trousers", *ts.Description)
	assert.Equal(t, "Pants", *ts.Category)
	assert.Equal(t, "Everlane", *ts.Brand)

	require.NotNil(t, ts.Price)
	assert.Equal(t, 98.0, ts.Price.Price)
	assert.Equal(t, "EUR", ts.Price.Currency)
	require.NotNil(t, ts.Price.CompareAtPrice)
	assert.Equal(t, 120.0, *ts.Price.CompareAtPrice)

	assert.Equal(t, []string{"Breathable", "Soft hand"}, ts.KeyFeatures)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"}, ts.ImageURLs)
	assert.Equal(t, "https://cdn.example.com/v.mp4", *ts.VideoURL)
	assert.Equal(t, []string{"Navy"}, ts.Colors)

	require.Len(t, ts.Variants, 2)
	first := ts.Variants[0]
	assert.Equal(t, "T-30", *first.SKU)
	assert.Equal(t, "30", *first.Size)
	assert.Equal(t, 98.0, *first.Price)
	assert.Equal(t, "https://cdn.example.com/30.jpg", *first.ImageURL)

	second := ts.Variants[1]
	assert.Equal(t, "31", *second.SKU)
	assert.Equal(t, "31", *second.Size)
	assert.Equal(t, 99.5, *second.Price)
	assert.Equal(t, "https://cdn.example.com/31.jpg", *second.ImageURL)
	assert.Nil(t, second.Color)
}

func TestBuildTruthSheetAdditionalPropertyFallback(t *testing.T) {
	ts := truthSheetFor(t, ldScript(`{"@type":"Product","additionalProperty":[
		{"name":"Voltage","value":"20V"},
		{"name":"Brushless"},
		{"value":""}
	]}`))

	assert.Equal(t, []string{"20V", "Brushless"}, ts.KeyFeatures)
}

func TestBuildTruthSheetNonNumericPriceIsDropped(t *testing.T) {
	ts := truthSheetFor(t, ldScript(`{"@type":"Product","name":"Lamp","offers":{"price":"See in store"}}`))

	assert.Nil(t, ts.Price)
	assert.Equal(t, "Lamp", *ts.Name)
}

func TestBuildTruthSheetBlocklistAppliesEverywhere(t *testing.T) {
	page := ldScript(`{"@type":"Product","image":"https://cdn.example.com/email_sign_up/banner.jpg"}`) +
		`<meta property="og:image" content="https://cdn.example.com/shoe.jpg">` +
		`<script type="application/json">{"props":{"pageProps":{"variants":[{"image":"https://cdn.example.com/EMAILprompt.jpg"},{"image":"https://cdn.example.com/side.jpg"}]}}}</script>`

	ts := truthSheetFor(t, page)

	assert.Equal(t, []string{"https://cdn.example.com/shoe.jpg", "https://cdn.example.com/side.jpg"}, ts.ImageURLs)
}

// Embedded data fills colors and variants only when JSON-LD left them empty,
// but its images are always unioned in.
func TestBuildTruthSheetEmbeddedMergeAsymmetry(t *testing.T) {
	embedded := `<script type="application/json">{"props":{"pageProps":{"colorwayImages":[
		{"colorDescription":"Blue","squarishImg":"https://cdn.example.com/blue.jpg","sku":"B1"}
	]}}}</script>`

	t.Run("json-ld wins for colors and variants", func(t *testing.T) {
		ts := truthSheetFor(t, ldScript(`{"@type":"Product","sku":"R1","color":"Red","image":"https://cdn.example.com/red.jpg"}`)+embedded)

		assert.Equal(t, []string{"Red"}, ts.Colors)
		require.Len(t, ts.Variants, 1)
		assert.Equal(t, "R1", *ts.Variants[0].SKU)
		assert.Equal(t, []string{"https://cdn.example.com/red.jpg", "https://cdn.example.com/blue.jpg"}, ts.ImageURLs)
	})

	t.Run("embedded fills empty fields", func(t *testing.T) {
		ts := truthSheetFor(t, ldScript(`{"@type":"Product","name":"Runner"}`)+embedded)

		assert.Equal(t, []string{"Blue"}, ts.Colors)
		require.Len(t, ts.Variants, 1)
		assert.Equal(t, "B1", *ts.Variants[0].SKU)
		assert.Equal(t, []string{"https://cdn.example.com/blue.jpg"}, ts.ImageURLs)
	})
}

func TestBuildTruthSheetIsIdempotent(t *testing.T) {
	page := ldScript(`{"@type":"Product","name":"Drill","image":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"]}`) +
		`<script type="application/json">{"page":{"zeta":{"color":"Z"},"alpha":{"image":"https://cdn.example.com/c.jpg"}}}</script>`

	first := truthSheetFor(t, page)
	second := truthSheetFor(t, page)

	assert.Equal(t, first, second)
}

func TestSelectProductJSONLD(t *testing.T) {
	entries := []any{
		"not an object",
		map[string]any{"@type": "WebPage"},
		map[string]any{"@type": []any{"Thing", "Product"}, "name": "first"},
		map[string]any{"@type": "Product", "name": "second"},
	}

	got := SelectProductJSONLD(entries)
	require.NotNil(t, got)
	assert.Equal(t, "first", got["name"])

	assert.Nil(t, SelectProductJSONLD([]any{map[string]any{"@type": "ProductGroup"}}))
}
