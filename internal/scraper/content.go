package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// ContentDistiller condenses a page to Markdown: a reader-mode article first,
// the page's main container when that comes out thin and recall is favored.
type ContentDistiller struct {
	opts      DistillOptions
	sanitizer *bluemonday.Policy
	converter *converter.Converter
}

func NewContentDistiller(opts DistillOptions) *ContentDistiller {
	plugins := []converter.Plugin{
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	}
	if opts.IncludeTables {
		plugins = append(plugins, table.NewTablePlugin())
	}

	return &ContentDistiller{
		opts:      opts,
		sanitizer: bluemonday.UGCPolicy(),
		converter: converter.NewConverter(converter.WithPlugins(plugins...)),
	}
}

// Distill returns the page's primary content as Markdown, or "" when there is
// none. Extraction failures are treated as no content.
func (d *ContentDistiller) Distill(page, baseURL string) (md string) {
	if strings.TrimSpace(page) == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			md = ""
		}
	}()

	primary := d.fromReadability(page, baseURL)
	if !d.opts.FavorRecall || !isThin(primary) {
		return primary
	}

	if fallback := d.fromContainer(page, baseURL); len(fallback) > len(primary) {
		return fallback
	}
	return primary
}

func (d *ContentDistiller) fromReadability(page, baseURL string) string {
	pageURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		pageURL = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return ""
	}

	md, err := d.toMarkdown(article.Content, baseURL)
	if err != nil {
		return ""
	}
	return md
}

func (d *ContentDistiller) fromContainer(page, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	container, err := goquery.OuterHtml(FindContentContainer(doc))
	if err != nil {
		return ""
	}

	md, err := d.toMarkdown(container, baseURL)
	if err != nil {
		return ""
	}
	return md
}

// toMarkdown sanitizes a fragment, applies the option pruning and converts it
func (d *ContentDistiller) toMarkdown(fragment, baseURL string) (string, error) {
	clean := d.sanitizer.Sanitize(fragment)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return "", fmt.Errorf("parsing fragment: %w", err)
	}
	body := doc.Find("body")
	pruneForOptions(body, d.opts)

	pruned, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("rendering fragment: %w", err)
	}

	var md string
	if baseURL != "" {
		md, err = d.converter.ConvertString(pruned, converter.WithDomain(baseURL))
	} else {
		md, err = d.converter.ConvertString(pruned)
	}
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return CleanWhitespace(md), nil
}

func isThin(md string) bool {
	words, _, _ := CalculateContentMetrics(md)
	return words < MinArticleWords || ScoreContentQuality(md).Score < MinArticleQuality
}
