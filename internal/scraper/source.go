package scraper

import (
	"context"
	"os"
	"strings"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// Page is raw markup plus the base URL its relative references resolve against.
type Page struct {
	Source  string
	HTML    string
	BaseURL string
}

// IsURLSource reports whether a page source should be fetched rather than read from disk.
func IsURLSource(source string) bool {
	return hasHTTPScheme(strings.TrimSpace(source))
}

// LoadPage reads a local HTML file or fetches an http(s) URL. Any failure is a
// *models.PageReadError. baseURL overrides the base used for relative image
// references; for URL sources it defaults to the URL itself.
func (s *Scraper) LoadPage(ctx context.Context, source, baseURL string) (Page, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Page{}, &models.PageReadError{Source: source, Err: models.ErrEmptySource}
	}

	if IsURLSource(source) {
		page, err := s.httpClient.FetchHTML(ctx, source)
		if err != nil {
			return Page{}, &models.PageReadError{Source: source, Err: err}
		}
		if baseURL == "" {
			baseURL = source
		}
		return Page{Source: source, HTML: page, BaseURL: baseURL}, nil
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return Page{}, &models.PageReadError{Source: source, Err: err}
	}
	return Page{
		Source:  source,
		HTML:    strings.ToValidUTF8(string(raw), "\uFFFD"),
		BaseURL: baseURL,
	}, nil
}
