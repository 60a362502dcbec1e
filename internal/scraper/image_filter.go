package scraper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/logging"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// headerFetcher reads the leading bytes of an image.
type headerFetcher interface {
	FetchImageHeader(ctx context.Context, imageURL string, maxBytes int64) ([]byte, error)
}

// ImageFilter keeps candidates that look like product photography: an allowed
// file type, both sides at least MinSide, and a near-square aspect ratio.
type ImageFilter struct {
	config  config.ImageConfig
	fetcher headerFetcher
	logger  logrus.FieldLogger
	metrics *metrics.Collector
}

func NewImageFilter(cfg config.ImageConfig, fetcher headerFetcher, logger logrus.FieldLogger, m *metrics.Collector) *ImageFilter {
	return &ImageFilter{
		config:  cfg,
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger),
		metrics: m,
	}
}

// Filter checks every candidate concurrently, bounded by MaxConcurrent, and
// returns the accepted URLs in input order.
func (f *ImageFilter) Filter(ctx context.Context, urls []string) []string {
	accepted := make([]bool, len(urls))

	g := new(errgroup.Group)
	limit := f.config.MaxConcurrent
	if limit <= 0 {
		limit = 10
	}
	g.SetLimit(limit)

	for i, u := range urls {
		if !f.isValidImageType(u) {
			continue
		}
		g.Go(func() error {
			accepted[i] = f.check(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(urls))
	for i, ok := range accepted {
		if ok {
			out = append(out, urls[i])
		}
	}
	return out
}

func (f *ImageFilter) check(ctx context.Context, imageURL string) bool {
	width, height, err := f.fetchDimensions(ctx, imageURL)
	if err != nil {
		f.metrics.ImageChecked(metrics.ImageError)
		f.logger.WithFields(logrus.Fields{"url": imageURL, "error": err}).Debug("dropping image candidate")
		return false
	}

	if !f.passesQuality(width, height) {
		f.metrics.ImageChecked(metrics.ImageRejected)
		f.logger.WithFields(logrus.Fields{"url": imageURL, "width": width, "height": height}).Debug("image below quality bar")
		return false
	}

	f.metrics.ImageChecked(metrics.ImageAccepted)
	return true
}

// fetchDimensions decodes only the image header from the first bytes of the file
func (f *ImageFilter) fetchDimensions(ctx context.Context, imageURL string) (int, int, error) {
	if ctx.Err() != nil {
		return 0, 0, &models.ImageFetchError{URL: imageURL, Err: ctx.Err()}
	}
	if f.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.FetchTimeout)
		defer cancel()
	}

	data, err := f.fetcher.FetchImageHeader(ctx, imageURL, f.config.HeaderReadBytes)
	if err != nil {
		return 0, 0, &models.ImageFetchError{URL: imageURL, Err: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, &models.ImageFetchError{URL: imageURL, Err: fmt.Errorf("decoding header: %w", err)}
	}
	return cfg.Width, cfg.Height, nil
}

// passesQuality applies the minimum side and aspect ratio rules
func (f *ImageFilter) passesQuality(width, height int) bool {
	if width < f.config.MinSide || height < f.config.MinSide {
		return false
	}
	aspect := float64(width) / float64(height)
	return aspect >= f.config.MinAspect && aspect <= f.config.MaxAspect
}

// isValidImageType checks the URL path extension against the allow-list
func (f *ImageFilter) isValidImageType(imageURL string) bool {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range f.config.AllowedTypes {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
