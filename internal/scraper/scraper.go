// Package scraper turns saved or fetched product pages into catalog records.
// Each page runs two lanes concurrently: structured data plus distilled
// content, and image discovery plus quality filtering. Their joined output is
// handed to a resolver for arbitration.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/logging"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
	"github.com/travischeung/generalized-web-scraper/internal/models"
	"github.com/travischeung/generalized-web-scraper/internal/resolver"
)

// Options wires a Scraper. Unset config fields fall back to package defaults.
type Options struct {
	Image    config.ImageConfig
	Scrape   config.ScrapeConfig
	// Distill selects what the content distiller keeps; nil means RecallDistillOptions.
	Distill  *DistillOptions
	Resolver resolver.Resolver
	// BatchConcurrency bounds how many pages RunAll processes at once; 0 is unbounded.
	BatchConcurrency int
	// BaseURL resolves relative image references on local files.
	BaseURL    string
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	Metrics    *metrics.Collector
}

// Scraper orchestrates the per-page pipeline
type Scraper struct {
	httpClient *HTTPClient
	distiller  *ContentDistiller
	images     *ImageExtractor
	filter     *ImageFilter
	resolver   resolver.Resolver
	imageCfg   config.ImageConfig
	batchLimit int
	baseURL    string
	logger     logrus.FieldLogger
	metrics    *metrics.Collector
}

func NewScraper(opts Options) *Scraper {
	opts.Image = opts.Image.WithDefaults()
	opts.Scrape = opts.Scrape.WithDefaults()
	distill := RecallDistillOptions()
	if opts.Distill != nil {
		distill = *opts.Distill
	}
	logger := logging.OrDiscard(opts.Logger)

	httpClient := NewHTTPClient(opts.Scrape)
	if opts.HTTPClient != nil {
		httpClient = newHTTPClient(opts.HTTPClient, opts.Scrape)
	}

	return &Scraper{
		httpClient: httpClient,
		distiller:  NewContentDistiller(distill),
		images:     NewImageExtractor(),
		filter:     NewImageFilter(opts.Image, httpClient, logger, opts.Metrics),
		resolver:   opts.Resolver,
		imageCfg:   opts.Image,
		batchLimit: opts.BatchConcurrency,
		baseURL:    opts.BaseURL,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// HybridContext runs the structured-data lane: metadata, truth sheet and distilled content
func (s *Scraper) HybridContext(page, baseURL string) models.HybridContext {
	bag := ExtractMetadata(page)
	jsonLD := bag.JSONLD
	if jsonLD == nil {
		jsonLD = []any{}
	}
	return models.HybridContext{
		TruthSheet:    BuildTruthSheet(bag, s.imageCfg.Blocklist),
		MDContent:     s.distiller.Distill(page, baseURL),
		ProductJSONLD: jsonLD,
	}
}

// FilteredMedia runs the image lane: collect, drop non-product paths, collapse
// resolution variants, then check dimensions
func (s *Scraper) FilteredMedia(ctx context.Context, page, baseURL string) models.MediaResult {
	found := s.images.CollectCandidates(page, baseURL)
	candidates := DedupeResolutions(DropNonProductURLs(found.URLs, s.imageCfg.Blocklist))

	hints := make([]models.ImageHint, 0, len(candidates))
	for _, u := range candidates {
		hints = append(hints, models.ImageHint{URL: u, Hint: found.Hints[u]})
	}

	return models.MediaResult{
		Images:            s.filter.Filter(ctx, candidates),
		Candidates:        candidates,
		CandidateMetadata: hints,
	}
}

// BuildContext runs both lanes concurrently and joins them. A panic in either
// lane is returned as a *models.ContentExtractionError.
func (s *Scraper) BuildContext(ctx context.Context, page Page) (models.PipelineContext, error) {
	var (
		hybrid models.HybridContext
		media  models.MediaResult
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		return contain("structured data", func() { hybrid = s.HybridContext(page.HTML, page.BaseURL) })
	})
	g.Go(func() error {
		mediaCtx, cancel := context.WithTimeout(ctx, MediaTimeout)
		defer cancel()
		return contain("media", func() { media = s.FilteredMedia(mediaCtx, page.HTML, page.BaseURL) })
	})
	if err := g.Wait(); err != nil {
		return models.PipelineContext{}, err
	}

	return models.PipelineContext{
		TruthSheet:      hybrid.TruthSheet,
		MDContent:       hybrid.MDContent,
		ProductJSONLD:   hybrid.ProductJSONLD,
		VerifiedImages:  media.Images,
		ImageCandidates: media.Candidates,
		ImageMetadata:   media.CandidateMetadata,
	}, nil
}

// Process runs the full pipeline for one page source. Only a page that cannot
// be read returns an error; every later failure yields models.DefaultProduct.
func (s *Scraper) Process(ctx context.Context, source string) (models.Product, error) {
	page, err := s.LoadPage(ctx, source, s.baseURL)
	if err != nil {
		return models.Product{}, err
	}
	return s.ProcessPage(ctx, page), nil
}

// ProcessPage runs extraction and arbitration on already loaded markup
func (s *Scraper) ProcessPage(ctx context.Context, page Page) models.Product {
	log := s.logger.WithField("source", page.Source)

	pc, err := s.BuildContext(ctx, page)
	if err != nil {
		log.WithFields(logrus.Fields{"stage": "context", "error": err}).Warn("pipeline context failed, using default product")
		s.metrics.PageProcessed(metrics.OutcomeDefault)
		return models.DefaultProduct()
	}

	product, err := s.resolve(ctx, pc)
	if err != nil {
		stage := "resolve"
		var schemaErr *models.SchemaValidationError
		if errors.As(err, &schemaErr) {
			stage = "validate"
		}
		log.WithFields(logrus.Fields{"stage": stage, "error": err}).Warn("arbitration failed, using default product")
		s.metrics.PageProcessed(metrics.OutcomeDefault)
		return models.DefaultProduct()
	}

	product.ImageURLs = DropNonProductURLs(product.ImageURLs, s.imageCfg.Blocklist)
	if len(product.ImageURLs) == 0 && len(pc.TruthSheet.ImageURLs) > 0 {
		product.ImageURLs = []string{pc.TruthSheet.ImageURLs[0]}
	}
	if product.KeyFeatures == nil {
		product.KeyFeatures = []string{}
	}
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}

	s.metrics.PageProcessed(metrics.OutcomeOK)
	log.WithField("name", deref(product.Name)).Info("page resolved")
	return product
}

func (s *Scraper) resolve(ctx context.Context, pc models.PipelineContext) (product models.Product, err error) {
	if s.resolver == nil {
		return models.Product{}, &models.ResolveError{Provider: "none", Err: errors.New("no resolver configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, ResolveTimeout)
	defer cancel()

	start := time.Now()
	defer func() { s.metrics.ObserveResolve(time.Since(start)) }()

	if panicErr := contain("resolve", func() { product, err = s.resolver.Resolve(ctx, pc) }); panicErr != nil {
		return models.Product{}, panicErr
	}
	return product, err
}

// RunAll processes every source and returns one result per source, in input
// order. A failing page never affects its siblings.
func (s *Scraper) RunAll(ctx context.Context, sources []string) []models.Result {
	results := make([]models.Result, len(sources))

	g := new(errgroup.Group)
	if s.batchLimit > 0 {
		g.SetLimit(s.batchLimit)
	}

	for i, source := range sources {
		g.Go(func() error {
			results[i] = s.runOne(ctx, source)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Scraper) runOne(ctx context.Context, source string) (res models.Result) {
	res.Source = source

	var (
		product models.Product
		err     error
	)
	if panicErr := contain("page", func() { product, err = s.Process(ctx, source) }); panicErr != nil {
		err = panicErr
	}
	if err != nil {
		s.metrics.PageProcessed(metrics.OutcomeFailed)
		s.logger.WithFields(logrus.Fields{"source": source, "error": err}).Error("page failed")
		res.Err = err
		return res
	}

	res.Product = &product
	return res
}

// contain runs fn and converts a panic into an error
func contain(stage string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &models.ContentExtractionError{Step: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	fn()
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
