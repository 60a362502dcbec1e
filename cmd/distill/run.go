package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/travischeung/generalized-web-scraper/internal/export"
	"github.com/travischeung/generalized-web-scraper/internal/models"
	"github.com/travischeung/generalized-web-scraper/internal/scraper"
)

var (
	flagDir         string
	flagExport      string
	flagBaseURL     string
	flagConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run [sources...]",
	Short: "Process product pages and optionally export the results",
	Long: `Run processes each source (a local HTML file or an http(s) URL) through the
pipeline. With no sources, every *.html file under --dir is processed.

Examples:
  distill run
  distill run --dir data --export output/products.json
  distill run https://shop.example.com/p/123 --export output/products.json
  distill run saved/page.html --base-url https://shop.example.com/p/123`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagDir, "dir", "data", "Directory scanned for *.html when no sources are given")
	runCmd.Flags().StringVar(&flagExport, "export", "", "Write successful products to this JSON file with an id per product")
	runCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Base URL for relative image links in local files")
	runCmd.Flags().IntVar(&flagConcurrency, "concurrency", -1, "Pages processed at once (0 = unbounded, default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	sources, err := collectSources(args, flagDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		logger.WithField("dir", flagDir).Warn("No pages to process")
		return nil
	}

	concurrency := cfg.Batch.Concurrency
	if flagConcurrency >= 0 {
		concurrency = flagConcurrency
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newPipeline(cfg, flagBaseURL, concurrency, logger, nil)
	results := processAll(ctx, s, sources, logger)

	if flagExport == "" {
		return nil
	}
	n, err := export.Write(flagExport, results)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %d products to %s\n", n, flagExport)
	return nil
}

// processAll runs the batch and logs one line per page.
func processAll(ctx context.Context, s *scraper.Scraper, sources []string, logger logrus.FieldLogger) []models.Result {
	logger.WithField("pages", len(sources)).Info("Processing pages")

	results := s.RunAll(ctx, sources)

	var failed int
	for _, r := range results {
		if !r.OK() {
			failed++
			logger.WithError(r.Err).WithField("source", r.Source).Error("Page failed")
			continue
		}
		name := "<none>"
		if r.Product.Name != nil {
			name = *r.Product.Name
		}
		logger.WithFields(logrus.Fields{"source": r.Source, "name": name}).Info("Page processed")
	}

	if failed > 0 {
		logger.WithFields(logrus.Fields{"failed": failed, "total": len(results)}).Warn("Some pages failed")
	}
	return results
}
