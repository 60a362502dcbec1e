package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/logging"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
	"github.com/travischeung/generalized-web-scraper/internal/resolver"
	"github.com/travischeung/generalized-web-scraper/internal/scraper"
)

const serviceName = "product-distiller"

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Distill product pages into catalog records",
	Long: `distill turns saved or live product pages into clean catalog records.

Each page is mined for structured data and content while its images are
collected and size-checked; an arbitration model then picks the final
name, brand, price, description, features and images.

Usage:
  distill run [sources...] [flags]
  distill serve [flags]`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides DISTILL_LOG_LEVEL)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return cfg, logging.New(serviceName, level), nil
}

// newPipeline wires the scraper to the configured arbitration model.
func newPipeline(cfg *config.Config, baseURL string, concurrency int, logger logrus.FieldLogger, collector *metrics.Collector) *scraper.Scraper {
	return scraper.NewScraper(scraper.Options{
		Image:            cfg.Image,
		Scrape:           cfg.Scrape,
		Resolver:         resolver.NewLLMResolver(cfg.Resolver, logger),
		BatchConcurrency: concurrency,
		BaseURL:          baseURL,
		Logger:           logger,
		Metrics:          collector,
	})
}
