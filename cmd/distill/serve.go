package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/travischeung/generalized-web-scraper/internal/export"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
	"github.com/travischeung/generalized-web-scraper/internal/server"
)

var (
	flagServeExport string
	flagServeDir    string
	flagRefresh     bool
	flagPort        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exported products over HTTP",
	Long: `Serve exposes the exported products read-only:

  GET /products        all products ([] before the first export)
  GET /products/:id    one product by zero-based id
  GET /health
  GET /metrics

With --refresh, the *.html files under --dir are processed and exported
before the server starts listening.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagServeExport, "export", "", "Products file to serve (default from config)")
	serveCmd.Flags().StringVar(&flagServeDir, "dir", "data", "Directory processed by --refresh")
	serveCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Process --dir and export before serving")
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if flagServeExport != "" {
		cfg.Server.ExportPath = flagServeExport
	}
	if flagPort != "" {
		cfg.Server.Port = flagPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector("distill")

	if flagRefresh {
		sources, err := collectSources(nil, flagServeDir)
		if err != nil {
			return err
		}
		if len(sources) > 0 {
			s := newPipeline(cfg, "", cfg.Batch.Concurrency, logger, collector)
			n, err := export.Write(cfg.Server.ExportPath, processAll(ctx, s, sources, logger))
			if err != nil {
				return err
			}
			logger.WithField("products", n).Info("Export refreshed")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.SetupRouter(cfg.Server, collector, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
