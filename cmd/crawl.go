package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crawlcore/webcrawler/internal/config"
	"github.com/crawlcore/webcrawler/internal/engine"
	"github.com/crawlcore/webcrawler/internal/httpapi"
	"github.com/crawlcore/webcrawler/internal/linkextractor"
	"github.com/crawlcore/webcrawler/internal/metrics"
	"github.com/crawlcore/webcrawler/internal/pagerequest"
	"github.com/crawlcore/webcrawler/internal/scheduler"
	"github.com/crawlcore/webcrawler/internal/workerpool"
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Starts a crawl rooted at the given seed URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, err := metrics.NewSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpapi.NewServer(metrics.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("status server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("status server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	decisions := engine.NewDecisionMaker(nil)
	sched := scheduler.New()
	requester := pagerequest.New(nil, cfg.Crawler.UserAgentString, logger.Named("pagerequest"))
	pool := workerpool.New(cfg.Crawler.MaxConcurrentThreads, logger.Named("workerpool"))
	extractor := linkextractor.New()
	hub := engine.NewHub(engine.HubConfig{Logger: logger.Named("events")}, engine.NewLogSink(logger.Named("events")), sink)
	defer func() { _ = hub.Close(context.Background()) }()

	eng := engine.New(decisions, sched, requester, pool, extractor, hub, logger.Named("engine"))

	result, err := eng.Crawl(ctx, args[0], cfg.Crawler.ToEngineConfig())
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	logger.Info("crawl finished", zap.String("root_uri", result.RootURI), zap.Duration("elapsed", result.Elapsed))
	return nil
}
