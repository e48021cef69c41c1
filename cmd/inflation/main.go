package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"inflation/internal/backend"
	"inflation/internal/cache"
	"inflation/internal/cli"
	"inflation/internal/config"
	"inflation/internal/dataset"
	apphttp "inflation/internal/http"
	applog "inflation/internal/log"
	"inflation/internal/taxonomy"
	"inflation/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	categories, err := taxonomy.Load(cfg.CategoriesFile)
	if err != nil {
		return err
	}

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).CreateSource(ctx, sourceCfg)
	if err != nil {
		return err
	}
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Source cleanup failed", applog.FieldError, err)
			}
		}
	}()

	// an empty or unreadable dataset is fatal before serving
	holder, err := dataset.NewHolder(ctx, res.Source, logger)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, holder, apphttp.Options{
		Categories:        categories,
		CurrencySymbol:    cfg.CurrencySymbol,
		HeadlineYears:     cfg.HeadlineYears,
		DefaultYearOffset: cfg.DefaultYearOffset,
		CacheSize:         cfg.CacheSize,
		CacheTTL:          cfg.CacheTTL,
		Logger:            logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(srv.ResultsCache())
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting inflation server",
			"port", cfg.Port,
			applog.FieldSource, res.Source.Name(),
			applog.FieldVersion, holder.Current().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if res.Updates != nil {
		reloadWorker := worker.NewReloadWorker(holder, logger)
		g.Go(func() error {
			err := res.Updates.ConsumeDatasetUpdates(gctx, reloadWorker.HandleDatasetUpdated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if cfg.ReloadSchedule != "" {
		scheduler, err := dataset.NewScheduler(cfg.ReloadSchedule, holder, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	return g.Wait()
}
