// Package app builds the long-lived components from a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/cine-khobor/internal/cache"
	"github.com/Adda-Baaj/cine-khobor/internal/config"
	"github.com/Adda-Baaj/cine-khobor/internal/crawler"
	"github.com/Adda-Baaj/cine-khobor/internal/logger"
	"github.com/Adda-Baaj/cine-khobor/internal/search"
	"github.com/Adda-Baaj/cine-khobor/pkg/httpclient"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
	"github.com/Adda-Baaj/cine-khobor/pkg/publishers"
)

// App owns the logger, the cache and the search service.
type App struct {
	Config  *config.Config
	Log     logger.Logger
	Search  *search.Service
	closers []func() error
}

// New wires every component. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, syncLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log}
	a.closers = append(a.closers, func() error {
		// stdout/stderr sync errors are harmless on most platforms.
		_ = syncLog()
		return nil
	})

	store, err := openStore(cfg.Cache)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	fetcher := providers.NewNewsAPIFetcher(httpclient.NewRestyClient(cfg.NewsAPI.Timeout), providers.NewsAPIConfig{
		Endpoint: cfg.NewsAPI.Endpoint,
		APIKey:   cfg.NewsAPI.APIKey,
		Language: cfg.NewsAPI.Language,
		SortBy:   cfg.NewsAPI.SortBy,
		PageSize: cfg.NewsAPI.PageSize,
	})

	opts := search.Options{
		Fetcher:  fetcher,
		Cache:    store,
		TTL:      cfg.Cache.TTL,
		PageSize: cfg.NewsAPI.PageSize,
		Logger:   log,
	}
	if cfg.Enrich.Enabled {
		opts.Enricher = crawler.NewScraper(httpclient.NewRestyClient(cfg.Enrich.Timeout), log, cfg.Enrich.Workers)
	}

	if cfg.Publishers.File != "" {
		dispatcher, err := buildDispatcher(ctx, cfg.Publishers.File, log)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts.Dispatcher = dispatcher
	}

	svc, err := search.NewService(opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Search = svc

	log.InfoObj("app initialized", "app_init", map[string]any{
		"cache_path":  cfg.Cache.Path,
		"cache_ttl":   cfg.Cache.TTL.String(),
		"enrich":      cfg.Enrich.Enabled,
		"publishers":  opts.Dispatcher.Len(),
		"page_size":   cfg.NewsAPI.PageSize,
		"newsapi_url": cfg.NewsAPI.Endpoint,
	})
	return a, nil
}

func openStore(cfg config.CacheConfig) (cache.Store, error) {
	if cfg.Path == "" {
		return cache.NewMemory(nil), nil
	}
	store, err := cache.OpenBolt(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

func buildDispatcher(ctx context.Context, path string, log logger.Logger) (*publishers.Dispatcher, error) {
	cfgs, err := publishers.LoadConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubs, err := publishers.DefaultRegistry().BuildAll(ctx, cfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return publishers.NewDispatcher(pubs, log), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
