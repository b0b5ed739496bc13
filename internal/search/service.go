// Package search ties the relevance rules, the upstream fetcher and the
// result cache into a single request/response operation.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/cine-khobor/internal/cache"
	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/internal/logger"
	"github.com/Adda-Baaj/cine-khobor/internal/metrics"
	"github.com/Adda-Baaj/cine-khobor/internal/relevance"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
	"github.com/Adda-Baaj/cine-khobor/pkg/publishers"
)

// Enricher backfills article metadata after filtering.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Result is the outcome of one search.
type Result struct {
	Query        string           `json:"query"`
	BoostedQuery string           `json:"boosted_query"`
	Articles     []domain.Article `json:"articles"`
	FromCache    bool             `json:"from_cache"`
	FetchedAt    time.Time        `json:"fetched_at"`
}

// Options configures a Service. Fetcher and Cache are required.
type Options struct {
	Fetcher    providers.Fetcher
	Cache      cache.Store
	TTL        time.Duration
	PageSize   int
	Enricher   Enricher
	Dispatcher *publishers.Dispatcher
	Logger     logger.Logger
	Now        func() time.Time
}

// Service runs searches.
type Service struct {
	fetcher    providers.Fetcher
	cache      cache.Store
	ttl        time.Duration
	pageSize   int
	enricher   Enricher
	dispatcher *publishers.Dispatcher
	log        logger.Logger
	now        func() time.Time
}

// NewService validates opts and fills defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("search: fetcher is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("search: cache is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = providers.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		fetcher:    opts.Fetcher,
		cache:      opts.Cache,
		ttl:        opts.TTL,
		pageSize:   opts.PageSize,
		enricher:   opts.Enricher,
		dispatcher: opts.Dispatcher,
		log:        opts.Logger,
		now:        opts.Now,
	}, nil
}

// Search returns the relevant articles for query, served from the cache
// while the entry for the boosted query is fresh.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	return s.run(ctx, query, true)
}

// Refresh skips the cache lookup and overwrites the entry on success.
func (s *Service) Refresh(ctx context.Context, query string) (Result, error) {
	return s.run(ctx, query, false)
}

func (s *Service) run(ctx context.Context, query string, useCache bool) (Result, error) {
	query = strings.TrimSpace(query)
	boosted := relevance.BuildQuery(query)
	res := Result{Query: query, BoostedQuery: boosted, Articles: []domain.Article{}}

	if useCache {
		entry, ok, err := s.cache.Get(boosted)
		if err != nil {
			// A broken cache degrades to a live fetch.
			s.log.WarnObj("cache read failed", "search_cache_error", map[string]any{
				"query": query,
				"error": err,
			})
		} else if ok {
			s.log.DebugObj("serving cached result", "search_cache_hit", map[string]any{
				"query":    query,
				"articles": len(entry.Articles),
			})
			metrics.RecordSearch(metrics.OutcomeCacheHit)
			res.Articles = entry.Articles
			res.FromCache = true
			res.FetchedAt = entry.StoredAt
			return res, nil
		}
	}

	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, providers.Search{Query: boosted, PageSize: s.pageSize})
	metrics.RecordFetch(s.fetcher.ID(), time.Since(start).Seconds())
	if err != nil {
		metrics.RecordSearch(metrics.OutcomeError)
		s.log.ErrorObj("search fetch failed", "search_fetch_error", map[string]any{
			"query":    query,
			"provider": s.fetcher.ID(),
			"error":    err,
		})
		return res, fmt.Errorf("search %q: %w", query, err)
	}

	kept := relevance.FilterArticles(raw)
	reasons := tally(raw)
	metrics.RecordSearch(metrics.OutcomeFetched)
	metrics.RecordVerdicts(reasons)
	s.log.InfoObj("filtered search results", "search_filtered", map[string]any{
		"query":   query,
		"fetched": len(raw),
		"kept":    len(kept),
		"reasons": reasons,
	})

	if s.enricher != nil && len(kept) > 0 {
		kept = s.enricher.Enrich(ctx, kept)
	}

	res.Articles = kept
	res.FetchedAt = s.now()

	if _, err := s.cache.Put(boosted, kept, s.ttl); err != nil {
		s.log.WarnObj("cache write failed", "search_cache_error", map[string]any{
			"query": query,
			"error": err,
		})
	}

	if s.dispatcher.Len() > 0 {
		evt := publishers.NewEvent(query, boosted, res.FetchedAt, kept)
		if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
			s.log.ErrorObj("publishing search result failed", "search_publish_error", map[string]any{
				"query": query,
				"error": err,
			})
		}
	}

	return res, nil
}

// tally counts verdict reasons across every fetched record.
func tally(records []domain.Article) map[string]int {
	out := make(map[string]int, 4)
	for _, a := range records {
		out[string(relevance.Classify(a).Reason)]++
	}
	return out
}

// PurgeCache drops expired cache entries.
func (s *Service) PurgeCache() (int, error) {
	n, err := s.cache.Purge()
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	s.log.InfoObj("purged expired cache entries", "cache_purged", map[string]any{"removed": n})
	return n, nil
}
