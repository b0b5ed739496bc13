package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/internal/logger"
	"github.com/Adda-Baaj/cine-khobor/pkg/httpclient"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
)

const (
	maxHTMLBodyBytes      = 1 << 20 // 1 MiB
	DefaultArticleWorkers = 10
)

// Scraper fills gaps in article metadata by reading the article page's meta tags.
type Scraper struct {
	client  httpclient.Client
	log     logger.Logger
	workers int
}

// NewScraper creates a new Scraper with the given HTTP client, logger and worker count.
func NewScraper(client httpclient.Client, log logger.Logger, workers int) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if workers <= 0 {
		workers = DefaultArticleWorkers
	}
	return &Scraper{client: client, log: log, workers: workers}
}

// Enrich returns a copy of articles where a missing image or description is
// filled from the page. Order and length never change; values supplied by
// the API are never overwritten.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles) // default to originals so partial results are returned on cancel

	var pending []int
	for i, a := range articles {
		if needsEnrichment(a) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return out
	}

	workerCount := min(len(pending), s.workers)
	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, articles, jobCh, out, &wg, workerID)
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobCh <- idx:
		case <-ctx.Done():
		}
	}
	close(jobCh)

	wg.Wait()

	return out
}

func needsEnrichment(a domain.Article) bool {
	if strings.TrimSpace(a.URL) == "" {
		return false
	}
	return a.ImageURL == "" || a.Description == ""
}

// articleWorker enriches articles from the job channel. Each worker writes only its own indexes.
func (s *Scraper) articleWorker(
	ctx context.Context,
	articles []domain.Article,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		art := articles[idx]
		enriched, err := s.fetchAndParse(ctx, art, workerID)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"worker_id": workerID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[idx] = enriched
	}
}

// fetchAndParse fetches the article HTML and fills missing fields from its meta tags.
func (s *Scraper) fetchAndParse(ctx context.Context, art domain.Article, workerID int) (domain.Article, error) {
	s.log.DebugObj("scraping article metadata", "scrape_start", map[string]any{
		"worker_id": workerID,
		"url":       art.URL,
	})

	resp, err := s.client.Get(ctx, art.URL, nil, map[string]string{"Accept": "text/html"})
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id": workerID,
			"url":       art.URL,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}

	updated := art
	if updated.Description == "" && meta.Description != "" {
		updated.Description = meta.Description
	}
	if updated.ImageURL == "" && meta.ImageURL != "" {
		updated.ImageURL = resolveURL(meta.ImageURL, art.URL)
	}
	return updated, nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
			extract(`meta[name="twitter:description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Description string
	ImageURL    string
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
