package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

const (
	// ProviderTypeNewsAPI identifies the NewsAPI "everything" endpoint.
	ProviderTypeNewsAPI = "newsapi"

	DefaultNewsAPIEndpoint = "https://newsapi.org/v2/everything"
	DefaultLanguage        = "en"
	DefaultSortBy          = "publishedAt"
	DefaultPageSize        = 30

	statusOK = "ok"
)

// NewsAPIConfig holds the fixed request parameters for NewsAPI.
type NewsAPIConfig struct {
	Endpoint string
	APIKey   string
	Language string
	SortBy   string
	PageSize int
}

// newsAPIFetcher implements Fetcher for NewsAPI.
type newsAPIFetcher struct {
	client HTTPClient
	cfg    NewsAPIConfig
}

// NewNewsAPIFetcher builds a Fetcher for the NewsAPI everything endpoint.
func NewNewsAPIFetcher(client HTTPClient, cfg NewsAPIConfig) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsAPIFetcher{client: client, cfg: sanitizeNewsAPIConfig(cfg)}
}

func sanitizeNewsAPIConfig(cfg NewsAPIConfig) NewsAPIConfig {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultNewsAPIEndpoint
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Language = strings.TrimSpace(cfg.Language); cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.SortBy = strings.TrimSpace(cfg.SortBy); cfg.SortBy == "" {
		cfg.SortBy = DefaultSortBy
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return cfg
}

// ID returns the provider type.
func (f *newsAPIFetcher) ID() string {
	return ProviderTypeNewsAPI
}

// newsAPIResponse is the JSON body of /v2/everything, for success and error alike.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch runs a single search. The body is decoded whatever the HTTP status
// because NewsAPI reports failures as {"status":"error",...}.
func (f *newsAPIFetcher) Fetch(ctx context.Context, s Search) ([]domain.Article, error) {
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = f.cfg.PageSize
	}

	params := map[string]string{
		"q":        s.Query,
		"language": f.cfg.Language,
		"sortBy":   f.cfg.SortBy,
		"pageSize": strconv.Itoa(pageSize),
		"apiKey":   f.cfg.APIKey,
	}

	resp, err := f.client.Get(ctx, f.cfg.Endpoint, params, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch newsapi: %w", err)
	}

	body := resp.Body()
	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response (status %d body: %s): %w", resp.StatusCode(), responseSnippet(body), err)
	}

	if payload.Status != statusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Code:       payload.Code,
			Message:    payload.Message,
		}
	}

	return buildArticlesFromNewsAPI(payload.Articles), nil
}

// buildArticlesFromNewsAPI maps API records into domain articles in order.
func buildArticlesFromNewsAPI(records []newsAPIArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(records))
	for _, r := range records {
		u := strings.TrimSpace(r.URL)
		id := ""
		if u != "" {
			id = hashURL(u)
		}
		articles = append(articles, domain.Article{
			ID:          id,
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			URL:         u,
			SourceName:  strings.TrimSpace(r.Source.Name),
			PublishedAt: strings.TrimSpace(r.PublishedAt),
			ImageURL:    strings.TrimSpace(r.URLToImage),
		})
	}
	return articles
}
