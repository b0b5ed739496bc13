package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/cine-khobor/internal/cache"
	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
	"github.com/Adda-Baaj/cine-khobor/pkg/publishers"
)

type fakeFetcher struct {
	articles []domain.Article
	err      error
	calls    int
	last     providers.Search
}

func (f *fakeFetcher) ID() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, s providers.Search) ([]domain.Article, error) {
	f.calls++
	f.last = s
	return f.articles, f.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingPublisher struct{ events []publishers.Event }

func (p *recordingPublisher) ID() string   { return "rec" }
func (p *recordingPublisher) Type() string { return "rec" }
func (p *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	p.events = append(p.events, evt)
	return nil
}

type markEnricher struct{ calls int }

func (m *markEnricher) Enrich(_ context.Context, in []domain.Article) []domain.Article {
	m.calls++
	out := make([]domain.Article, len(in))
	for i, a := range in {
		a.ImageURL = "https://img/" + a.ID
		out[i] = a
	}
	return out
}

var upstream = []domain.Article{
	{ID: "1", Title: "Dune review", URL: "https://variety.com/dune", SourceName: "Variety"},
	{ID: "2", Title: "Stock market rallies", URL: "https://finance.example.com/x"},
	{ID: "3", Title: "Actor joins new film", URL: "https://blog.example.com/a"},
	{ID: "4", Title: "War film premiere", URL: "https://variety.com/war"},
}

type fixture struct {
	svc     *Service
	fetcher *fakeFetcher
	clock   *fakeClock
	store   *cache.MemoryStore
}

func newFixture(t *testing.T, mutate func(*Options)) fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{articles: upstream}
	store := cache.NewMemory(clock.Now)
	opts := Options{Fetcher: f, Cache: store, TTL: 10 * time.Minute, PageSize: 30, Now: clock.Now}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return fixture{svc: svc, fetcher: f, clock: clock, store: store}
}

func ids(articles []domain.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestSearchFetchesAndFilters(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.svc.Search(context.Background(), "  dune ")
	require.NoError(t, err)

	assert.Equal(t, "dune", res.Query)
	assert.Equal(t, `"dune" `+"(film OR movie OR cinema OR hollywood OR bollywood OR actor OR actress OR director OR trailer OR review OR box office OR oscar OR netflix OR disney OR marvel OR dc OR premiere)", res.BoostedQuery)
	assert.Equal(t, res.BoostedQuery, fx.fetcher.last.Query)
	assert.Equal(t, 30, fx.fetcher.last.PageSize)
	assert.Equal(t, []string{"1", "3"}, ids(res.Articles))
	assert.False(t, res.FromCache)
	assert.Equal(t, fx.clock.Now(), res.FetchedAt)
}

func TestSearchServesFromCacheWithinWindow(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)

	fx.clock.Advance(9 * time.Minute)
	res, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []string{"1", "3"}, ids(res.Articles))
	assert.Equal(t, 1, fx.fetcher.calls)

	fx.clock.Advance(2 * time.Minute)
	res, err = fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 2, fx.fetcher.calls)
}

func TestSearchKeysOnBoostedQuery(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	_, err = fx.svc.Search(ctx, "oppenheimer")
	require.NoError(t, err)
	assert.Equal(t, 2, fx.fetcher.calls)
}

func TestRefreshBypassesCache(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)

	fx.fetcher.articles = upstream[:1]
	res, err := fx.svc.Refresh(ctx, "dune")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, []string{"1"}, ids(res.Articles))

	res, err = fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []string{"1"}, ids(res.Articles), "refresh overwrites the cached entry")
}

func TestSearchFailureIsNotCached(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	apiErr := &providers.APIError{StatusCode: 401, Code: "apiKeyInvalid", Message: "Your API key is invalid."}
	fx.fetcher.err = apiErr
	fx.fetcher.articles = nil

	res, err := fx.svc.Search(ctx, "dune")
	require.Error(t, err)
	var got *providers.APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "Your API key is invalid.", got.Message)
	assert.Empty(t, res.Articles)
	assert.NotEmpty(t, res.BoostedQuery)

	fx.fetcher.err = nil
	fx.fetcher.articles = upstream
	res, err = fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 2, fx.fetcher.calls)
}

func TestSearchEmptyQueryUsesClauseOnly(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "", res.Query)
	assert.Equal(t, "(film OR movie OR cinema OR hollywood OR bollywood OR actor OR actress OR director OR trailer OR review OR box office OR oscar OR netflix OR disney OR marvel OR dc OR premiere)", res.BoostedQuery)
}

func TestSearchEnrichesAndPublishesFreshResults(t *testing.T) {
	enricher := &markEnricher{}
	pub := &recordingPublisher{}
	fx := newFixture(t, func(o *Options) {
		o.Enricher = enricher
		o.Dispatcher = publishers.NewDispatcher([]publishers.Publisher{pub}, nil)
	})
	ctx := context.Background()

	res, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, "https://img/1", res.Articles[0].ImageURL)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "dune", pub.events[0].Query)
	assert.Len(t, pub.events[0].Articles, 2)

	res, err = fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, "https://img/1", res.Articles[0].ImageURL, "cached entry holds enriched records")
	assert.Equal(t, 1, enricher.calls)
	assert.Len(t, pub.events, 1, "cached results are not republished")
}

func TestSearchNoEnrichWhenNothingKept(t *testing.T) {
	enricher := &markEnricher{}
	fx := newFixture(t, func(o *Options) { o.Enricher = enricher })
	fx.fetcher.articles = []domain.Article{{ID: "x", Title: "Election results"}}

	res, err := fx.svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Zero(t, enricher.calls)
}

type brokenStore struct{ cache.Store }

func (brokenStore) Get(string) (cache.Entry, bool, error) {
	return cache.Entry{}, false, errors.New("disk gone")
}

func (brokenStore) Put(string, []domain.Article, time.Duration) (cache.Entry, error) {
	return cache.Entry{}, errors.New("disk gone")
}

func TestSearchDegradesOnCacheErrors(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.Cache = brokenStore{} })

	res, err := fx.svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Len(t, res.Articles, 2)
}

func TestPurgeCache(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.svc.Search(ctx, "dune")
	require.NoError(t, err)
	fx.clock.Advance(11 * time.Minute)

	n, err := fx.svc.PurgeCache()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(Options{Cache: cache.NewMemory(nil)})
	assert.Error(t, err)
	_, err = NewService(Options{Fetcher: &fakeFetcher{}})
	assert.Error(t, err)
}
