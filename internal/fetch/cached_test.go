package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/necta-results/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failure struct {
	status int
	msg    string
}

// memoryCache is an in-memory PageCache.
type memoryCache struct {
	mu        sync.Mutex
	pages     map[string]*db.CrawledPage
	skips     map[string]db.SkipDecision
	failures  map[string]failure
	upsertErr error
	purged    chan int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		pages:    map[string]*db.CrawledPage{},
		skips:    map[string]db.SkipDecision{},
		failures: map[string]failure{},
	}
}

func (m *memoryCache) ShouldSkipURL(_ context.Context, pageURL string) (db.SkipDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skips[pageURL], nil
}

func (m *memoryCache) GetFreshCrawledPage(_ context.Context, pageURL string, maxAge time.Duration) (*db.CrawledPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.pages[pageURL]
	if page == nil || !page.IsFresh(maxAge) {
		return nil, nil
	}
	return page, nil
}

func (m *memoryCache) UpsertCrawledPage(_ context.Context, page *db.CrawledPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	page.ID = uuid.New()
	page.FetchedAt = time.Now()
	m.pages[page.URL] = page
	return nil
}

func (m *memoryCache) RecordFailedFetch(_ context.Context, pageURL string, httpStatus int, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[pageURL] = failure{status: httpStatus, msg: errorMsg}
	return nil
}

func (m *memoryCache) DeleteCrawledPage(_ context.Context, pageURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pages[pageURL]
	delete(m.pages, pageURL)
	delete(m.skips, pageURL)
	return ok, nil
}

func (m *memoryCache) DeleteExpiredPages(_ context.Context) (int64, error) {
	m.mu.Lock()
	var n int64
	for url, page := range m.pages {
		if page.IsExpired() {
			delete(m.pages, url)
			n++
		}
	}
	m.mu.Unlock()
	if m.purged != nil {
		m.purged <- n
	}
	return n, nil
}

type countingFetcher struct {
	calls  int
	result *Result
	err    error
}

func (c *countingFetcher) Fetch(_ context.Context, urlStr string) (*Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	r := *c.result
	r.URL = urlStr
	return &r, nil
}

const pageURL = "https://onlinesys.necta.go.tz/results/2022/csee/results/s0101.htm"

func TestCachedFetcher_StoresAndServesFromCache(t *testing.T) {
	cache := newMemoryCache()
	source := &countingFetcher{result: &Result{HTML: "<table></table>", StatusCode: 200}}
	f := NewCachedFetcher(cache, source, nil)

	ctx := WithPageType(context.Background(), db.PageTypeSummary)
	first, err := f.FetchCached(ctx, pageURL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.NotEqual(t, uuid.Nil, first.PageID)

	stored := cache.pages[pageURL]
	require.NotNil(t, stored)
	require.NotNil(t, stored.PageType)
	assert.Equal(t, db.PageTypeSummary, *stored.PageType)

	second, err := f.FetchCached(ctx, pageURL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "<table></table>", second.HTML)
	assert.Equal(t, 200, second.StatusCode)
	assert.Equal(t, 1, source.calls)
}

func TestCachedFetcher_SkipCacheAlwaysFetches(t *testing.T) {
	cache := newMemoryCache()
	source := &countingFetcher{result: &Result{HTML: "x", StatusCode: 200}}
	f := NewCachedFetcher(cache, source, &CachedFetcherConfig{SkipCache: true})

	for range 2 {
		_, err := f.Fetch(context.Background(), pageURL)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, source.calls)
}

func TestCachedFetcher_SkipDecisionWithStatusIsRemoteError(t *testing.T) {
	cache := newMemoryCache()
	cache.skips[pageURL] = db.SkipDecision{Skip: true, Reason: "HTTP status 404", HTTPStatus: 404}
	source := &countingFetcher{result: &Result{}}
	f := NewCachedFetcher(cache, source, nil)

	_, err := f.Fetch(context.Background(), pageURL)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 404, remoteErr.StatusCode)
	assert.Equal(t, 0, source.calls)
}

func TestCachedFetcher_SkipDecisionWithoutStatusIsTransportError(t *testing.T) {
	cache := newMemoryCache()
	cache.skips[pageURL] = db.SkipDecision{Skip: true, Reason: "retry backoff"}
	f := NewCachedFetcher(cache, &countingFetcher{result: &Result{}}, nil)

	_, err := f.Fetch(context.Background(), pageURL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "retry backoff")
}

func TestCachedFetcher_RecordsFailures(t *testing.T) {
	cache := newMemoryCache()
	source := &countingFetcher{err: &RemoteError{URL: pageURL, StatusCode: 503}}
	f := NewCachedFetcher(cache, source, nil)

	_, err := f.Fetch(context.Background(), pageURL)
	require.Error(t, err)
	assert.Equal(t, 503, cache.failures[pageURL].status)
	assert.Contains(t, cache.failures[pageURL].msg, "503")
}

func TestCachedFetcher_UpsertFailureStillReturnsPage(t *testing.T) {
	cache := newMemoryCache()
	cache.upsertErr = errors.New("disk full")
	f := NewCachedFetcher(cache, &countingFetcher{result: &Result{HTML: "ok", StatusCode: 200}}, nil)

	result, err := f.FetchCached(context.Background(), pageURL)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.HTML)
	assert.Equal(t, uuid.Nil, result.PageID)
}

func TestCachedFetcher_NilCacheIsPassThrough(t *testing.T) {
	source := &countingFetcher{result: &Result{HTML: "ok", StatusCode: 200}}
	f := NewCachedFetcher(nil, source, nil)

	result, err := f.Fetch(context.Background(), pageURL)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.HTML)

	removed, err := f.InvalidateCache(context.Background(), pageURL)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCachedFetcher_InvalidateCache(t *testing.T) {
	cache := newMemoryCache()
	source := &countingFetcher{result: &Result{HTML: "ok", StatusCode: 200}}
	f := NewCachedFetcher(cache, source, nil)

	_, err := f.Fetch(context.Background(), pageURL)
	require.NoError(t, err)

	removed, err := f.InvalidateCache(context.Background(), pageURL)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = f.Fetch(context.Background(), pageURL)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()
	require.NotNil(t, config)
	assert.Equal(t, db.DefaultPageCacheTTL, config.CacheTTL)
	assert.False(t, config.SkipCache)
}

func TestDerefHelpers(t *testing.T) {
	s := "hello"
	n := 200
	assert.Equal(t, "", derefString(nil))
	assert.Equal(t, "hello", derefString(&s))
	assert.Equal(t, 0, derefInt(nil))
	assert.Equal(t, 200, derefInt(&n))
}

func TestCachedFetcher_StoredPageExpiresAfterConfiguredTTL(t *testing.T) {
	ttl := 30 * 24 * time.Hour
	cache := newMemoryCache()
	source := &countingFetcher{result: &Result{HTML: "ok", StatusCode: 200}}
	f := NewCachedFetcher(cache, source, &CachedFetcherConfig{CacheTTL: ttl})

	before := time.Now()
	_, err := f.Fetch(context.Background(), pageURL)
	require.NoError(t, err)

	stored := cache.pages[pageURL]
	require.NotNil(t, stored)
	require.NotNil(t, stored.ExpiresAt)
	assert.WithinDuration(t, before.Add(ttl), *stored.ExpiresAt, time.Minute)

	// Ten days old is past the default TTL but still fresh under the configured one.
	stored.FetchedAt = time.Now().Add(-10 * 24 * time.Hour)
	result, err := f.FetchCached(context.Background(), pageURL)
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, 1, source.calls)
}

func TestCachedFetcher_PurgeExpired(t *testing.T) {
	cache := newMemoryCache()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	cache.pages["old"] = &db.CrawledPage{URL: "old", ExpiresAt: &past}
	cache.pages["new"] = &db.CrawledPage{URL: "new", ExpiresAt: &future}
	f := NewCachedFetcher(cache, nil, nil)

	n, err := f.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotContains(t, cache.pages, "old")
	assert.Contains(t, cache.pages, "new")

	n, err = NewCachedFetcher(nil, nil, nil).PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCachedFetcher_RunPurgeUntilCancelled(t *testing.T) {
	cache := newMemoryCache()
	cache.purged = make(chan int64)
	past := time.Now().Add(-time.Hour)
	cache.pages["old"] = &db.CrawledPage{URL: "old", ExpiresAt: &past}
	f := NewCachedFetcher(cache, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.RunPurge(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case n := <-cache.purged:
		assert.Equal(t, int64(1), n)
	case <-time.After(5 * time.Second):
		t.Fatal("purge did not run")
	}
	cancel()

	// Drain a sweep that may have started before cancellation.
	for {
		select {
		case <-cache.purged:
		case <-done:
			return
		case <-time.After(5 * time.Second):
			t.Fatal("RunPurge did not stop")
		}
	}
}
