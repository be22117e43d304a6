package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/necta-results/internal/db"
)

// PageCache is the subset of the database used by CachedFetcher.
type PageCache interface {
	ShouldSkipURL(ctx context.Context, pageURL string) (db.SkipDecision, error)
	GetFreshCrawledPage(ctx context.Context, pageURL string, maxAge time.Duration) (*db.CrawledPage, error)
	UpsertCrawledPage(ctx context.Context, page *db.CrawledPage) error
	RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error
	DeleteCrawledPage(ctx context.Context, pageURL string) (bool, error)
	DeleteExpiredPages(ctx context.Context) (int64, error)
}

// CachedFetcher wraps another Fetcher with database-backed caching.
type CachedFetcher struct {
	cache     PageCache
	source    Fetcher
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: db.DefaultPageCacheTTL,
	}
}

// NewCachedFetcher creates a cached fetcher in front of source.
// A nil cache makes it a pass-through.
func NewCachedFetcher(cache PageCache, source Fetcher, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = db.DefaultPageCacheTTL
	}
	if source == nil {
		source = NewHTTPFetcher(nil)
	}
	return &CachedFetcher{
		cache:     cache,
		source:    source,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool      // Whether this result came from cache
	PageID    uuid.UUID // Database ID of the cached page
}

type pageTypeKey struct{}

// WithPageType tags ctx with the kind of page being fetched so it is stored
// alongside the cached copy.
func WithPageType(ctx context.Context, pageType string) context.Context {
	return context.WithValue(ctx, pageTypeKey{}, pageType)
}

func pageTypeFrom(ctx context.Context) *string {
	if v, ok := ctx.Value(pageTypeKey{}).(string); ok && v != "" {
		return &v
	}
	return nil
}

// Fetch implements Fetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	cached, err := f.FetchCached(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	return cached.Result, nil
}

// FetchCached retrieves a URL, using the cache if available and fresh.
// Otherwise it fetches from the source and stores the page.
func (f *CachedFetcher) FetchCached(ctx context.Context, urlStr string) (*CachedResult, error) {
	useCache := !f.skipCache && f.cache != nil

	// Step 1: Check if URL should be skipped (permanent failure or backoff)
	if useCache {
		decision, err := f.cache.ShouldSkipURL(ctx, urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to check skip status: %w", err)
		}
		if decision.Skip {
			slog.Debug("skipping url", "url", urlStr, "reason", decision.Reason, "status", decision.HTTPStatus)
			if decision.HTTPStatus != 0 {
				return nil, &RemoteError{URL: urlStr, StatusCode: decision.HTTPStatus, Reason: decision.Reason}
			}
			return nil, &Error{URL: urlStr, Message: fmt.Sprintf("URL skipped: %s", decision.Reason)}
		}
	}

	// Step 2: Try to get fresh cached page
	if useCache {
		cached, err := f.cache.GetFreshCrawledPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check cache: %w", err)
		}
		if cached != nil {
			slog.Debug("page cache hit", "url", urlStr, "page_id", cached.ID)
			return &CachedResult{
				Result: &Result{
					URL:        cached.URL,
					HTML:       derefString(cached.RawHTML),
					StatusCode: derefInt(cached.HTTPStatus),
				},
				FromCache: true,
				PageID:    cached.ID,
			}, nil
		}
	}

	// Step 3: Fetch fresh content
	result, err := f.source.Fetch(ctx, urlStr)
	if err != nil {
		if f.cache != nil && ctx.Err() == nil {
			if recErr := f.cache.RecordFailedFetch(ctx, urlStr, StatusOf(err), err.Error()); recErr != nil {
				slog.Warn("failed to record fetch failure", "url", urlStr, "error", recErr)
			}
		}
		return nil, err
	}

	// Step 4: Store in cache
	out := &CachedResult{Result: result}
	if f.cache != nil {
		status := result.StatusCode
		expiresAt := time.Now().Add(f.cacheTTL)
		page := &db.CrawledPage{
			URL:         urlStr,
			PageType:    pageTypeFrom(ctx),
			RawHTML:     &result.HTML,
			HTTPStatus:  &status,
			FetchStatus: db.FetchStatusSuccess,
			ExpiresAt:   &expiresAt,
		}
		if err := f.cache.UpsertCrawledPage(ctx, page); err != nil {
			// The fetch itself succeeded.
			slog.Warn("failed to cache page", "url", urlStr, "error", err)
		} else {
			out.PageID = page.ID
		}
	}

	return out, nil
}

// InvalidateCache drops the cached copy and any recorded failure for a URL,
// forcing a re-fetch on next request.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) (bool, error) {
	if f.cache == nil {
		return false, nil
	}
	return f.cache.DeleteCrawledPage(ctx, urlStr)
}

// PurgeExpired removes cached pages past their expiry.
func (f *CachedFetcher) PurgeExpired(ctx context.Context) (int64, error) {
	if f.cache == nil {
		return 0, nil
	}
	return f.cache.DeleteExpiredPages(ctx)
}

// RunPurge calls PurgeExpired every interval until ctx is done.
func (f *CachedFetcher) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := f.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("failed to purge expired pages", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Info("purged expired pages", "count", n)
			}
		}
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
