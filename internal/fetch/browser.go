package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultSettleDelay is how long a rendered page is given to finish scripts.
const DefaultSettleDelay = time.Second

// BrowserFetcher renders pages in a headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type BrowserFetcher struct {
	Timeout time.Duration
	Settle  time.Duration
}

// NewBrowserFetcher creates a browser fetcher; zero durations use defaults.
func NewBrowserFetcher(timeout, settle time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if settle < 0 {
		settle = DefaultSettleDelay
	}
	return &BrowserFetcher{Timeout: timeout, Settle: settle}
}

// Fetch implements Fetcher. A rendered error page is reported as a
// *RemoteError carrying the status of the main document.
func (b *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	page, err := WithBrowser(ctx, urlStr, b.Timeout, b.Settle)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}
	result := &Result{URL: urlStr, HTML: page.HTML, ContentType: "text/html", StatusCode: page.StatusCode}
	if err := checkDocumentStatus(urlStr, page.StatusCode); err != nil {
		return result, err
	}
	if result.StatusCode == 0 {
		result.StatusCode = http.StatusOK
	}
	return result, nil
}

// RenderedPage is the outcome of a headless render.
type RenderedPage struct {
	HTML string
	// StatusCode of the main document response, 0 when none was observed.
	StatusCode int
}

// WithBrowser renders a page in a headless browser and returns the rendered
// HTML together with the status of the main document.
func WithBrowser(ctx context.Context, url string, timeout, settle time.Duration) (*RenderedPage, error) {
	slog.Debug("starting headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	status := &documentStatus{}
	chromedp.ListenTarget(browserCtx, status.observe)

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	slog.Debug("rendered page", "url", url, "bytes", len(html), "status", status.get())
	return &RenderedPage{HTML: html, StatusCode: status.get()}, nil
}

// documentStatus records the status of the first document response seen on
// a target. Redirects do not emit a response event, so the first document
// response belongs to the navigated page; later ones come from frames.
type documentStatus struct {
	mu     sync.Mutex
	status int
}

func (d *documentStatus) observe(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == 0 {
		d.status = int(resp.Response.Status)
	}
}

func (d *documentStatus) get() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// checkDocumentStatus maps a rendered document status onto the fetch error
// model. 0 means the browser reported no response (for example a page served
// from its own cache) and is accepted.
func checkDocumentStatus(urlStr string, status int) error {
	if status == 0 || status == http.StatusOK {
		return nil
	}
	return &RemoteError{
		URL:        urlStr,
		StatusCode: status,
		Reason:     fmt.Sprintf("HTTP status %d", status),
	}
}
