package browser

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
	"github.com/playwright-community/playwright-go"
)

// CaptureFilter selects the network responses worth keeping.
type CaptureFilter struct {
	// URLContains must all occur in the response URL.
	URLContains []string
	// Bodies of this size or smaller are error stubs.
	MinBodySize int
	// Ready reports whether a kept body carries the product data. A nil
	// Ready treats every kept body as ready.
	Ready func(body string) bool
}

func DefaultCaptureFilter() CaptureFilter {
	return CaptureFilter{
		URLContains: []string{"mtop.aliexpress", "pdp"},
		MinBodySize: 1000,
		Ready:       HasResultObject,
	}
}

// HasResultObject reports whether body decodes (JSONP or plain JSON) to an
// object with an object at data.result.
func HasResultObject(body string) bool {
	obj, err := parser.UnwrapObject(body)
	if err != nil {
		return false
	}
	data, ok := obj["data"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = data["result"].(map[string]interface{})
	return ok
}

func (f CaptureFilter) matchURL(url string) bool {
	for _, s := range f.URLContains {
		if !strings.Contains(url, s) {
			return false
		}
	}
	return true
}

// Capture records product API responses for a single page. Playwright
// delivers responses on its own goroutines; Responses may be called
// concurrently with recording.
type Capture struct {
	filter CaptureFilter
	logger *slog.Logger

	mu        sync.Mutex
	responses []models.CapturedResponse

	ready     chan struct{}
	readyOnce sync.Once
}

func NewCapture(filter CaptureFilter, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{
		filter: filter,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Attach subscribes to the page's responses. Call it before navigating.
func (c *Capture) Attach(page playwright.Page) {
	page.OnResponse(func(resp playwright.Response) {
		url := resp.URL()
		if !c.filter.matchURL(url) {
			return
		}
		body, err := resp.Text()
		if err != nil {
			c.logger.Debug("failed to read response body", "url", url, "error", err)
			return
		}
		c.Record(url, body)
	})
}

// Record keeps body if it passes the size filter. It reports whether the
// body was kept.
func (c *Capture) Record(url, body string) bool {
	if len(body) <= c.filter.MinBodySize {
		return false
	}

	c.mu.Lock()
	c.responses = append(c.responses, models.CapturedResponse{URL: url, Body: body})
	c.mu.Unlock()

	c.logger.Debug("captured product response", "url", url, "size", len(body))

	if c.filter.Ready == nil || c.filter.Ready(body) {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	return true
}

// Responses waits for a ready response or for ctx to end and returns a
// copy of everything captured, in arrival order.
func (c *Capture) Responses(ctx context.Context) ([]models.CapturedResponse, error) {
	select {
	case <-c.ready:
		return c.snapshot(), nil
	case <-ctx.Done():
		return c.snapshot(), ctx.Err()
	}
}

func (c *Capture) snapshot() []models.CapturedResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CapturedResponse(nil), c.responses...)
}
