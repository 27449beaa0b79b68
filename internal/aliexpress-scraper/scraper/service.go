package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/events"
	"github.com/maltedev/aliexpress-scraper/internal/browser"
	"github.com/maltedev/aliexpress-scraper/internal/extract"
	"github.com/maltedev/aliexpress-scraper/internal/metrics"
	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/ratelimit"
)

var ErrInvalidProductID = errors.New("product id must be a non-empty string of digits")

var productIDPattern = regexp.MustCompile(`^\d{1,32}$`)

// Page is an opened product page the extractor can read from.
type Page interface {
	extract.Source
	Close() error
}

type PageOpener interface {
	Open(ctx context.Context, url string) (Page, error)
}

type Extractor interface {
	Run(ctx context.Context, src extract.Source) (*extract.Result, error)
}

type EventPublisher interface {
	PublishProductScraped(ctx context.Context, payload *events.ProductScrapedPayload) error
}

// BrowserOpener adapts a playwright browser to PageOpener.
func BrowserOpener(b *browser.Browser) PageOpener {
	return browserOpener{b: b}
}

type browserOpener struct {
	b *browser.Browser
}

func (o browserOpener) Open(ctx context.Context, url string) (Page, error) {
	page, err := o.b.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return page, nil
}

type Service struct {
	opener     PageOpener
	extractor  Extractor
	limiter    ratelimit.Limiter
	publisher  EventPublisher
	metrics    *metrics.Metrics
	productURL func(string) string
	logger     *slog.Logger
}

type Option func(*Service)

func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithPublisher enables persisting every successful scrape.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(opener PageOpener, extractor Extractor, productURL func(string) string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		opener:     opener,
		extractor:  extractor,
		productURL: productURL,
		logger:     logger.With("component", "scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape opens the product page for productID and extracts it.
func (s *Service) Scrape(ctx context.Context, productID string) (*models.Product, error) {
	if !productIDPattern.MatchString(productID) {
		return nil, ErrInvalidProductID
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.metrics.ObserveScrape(metrics.OutcomeCancelled, 0)
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	url := s.productURL(productID)
	logger := s.logger.With("product_id", productID)
	logger.Info("scraping product", "url", url)

	start := time.Now()
	page, err := s.opener.Open(ctx, url)
	if err != nil {
		s.recordFailure(ctx, metrics.OutcomeNavigationErr, start)
		logger.Error("failed to open product page", "error", err)
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("failed to close page", "error", err)
		}
	}()

	result, err := s.extractor.Run(ctx, page)
	if err != nil {
		outcome := metrics.OutcomeNotExtracted
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCancelled
		}
		s.recordFailure(ctx, outcome, start)
		logger.Error("failed to scrape product", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.ObserveScrape(metrics.OutcomeSuccess, elapsed)
	s.metrics.ObserveStage(string(result.Stage))
	if s.limiter != nil {
		s.limiter.RecordSuccess()
	}

	product := result.Product
	logger.Info("product scraped",
		"title", product.Title,
		"price", formattedPrice(product.SalePrice),
		"currency", product.CurrencyCode,
		"stage", result.Stage,
		"duration", elapsed)

	s.publish(ctx, logger, productID, url, result)

	return product, nil
}

func (s *Service) recordFailure(ctx context.Context, outcome string, start time.Time) {
	s.metrics.ObserveScrape(outcome, time.Since(start))
	if s.limiter != nil && ctx.Err() == nil {
		s.limiter.RecordError()
	}
}

// publish is best effort; the caller already has its product.
func (s *Service) publish(ctx context.Context, logger *slog.Logger, productID, url string, result *extract.Result) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishProductScraped(ctx, &events.ProductScrapedPayload{
		ProductID: productID,
		URL:       url,
		Stage:     string(result.Stage),
		Product:   result.Product,
	})
	if err != nil {
		logger.Error("failed to publish product event", "error", err)
	}
}

func formattedPrice(p *models.Price) string {
	if p == nil {
		return ""
	}
	return p.FormattedAmount()
}
