package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/aliexpress-scraper/internal/database"
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

type EventType string

const (
	// EventTypeProductScraped is emitted after every successful extraction.
	EventTypeProductScraped EventType = "PRODUCT_SCRAPED"
)

// ProductScrapedPayload is what downstream consumers read off the stream.
type ProductScrapedPayload struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	ProductID string          `json:"product_id"`
	URL       string          `json:"url,omitempty"`
	Stage     string          `json:"stage"`
	Product   *models.Product `json:"product"`
	Source    string          `json:"source"`
}

// ObservationStore persists an observation together with its outbox event.
type ObservationStore interface {
	Record(ctx context.Context, obs *database.PriceObservation, event *database.OutboxEvent) error
}

type Publisher struct {
	store  ObservationStore
	stream string
	logger *slog.Logger
}

func NewPublisher(store ObservationStore, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishProductScraped records the price observation and queues a
// PRODUCT_SCRAPED event in the same transaction.
func (p *Publisher) PublishProductScraped(ctx context.Context, payload *ProductScrapedPayload) error {
	if payload.Product == nil {
		return fmt.Errorf("product %s: nothing to publish", payload.ProductID)
	}
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypeProductScraped)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}
	if payload.Source == "" {
		payload.Source = "scraper"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	event := &database.OutboxEvent{
		AggregateType: "product",
		AggregateID:   payload.ProductID,
		EventType:     payload.EventType,
		Payload:       data,
		TargetStream:  p.stream,
	}

	obs := observationFrom(payload)
	if err := p.store.Record(ctx, obs, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published to outbox",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"product_id", payload.ProductID,
		"observation_id", obs.ID,
		"outbox_id", event.ID,
	)

	return nil
}

func observationFrom(payload *ProductScrapedPayload) *database.PriceObservation {
	product := payload.Product
	obs := &database.PriceObservation{
		ProductID:  payload.ProductID,
		Title:      product.Title,
		Currency:   string(product.CurrencyCode),
		Rating:     product.Rating,
		Orders:     product.Orders,
		StoreName:  product.StoreInfo.Name,
		Stage:      payload.Stage,
		ObservedAt: payload.Timestamp,
	}
	if product.SalePrice != nil {
		v := product.SalePrice.Value()
		obs.SalePrice = &v
	}
	if product.OriginalPrice != nil {
		v := product.OriginalPrice.Value()
		obs.OriginalPrice = &v
	}
	return obs
}
