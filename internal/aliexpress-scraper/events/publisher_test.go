package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/maltedev/aliexpress-scraper/internal/database"
	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObservationStore struct {
	mock.Mock
}

func (m *MockObservationStore) Record(ctx context.Context, obs *database.PriceObservation, event *database.OutboxEvent) error {
	return m.Called(ctx, obs, event).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleProduct() *models.Product {
	return &models.Product{
		Title:         "Mochila Impermeável",
		Images:        []string{"https://ae01.alicdn.com/kf/A.jpg"},
		SalePrice:     models.NewPrice(decimal.RequireFromString("89.90"), "R$ 89,90", models.CurrencyBRL),
		OriginalPrice: models.NewPrice(decimal.RequireFromString("150"), "R$ 150,00", models.CurrencyBRL),
		Rating:        "4.7",
		Orders:        "1.000+",
		StoreInfo:     models.StoreInfo{Name: "Loja Mochilas"},
		CurrencyCode:  models.CurrencyBRL,
	}
}

func TestPublisher_PublishProductScraped(t *testing.T) {
	ctx := context.Background()
	store := new(MockObservationStore)

	var gotObs *database.PriceObservation
	var gotEvent *database.OutboxEvent
	store.On("Record", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotObs = args.Get(1).(*database.PriceObservation)
			gotEvent = args.Get(2).(*database.OutboxEvent)
		}).
		Return(nil)

	p := NewPublisher(store, "stream:test_prices", testLogger())
	payload := &ProductScrapedPayload{ProductID: "1005006", Stage: "api_results", Product: sampleProduct()}
	require.NoError(t, p.PublishProductScraped(ctx, payload))

	assert.NotEmpty(t, payload.EventID)
	assert.Equal(t, string(EventTypeProductScraped), payload.EventType)
	assert.False(t, payload.Timestamp.IsZero())
	assert.Equal(t, "scraper", payload.Source)

	require.NotNil(t, gotEvent)
	assert.Equal(t, "product", gotEvent.AggregateType)
	assert.Equal(t, "1005006", gotEvent.AggregateID)
	assert.Equal(t, "PRODUCT_SCRAPED", gotEvent.EventType)
	assert.Equal(t, "stream:test_prices", gotEvent.TargetStream)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(gotEvent.Payload, &decoded))
	assert.Equal(t, "1005006", decoded["product_id"])
	product := decoded["product"].(map[string]interface{})
	assert.Equal(t, "Mochila Impermeável", product["title"])

	require.NotNil(t, gotObs)
	assert.Equal(t, "1005006", gotObs.ProductID)
	assert.Equal(t, "89.9", gotObs.SalePrice.String())
	assert.Equal(t, "150", gotObs.OriginalPrice.String())
	assert.Equal(t, "BRL", gotObs.Currency)
	assert.Equal(t, "Loja Mochilas", gotObs.StoreName)
	assert.Equal(t, "api_results", gotObs.Stage)
	assert.Equal(t, payload.Timestamp, gotObs.ObservedAt)
	store.AssertExpectations(t)
}

func TestPublisher_NoOriginalPrice(t *testing.T) {
	ctx := context.Background()
	store := new(MockObservationStore)
	store.On("Record", ctx, mock.MatchedBy(func(obs *database.PriceObservation) bool {
		return obs.OriginalPrice == nil && obs.SalePrice != nil
	}), mock.Anything).Return(nil)

	product := sampleProduct()
	product.OriginalPrice = nil

	p := NewPublisher(store, "", testLogger())
	require.NoError(t, p.PublishProductScraped(ctx, &ProductScrapedPayload{ProductID: "7", Product: product}))
	store.AssertExpectations(t)
}

func TestPublisher_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil product", func(t *testing.T) {
		store := new(MockObservationStore)
		p := NewPublisher(store, "", testLogger())

		err := p.PublishProductScraped(ctx, &ProductScrapedPayload{ProductID: "7"})
		assert.Error(t, err)
		store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		store := new(MockObservationStore)
		store.On("Record", ctx, mock.Anything, mock.Anything).Return(storeErr)
		p := NewPublisher(store, "", testLogger())

		err := p.PublishProductScraped(ctx, &ProductScrapedPayload{ProductID: "7", Product: sampleProduct()})
		assert.ErrorIs(t, err, storeErr)
	})
}
