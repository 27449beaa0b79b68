package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/scraper"
	"github.com/maltedev/aliexpress-scraper/internal/database"
	"github.com/maltedev/aliexpress-scraper/internal/extract"
	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type fakeOutboxStats struct {
	pending       int64
	deadLetter    int64
	pendingErr    error
	deadLetterErr error
}

func (f fakeOutboxStats) CountByStatus(_ context.Context, statuses ...string) (int64, error) {
	if len(statuses) == 1 && statuses[0] == database.OutboxStatusDeadLetter {
		return f.deadLetter, f.deadLetterErr
	}
	return f.pending, f.pendingErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, h *Handlers, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(h, RouterConfig{AllowedOrigins: []string{"*"}, Metrics: http.NotFoundHandler()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		outbox     OutboxStats
		wantCode   int
		wantStatus string
	}{
		{"no persistence", nil, http.StatusOK, "ok"},
		{"quiet outbox", fakeOutboxStats{pending: 3}, http.StatusOK, "ok"},
		{"backlog", fakeOutboxStats{pending: 5000}, http.StatusOK, "warning"},
		{"dead letters", fakeOutboxStats{deadLetter: 500}, http.StatusServiceUnavailable, "error"},
		{"pending count fails", fakeOutboxStats{pendingErr: errors.New("pool closed")}, http.StatusServiceUnavailable, "error"},
		{"dead letter count fails", fakeOutboxStats{deadLetterErr: errors.New("pool closed")}, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(new(MockScraper), tt.outbox, testLogger())
			rec := serve(t, h, "/health")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, tt.outbox != nil, body.Outbox != nil)
		})
	}
}

func TestScrape_Success(t *testing.T) {
	product := &models.Product{
		Title:        "Fone Bluetooth",
		Images:       []string{},
		SalePrice:    models.NewPrice(decimal.RequireFromString("22.64"), "R$ 22,64", models.CurrencyBRL),
		Rating:       "4.8",
		Orders:       "0",
		CurrencyCode: models.CurrencyBRL,
	}

	s := new(MockScraper)
	s.On("Scrape", mock.Anything, "1005006").Return(product, nil)

	rec := serve(t, NewHandlers(s, nil, testLogger()), "/api/scrape?id=1005006")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Fone Bluetooth", body["title"])
	assert.Equal(t, "BRL", body["currencyCode"])
	assert.Nil(t, body["originalPrice"])
	salePrice := body["salePrice"].(map[string]interface{})
	assert.Equal(t, 22.64, salePrice["value"])
	assert.Equal(t, "R$ 22,64", salePrice["formattedAmount"])
	s.AssertExpectations(t)
}

func TestScrape_Errors(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		err       error
		wantCode  int
		wantError string
	}{
		{"missing id", "/api/scrape", nil, http.StatusBadRequest, "product id is required"},
		{"invalid id", "/api/scrape?id=abc", scraper.ErrInvalidProductID, http.StatusBadRequest, "invalid product id"},
		{"not extracted", "/api/scrape?id=42", extract.ErrExtractionExhausted, http.StatusInternalServerError, "failed to scrape product"},
		{"navigation", "/api/scrape?id=42", errors.New("timeout"), http.StatusInternalServerError, "failed to scrape product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(MockScraper)
			if tt.err != nil {
				s.On("Scrape", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := serve(t, NewHandlers(s, nil, testLogger()), tt.target)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), body.Details)
			} else {
				s.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRouter_MountsMetrics(t *testing.T) {
	h := NewHandlers(new(MockScraper), nil, testLogger())
	router := NewRouter(h, RouterConfig{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
