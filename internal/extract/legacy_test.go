package extract

import (
	"testing"

	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	obj, err := parser.UnwrapObject(body)
	require.NoError(t, err)
	return obj
}

func TestNormalizeLegacy(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantSale     string
		wantOriginal string
		wantTitle    string
		wantOrders   string
		wantStore    string
	}{
		{
			name: "module generation with activity",
			body: `{
				"priceModule":{
					"minActivityAmount":{"value":19.9,"currency":"BRL","formatedAmount":"R$ 19,90"},
					"minAmount":{"value":39.8,"currency":"BRL","formatedAmount":"R$ 39,80"}},
				"titleModule":{"subject":"Relógio","formatTradeCount":"312","feedbackRating":{"averageStar":"4.7","totalValidNum":88}},
				"imageModule":{"imagePathList":["https://ae01.alicdn.com/kf/H1.jpg"]},
				"storeModule":{"storeName":"Watch Store"}}`,
			wantSale:     "19.9",
			wantOriginal: "39.8",
			wantTitle:    "Relógio",
			wantOrders:   "312",
			wantStore:    "Watch Store",
		},
		{
			name: "component generation",
			body: `{
				"priceComponent":{"discountPrice":{"minActivityAmount":{"value":7.5,"currency":"USD"}},"origPrice":{"minAmount":{"value":15,"currency":"USD"}}},
				"productInfoComponent":{"subject":"Cable"},
				"tradeComponent":{"formatTradeCount":"1.000+"},
				"sellerComponent":{"storeName":"Cable Shop"}}`,
			wantSale:     "7.5",
			wantOriginal: "15",
			wantTitle:    "Cable",
			wantOrders:   "1.000+",
			wantStore:    "Cable Shop",
		},
		{
			name: "formatted strings without activity",
			body: `{"priceModule":{"formatedPrice":"R$ 58,30"},"titleModule":{"subject":"Bolsa"}}`,
			wantSale:  "58.3",
			wantTitle: "Bolsa",
		},
		{
			name: "wrapped in data",
			body: `{"data":{"priceModule":{"formatedActivityPrice":"R$ 5,00"},"titleModule":{"subject":"Meia"}}}`,
			wantSale:  "5",
			wantTitle: "Meia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NormalizeLegacy(mustObject(t, tt.body), models.CurrencyBRL)
			require.NotNil(t, d)

			require.NotNil(t, d.SalePrice)
			assert.Equal(t, tt.wantSale, d.SalePrice.Value().String())
			if tt.wantOriginal == "" {
				assert.Nil(t, d.OriginalPrice)
			} else {
				require.NotNil(t, d.OriginalPrice)
				assert.Equal(t, tt.wantOriginal, d.OriginalPrice.Value().String())
			}
			assert.Equal(t, tt.wantTitle, d.Title)
			assert.Equal(t, tt.wantOrders, d.Orders)
			assert.Equal(t, tt.wantStore, d.StoreName)
		})
	}
}

func TestNormalizeLegacy_TitleOnlyIsRejected(t *testing.T) {
	body := `{"titleModule":{"subject":"Only a title"},"imageModule":{"imagePathList":["https://ae01.alicdn.com/kf/H1.jpg"]}}`
	assert.Nil(t, NormalizeLegacy(mustObject(t, body), models.CurrencyBRL))
}

func TestNormalizeLegacy_UsesContextCurrency(t *testing.T) {
	d := NormalizeLegacy(mustObject(t, `{"priceModule":{"formatedPrice":"12,50"}}`), models.CurrencyEUR)
	require.NotNil(t, d)
	assert.Equal(t, models.CurrencyEUR, d.SalePrice.Currency())

	d = NormalizeLegacy(mustObject(t, `{"currencyComponent":{"currencyCode":"usd"},"priceComponent":{"origPrice":{"formatedPrice":"12.50"}}}`), models.CurrencyBRL)
	require.NotNil(t, d)
	assert.Equal(t, models.CurrencyUSD, d.Currency)
	assert.Equal(t, models.CurrencyUSD, d.SalePrice.Currency())
}

func TestNormalizeLegacy_PageCurrencyWinsOverSymbol(t *testing.T) {
	body := `{"commonModule":{"currencyCode":"CAD"},"priceModule":{
		"formatedActivityPrice":"$ 12,34",
		"minAmount":{"value":20,"formatedAmount":"C$ 20,00"}}}`

	d := NormalizeLegacy(mustObject(t, body), models.CurrencyBRL)
	require.NotNil(t, d)
	require.NotNil(t, d.SalePrice)
	assert.Equal(t, "12.34", d.SalePrice.Value().String())
	assert.Equal(t, models.CurrencyCAD, d.SalePrice.Currency())
	require.NotNil(t, d.OriginalPrice)
	assert.Equal(t, models.CurrencyCAD, d.OriginalPrice.Currency())
	assert.Equal(t, models.CurrencyCAD, Assemble(d, models.CurrencyBRL).CurrencyCode)
}

func TestNormalizeLegacy_UnknownLayout(t *testing.T) {
	assert.Nil(t, NormalizeLegacy(nil, models.CurrencyBRL))
	assert.Nil(t, NormalizeLegacy(map[string]interface{}{"PRICE": map[string]interface{}{}}, models.CurrencyBRL))
}
