package extract

import (
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// Assemble turns an accepted draft into the canonical product. Missing
// fields get their documented defaults: no images, rating and orders "0",
// empty store name.
func Assemble(d *models.Draft, defaultCurrency models.CurrencyCode) *models.Product {
	currency := deriveCurrency(d, defaultCurrency)

	return &models.Product{
		Title:         d.Title,
		Images:        append([]string{}, d.Images...),
		SalePrice:     ensureCurrency(d.SalePrice, currency),
		OriginalPrice: ensureCurrency(d.OriginalPrice, currency),
		Rating:        orZero(d.Rating),
		TotalReviews:  d.TotalReviews,
		Orders:        orZero(d.Orders),
		StoreInfo: models.StoreInfo{
			Name: d.StoreName,
			Logo: d.StoreLogo,
		},
		CurrencyCode: currency,
	}
}

func deriveCurrency(d *models.Draft, defaultCurrency models.CurrencyCode) models.CurrencyCode {
	switch {
	case d.SalePrice != nil && !d.SalePrice.Currency().IsZero():
		return d.SalePrice.Currency()
	case d.OriginalPrice != nil && !d.OriginalPrice.Currency().IsZero():
		return d.OriginalPrice.Currency()
	case !d.Currency.IsZero():
		return d.Currency
	default:
		return currencyOr("", defaultCurrency)
	}
}

func ensureCurrency(p *models.Price, currency models.CurrencyCode) *models.Price {
	if p == nil || !p.Currency().IsZero() {
		return p
	}
	return p.WithCurrency(currency)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
