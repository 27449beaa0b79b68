package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the canonical record returned for one scraped product page.
type Product struct {
	Title         string       `json:"title"`
	Images        []string     `json:"images"`
	SalePrice     *Price       `json:"salePrice"`
	OriginalPrice *Price       `json:"originalPrice"`
	Rating        string       `json:"rating"`
	TotalReviews  int          `json:"totalReviews"`
	Orders        string       `json:"orders"`
	StoreInfo     StoreInfo    `json:"storeInfo"`
	CurrencyCode  CurrencyCode `json:"currencyCode"`
}

type StoreInfo struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Price is an immutable monetary value. FormattedAmount keeps the text the
// page displayed; Value is the parsed amount and never negative.
type Price struct {
	value     decimal.Decimal
	formatted string
	currency  CurrencyCode
}

// NewPrice returns nil for negative amounts; upstream data carrying one is
// treated as having no price.
func NewPrice(value decimal.Decimal, formatted string, currency CurrencyCode) *Price {
	if value.IsNegative() {
		return nil
	}
	return &Price{value: value, formatted: formatted, currency: currency}
}

func (p *Price) Value() decimal.Decimal { return p.value }

func (p *Price) FormattedAmount() string { return p.formatted }

func (p *Price) Currency() CurrencyCode { return p.currency }

// WithCurrency returns a copy of p carrying the given currency.
func (p *Price) WithCurrency(c CurrencyCode) *Price {
	return &Price{value: p.value, formatted: p.formatted, currency: c}
}

type priceJSON struct {
	Value           json.Number  `json:"value"`
	FormattedAmount string       `json:"formattedAmount"`
	Currency        CurrencyCode `json:"currency"`
}

func (p *Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(priceJSON{
		Value:           json.Number(p.value.String()),
		FormattedAmount: p.formatted,
		Currency:        p.currency,
	})
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var raw priceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := decimal.NewFromString(raw.Value.String())
	if err != nil {
		return err
	}
	price := NewPrice(v, raw.FormattedAmount, raw.Currency)
	if price == nil {
		return fmt.Errorf("negative price value %s", v)
	}
	*p = *price
	return nil
}

// Draft accumulates the fields one extraction strategy managed to find.
// Nothing in a Draft is defaulted; the assembler fills the gaps.
type Draft struct {
	Title         string
	SalePrice     *Price
	OriginalPrice *Price
	Images        []string
	Rating        string
	TotalReviews  int
	Orders        string
	StoreName     string
	StoreLogo     string
	Currency      CurrencyCode

	seen map[string]struct{}
}

// AddImage appends url unless it was already recorded. Callers pass
// normalized URLs so that size variants of one image collapse.
func (d *Draft) AddImage(url string) {
	if url == "" {
		return
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[url]; ok {
		return
	}
	d.seen[url] = struct{}{}
	d.Images = append(d.Images, url)
}

func (d *Draft) HasPrice() bool {
	return d.SalePrice != nil || d.OriginalPrice != nil
}

// CapturedResponse is a network response body recorded while the page loaded.
type CapturedResponse struct {
	URL  string
	Body string
}
