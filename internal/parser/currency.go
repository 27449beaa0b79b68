package parser

import (
	"strings"

	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// Longer markers come first so "US $" wins over "$" and "CA$" over "A$".
var currencyMarkers = []struct {
	marker string
	code   models.CurrencyCode
}{
	{"R$", models.CurrencyBRL},
	{"US $", models.CurrencyUSD},
	{"US$", models.CurrencyUSD},
	{"MX$", models.CurrencyMXN},
	{"CA $", models.CurrencyCAD},
	{"CA$", models.CurrencyCAD},
	{"C$", models.CurrencyCAD},
	{"AU $", models.CurrencyAUD},
	{"AU$", models.CurrencyAUD},
	{"A$", models.CurrencyAUD},
	{"NZ$", models.CurrencyNZD},
	{"HK$", models.CurrencyHKD},
	{"S$", models.CurrencySGD},
	{"€", models.CurrencyEUR},
	{"£", models.CurrencyGBP},
	{"₽", models.CurrencyRUB},
	{"руб", models.CurrencyRUB},
	{"zł", models.CurrencyPLN},
	{"₺", models.CurrencyTRY},
	{"₹", models.CurrencyINR},
	{"₩", models.CurrencyKRW},
	{"￥", models.CurrencyCNY},
	{"¥", models.CurrencyJPY},
	{"$", models.CurrencyUSD},
}

// InferCurrency maps the first currency marker found in text to its code.
// An ISO code written in the text takes precedence over symbols.
func InferCurrency(text string, fallback models.CurrencyCode) models.CurrencyCode {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z')
	}) {
		if code, ok := models.ParseCurrencyCode(field); ok && knownCode(code) {
			return code
		}
	}

	for _, m := range currencyMarkers {
		if strings.Contains(text, m.marker) {
			return m.code
		}
	}

	if fallback.IsZero() {
		return models.FallbackCurrency
	}
	return fallback
}

func knownCode(code models.CurrencyCode) bool {
	for _, m := range currencyMarkers {
		if m.code == code {
			return true
		}
	}
	return false
}
