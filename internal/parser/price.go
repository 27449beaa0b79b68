package parser

import (
	"regexp"
	"strings"

	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/shopspring/decimal"
)

var numberToken = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice reads the first number in a displayed price such as
// "R$ 1.234,56" or "US $4.04". The returned Price keeps text verbatim and
// has no currency; callers attach one. It returns nil when text holds no digits.
func ParsePrice(text string) *models.Price {
	token := strings.TrimRight(numberToken.FindString(text), ".,")
	if token == "" {
		return nil
	}

	value, err := decimal.NewFromString(normalizeNumber(token))
	if err != nil {
		return nil
	}

	return models.NewPrice(value, text, "")
}

// ParsePriceIn is ParsePrice with the currency inferred from text, falling
// back to the given code.
func ParsePriceIn(text string, fallback models.CurrencyCode) *models.Price {
	p := ParsePrice(text)
	if p == nil {
		return nil
	}
	return p.WithCurrency(InferCurrency(text, fallback))
}

// normalizeNumber turns a locale formatted token into dot-decimal form.
// A comma means comma-decimal unless a dot follows the last comma.
func normalizeNumber(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot > lastComma:
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:lastComma])
		if intPart == "" {
			intPart = "0"
		}
		return intPart + "." + s[lastComma+1:]
	case strings.Count(s, ".") > 1:
		// 1.234.567
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}
