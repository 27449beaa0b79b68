package models

import "strings"

// CurrencyCode is an ISO 4217 alphabetic code such as "BRL".
type CurrencyCode string

const (
	CurrencyBRL CurrencyCode = "BRL"
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyGBP CurrencyCode = "GBP"
	CurrencyRUB CurrencyCode = "RUB"
	CurrencyCNY CurrencyCode = "CNY"
	CurrencyJPY CurrencyCode = "JPY"
	CurrencyKRW CurrencyCode = "KRW"
	CurrencyMXN CurrencyCode = "MXN"
	CurrencyPLN CurrencyCode = "PLN"
	CurrencyTRY CurrencyCode = "TRY"
	CurrencyINR CurrencyCode = "INR"
	CurrencyCAD CurrencyCode = "CAD"
	CurrencyAUD CurrencyCode = "AUD"
	CurrencyNZD CurrencyCode = "NZD"
	CurrencyHKD CurrencyCode = "HKD"
	CurrencySGD CurrencyCode = "SGD"

	// FallbackCurrency is used when neither the page nor the caller says otherwise.
	FallbackCurrency = CurrencyBRL
)

// ParseCurrencyCode accepts three ASCII letters in any case.
func ParseCurrencyCode(s string) (CurrencyCode, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "", false
		}
	}
	return CurrencyCode(strings.ToUpper(s)), true
}

func (c CurrencyCode) IsZero() bool { return c == "" }

func (c CurrencyCode) String() string { return string(c) }
