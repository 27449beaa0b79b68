package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
	"github.com/shopspring/decimal"
)

// lookup walks a dotted path ("PRICE.targetSkuPriceInfo.salePrice") through
// nested JSON objects. Missing or non-object segments yield nil.
func lookup(root map[string]interface{}, path string) interface{} {
	var cur interface{} = root
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// firstPresent returns the value at the first candidate path that exists
// and is not null.
func firstPresent(root map[string]interface{}, paths ...string) interface{} {
	for _, p := range paths {
		if v := lookup(root, p); v != nil {
			return v
		}
	}
	return nil
}

func firstObject(root map[string]interface{}, paths ...string) map[string]interface{} {
	for _, p := range paths {
		if obj, ok := lookup(root, p).(map[string]interface{}); ok {
			return obj
		}
	}
	return nil
}

// firstString returns the first candidate that renders as a non-empty string.
func firstString(root map[string]interface{}, paths ...string) string {
	for _, p := range paths {
		if s := asString(lookup(root, p)); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, t)
		if i, err := strconv.Atoi(digits); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		if p := parser.ParsePrice(t); p != nil {
			return p.Value(), true
		}
	}
	return decimal.Decimal{}, false
}

// asStrings collects the string elements of a JSON array.
func asStrings(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// priceFromObject reads an upstream money object. Accepted shapes:
//
//	{"value": 22.64, "formatedAmount": "R$ 22,64", "currency": "BRL"}
//	{"cent": 2264, "formattedAmount": "R$ 22,64", "currencyCode": "BRL"}
//	{"formatedAmount": "R$ 22,64"}
//
// A bare string or number is accepted too. The currency is the object's own
// code, else pageCurrency, and only without either is it read from the
// formatted text (falling back to fallback). Negative amounts are rejected.
func priceFromObject(v interface{}, pageCurrency, fallback models.CurrencyCode) *models.Price {
	switch t := v.(type) {
	case string:
		return priceFromText(t, pageCurrency, fallback)
	case json.Number, float64, int, int64:
		d, ok := asDecimal(t)
		if !ok {
			return nil
		}
		return models.NewPrice(d, asString(t), currencyOr(pageCurrency, fallback))
	case map[string]interface{}:
		formatted := firstString(t, "formatedAmount", "formattedAmount", "formatedPrice", "formattedPrice")

		explicit, _ := models.ParseCurrencyCode(firstString(t, "currency", "currencyCode"))
		if explicit.IsZero() {
			explicit = pageCurrency
		}

		if d, ok := asDecimal(firstPresent(t, "value", "amount")); ok {
			return models.NewPrice(d, formatted, resolveCurrency(explicit, formatted, fallback))
		}
		if cents, ok := asInt(firstPresent(t, "cent", "amountCent")); ok {
			return models.NewPrice(decimal.New(int64(cents), -2), formatted, resolveCurrency(explicit, formatted, fallback))
		}
		if formatted != "" {
			return priceFromText(formatted, explicit, fallback)
		}
	}
	return nil
}

// priceFromText parses a displayed price, attaching explicit when known and
// the currency inferred from the text otherwise.
func priceFromText(text string, explicit, fallback models.CurrencyCode) *models.Price {
	if explicit.IsZero() {
		return parser.ParsePriceIn(text, fallback)
	}
	if p := parser.ParsePrice(text); p != nil {
		return p.WithCurrency(explicit)
	}
	return nil
}

func resolveCurrency(explicit models.CurrencyCode, formatted string, fallback models.CurrencyCode) models.CurrencyCode {
	if !explicit.IsZero() {
		return explicit
	}
	return parser.InferCurrency(formatted, fallback)
}

func currencyOr(code models.CurrencyCode, fallback models.CurrencyCode) models.CurrencyCode {
	if !code.IsZero() {
		return code
	}
	if !fallback.IsZero() {
		return fallback
	}
	return models.FallbackCurrency
}
