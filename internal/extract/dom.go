package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
)

var (
	currencyAmount  = regexp.MustCompile(`(?:R\$|US\s?\$|MX\$|€|£|₽|\$)\s?\d[\d.,]*`)
	discountWording = regexp.MustCompile(`(?i)desconto|discount|economi|save|cupom|coupon|\boff\b|-\d+%`)
	ratingNumber    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	ordersNumber    = regexp.MustCompile(`\d[\d.,]*\+?`)
)

// Leaf nodes longer than this are sentences, not price labels.
const maxPriceLabelLen = 40

// ExtractDOM reads the rendered document. When no sale price element
// matches, it scans short leaf text for a currency amount and finally
// borrows the price from a legacy layout in globalState. globalState may be nil.
func ExtractDOM(doc *goquery.Document, globalState map[string]interface{}, defaultCurrency models.CurrencyCode) *models.Draft {
	if doc == nil {
		return nil
	}

	d := &models.Draft{}
	currency := currencyOr("", defaultCurrency)

	saleText := firstText(doc.Selection, salePriceGroups)
	if saleText == "" {
		saleText = scanForPrice(doc)
	}
	if saleText != "" {
		d.SalePrice = parser.ParsePriceIn(saleText, currency)
	}
	if text := firstText(doc.Selection, originalPriceGroups); text != "" {
		d.OriginalPrice = parser.ParsePriceIn(text, currency)
	}

	if d.SalePrice == nil {
		if legacy := NormalizeLegacy(globalState, defaultCurrency); legacy != nil {
			d.SalePrice = legacy.SalePrice
			if d.OriginalPrice == nil {
				d.OriginalPrice = legacy.OriginalPrice
			}
			d.Currency = legacy.Currency
		}
	}

	d.Title = firstText(doc.Selection, titleGroups)

	for _, groups := range [][]selectorGroup{primaryImageGroups, secondaryImageGroups} {
		for _, g := range groups {
			for _, sel := range g {
				doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
					addImage(d, imageSource(s))
				})
			}
		}
	}

	if text := firstText(doc.Selection, ratingGroups); text != "" {
		d.Rating = strings.Replace(ratingNumber.FindString(text), ",", ".", 1)
	}
	if text := firstText(doc.Selection, ordersGroups); text != "" {
		d.Orders = ordersNumber.FindString(text)
	}
	d.StoreName = firstText(doc.Selection, storeGroups)
	for _, g := range storeLogoGroups {
		for _, sel := range g {
			if d.StoreLogo == "" {
				d.StoreLogo = imageSource(doc.Find(sel).First())
			}
		}
	}

	return d
}

// domSufficient requires a price, either from the markup or from the
// legacy global state.
func domSufficient(d *models.Draft) bool {
	return d != nil && d.SalePrice != nil
}

func firstText(root *goquery.Selection, groups []selectorGroup) string {
	for _, g := range groups {
		for _, sel := range g {
			var text string
			root.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text = selectionText(s)
				return text == ""
			})
			if text != "" {
				return text
			}
		}
	}
	return ""
}

func selectionText(s *goquery.Selection) string {
	if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
		return text
	}
	if content, ok := s.Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

func imageSource(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// scanForPrice walks leaf elements in document order and returns the first
// short currency amount that is not a discount or savings label.
func scanForPrice(doc *goquery.Document) string {
	var found string
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		switch goquery.NodeName(s) {
		case "script", "style", "noscript", "title":
			return true
		}

		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" || len(text) > maxPriceLabelLen || discountWording.MatchString(text) {
			return true
		}
		if m := currencyAmount.FindString(text); m != "" {
			found = m
			return false
		}
		return true
	})
	return found
}
