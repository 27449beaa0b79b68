package extract

import (
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// Sale price sources under PRICE.targetSkuPriceInfo, highest precedence
// first. A warm-up (pre-sale) price beats the regular sale price.
var currentSalePricePaths = []string{
	"warmUpPrice",
	"salePrice",
	"salePriceString",
	"discountPrice.minActivityAmount",
}

var currentOriginalPricePaths = []string{
	"originalPrice",
	"discountPrice.minAmount",
}

// NormalizeCurrent maps the module layout served by the product detail API
// (PRICE, PRODUCT_TITLE, HEADER_IMAGE_PC, PC_RATING, SHOP_CARD_PC,
// GLOBAL_DATA) onto a draft. It returns nil when none of those modules exist.
func NormalizeCurrent(result map[string]interface{}, defaultCurrency models.CurrencyCode) *models.Draft {
	if firstPresent(result, "PRICE", "PRODUCT_TITLE", "HEADER_IMAGE_PC", "GLOBAL_DATA", "SHOP_CARD_PC", "PC_RATING") == nil {
		return nil
	}

	d := &models.Draft{}
	if code, ok := models.ParseCurrencyCode(firstString(result, "GLOBAL_DATA.globalData.currencyCode")); ok {
		d.Currency = code
	}
	if info := firstObject(result, "PRICE.targetSkuPriceInfo"); info != nil {
		d.SalePrice = firstPrice(info, d.Currency, defaultCurrency, currentSalePricePaths)
		d.OriginalPrice = firstPrice(info, d.Currency, defaultCurrency, currentOriginalPricePaths)
	}

	d.Title = firstString(result, "PRODUCT_TITLE.text", "GLOBAL_DATA.globalData.subject")

	for _, u := range asStrings(lookup(result, "HEADER_IMAGE_PC.imagePathList")) {
		addImage(d, u)
	}

	d.Rating = firstString(result, "PC_RATING.rating")
	if n, ok := asInt(lookup(result, "PC_RATING.totalValidNum")); ok {
		d.TotalReviews = n
	}
	d.Orders = firstString(result, "GLOBAL_DATA.globalData.sales")
	d.StoreName = firstString(result, "SHOP_CARD_PC.storeName", "GLOBAL_DATA.globalData.storeName")
	d.StoreLogo = firstString(result, "SHOP_CARD_PC.logo")

	return d
}

// currentSufficient accepts any price or a title.
func currentSufficient(d *models.Draft) bool {
	return d != nil && (d.HasPrice() || d.Title != "")
}
