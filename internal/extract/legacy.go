package extract

import (
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// Older product pages shipped one of two module generations:
// "*Module" (priceModule, titleModule, ...) and later "*Component"
// (priceComponent, productInfoComponent, ...). Each field lists its
// candidates in resolution order.
var (
	legacyModuleKeys = []string{
		"priceModule", "priceComponent",
		"titleModule", "productInfoComponent",
		"imageModule", "imageComponent",
		"storeModule", "sellerComponent",
	}

	// Payloads sometimes arrive wrapped; these are descended when the
	// modules are not at the top level.
	legacyWrappers = []string{"data", "result", "data.result", "root.fields", "data.root.fields"}

	legacyActivityPricePaths = []string{
		"priceModule.minActivityAmount",
		"priceModule.formatedActivityPrice",
		"priceComponent.discountPrice.minActivityAmount",
		"priceComponent.discountPrice.formatedActivityPrice",
	}
	legacyListPricePaths = []string{
		"priceModule.minAmount",
		"priceModule.formatedPrice",
		"priceComponent.origPrice.minAmount",
		"priceComponent.origPrice.formatedPrice",
	}
	legacyCurrencyPaths = []string{
		"currencyComponent.currencyCode",
		"commonModule.currencyCode",
		"webEnv.currency",
	}
	legacyTitlePaths   = []string{"titleModule.subject", "productInfoComponent.subject"}
	legacyImagePaths   = []string{"imageModule.imagePathList", "imageComponent.imagePathList"}
	legacyRatingPaths  = []string{"titleModule.feedbackRating.averageStar", "feedbackComponent.evarageStar", "feedbackComponent.averageStar"}
	legacyReviewsPaths = []string{"titleModule.feedbackRating.totalValidNum", "feedbackComponent.totalValidNum"}
	legacyOrdersPaths  = []string{"titleModule.formatTradeCount", "titleModule.tradeCount", "tradeComponent.formatTradeCount", "tradeComponent.tradeCount"}
	legacyStorePaths   = []string{"storeModule.storeName", "sellerComponent.storeName"}
	legacyLogoPaths    = []string{"storeModule.storeLogo", "sellerComponent.storeLogo"}
)

// NormalizeLegacy maps the older module layouts onto a draft. Unlike
// NormalizeCurrent it returns nil when no price can be found, even if a
// title is present.
func NormalizeLegacy(data map[string]interface{}, defaultCurrency models.CurrencyCode) *models.Draft {
	root := legacyRoot(data)
	if root == nil {
		return nil
	}

	d := &models.Draft{}
	if code, ok := models.ParseCurrencyCode(firstString(root, legacyCurrencyPaths...)); ok {
		d.Currency = code
	}
	d.SalePrice = firstPrice(root, d.Currency, defaultCurrency, legacyActivityPricePaths)
	d.OriginalPrice = firstPrice(root, d.Currency, defaultCurrency, legacyListPricePaths)
	if d.SalePrice == nil {
		// No promotion running: the list price is what the buyer pays.
		d.SalePrice, d.OriginalPrice = d.OriginalPrice, nil
	}
	if !d.HasPrice() {
		return nil
	}

	d.Title = firstString(root, legacyTitlePaths...)
	for _, u := range asStrings(firstPresent(root, legacyImagePaths...)) {
		addImage(d, u)
	}
	d.Rating = firstString(root, legacyRatingPaths...)
	if n, ok := asInt(firstPresent(root, legacyReviewsPaths...)); ok {
		d.TotalReviews = n
	}
	d.Orders = firstString(root, legacyOrdersPaths...)
	d.StoreName = firstString(root, legacyStorePaths...)
	d.StoreLogo = firstString(root, legacyLogoPaths...)

	return d
}

func legacyRoot(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	if firstPresent(data, legacyModuleKeys...) != nil {
		return data
	}
	for _, w := range legacyWrappers {
		if obj := firstObject(data, w); obj != nil && firstPresent(obj, legacyModuleKeys...) != nil {
			return obj
		}
	}
	return nil
}

// firstPrice returns the first path holding a usable price. pageCurrency is
// the code the page declares, empty when it declares none.
func firstPrice(root map[string]interface{}, pageCurrency, fallback models.CurrencyCode, paths []string) *models.Price {
	for _, p := range paths {
		if price := priceFromObject(lookup(root, p), pageCurrency, fallback); price != nil {
			return price
		}
	}
	return nil
}

