package extract

// selectorGroup is one markup generation; a group wins when any of its
// selectors matches an element with non-empty text. Groups are ordered
// from the current layout to generic fallbacks. Class names on product
// pages carry build hashes ("price--currentPriceText--V8_y_b5"), hence the
// substring matches.
type selectorGroup []string

var salePriceGroups = []selectorGroup{
	// 2023+ pdp
	{`[class*="price--currentPriceText"]`, `[class*="price-default--current"]`, `[class*="es--wrap"] [class*="price--current"]`},
	// 2020-2022 product-price block
	{`.product-price-current .product-price-value`, `.product-price-current`, `.uniform-banner-box-price`},
	// structured data and generic names
	{`[itemprop="price"]`, `[class*="Price_current"]`, `[class*="price-current"]`},
}

var originalPriceGroups = []selectorGroup{
	{`[class*="price--originalText"]`, `[class*="price-default--original"]`},
	{`.product-price-original .product-price-value`, `.product-price-del`, `.uniform-banner-box-discounts span`},
	{`del`, `s`, `[class*="price-original"]`},
}

var titleGroups = []selectorGroup{
	{`h1[data-pl="product-title"]`, `[class*="title--wrap"] h1`},
	{`.product-title-text`, `.product-title`},
	{`h1`, `meta[property="og:title"]`},
}

var primaryImageGroups = []selectorGroup{
	{`[class*="slider--img"] img`, `[class*="magnifier--image"]`, `[class*="image-view--previewBox"] img`},
}

var secondaryImageGroups = []selectorGroup{
	{`.images-view-item img`, `.image-viewer img`, `img[src*="alicdn.com/kf/"]`},
}

var ratingGroups = []selectorGroup{
	{`[class*="reviewer--rating"] strong`, `[data-pl="product-rating"]`},
	{`.overview-rating-average`, `.product-reviewer-reviews .rating`},
}

var ordersGroups = []selectorGroup{
	{`[class*="reviewer--sold"]`, `[data-pl="product-sold"]`},
	{`.product-reviewer-sold`, `.order-num`},
}

var storeGroups = []selectorGroup{
	{`[class*="store-header--storeName"]`, `[class*="store-detail--storeName"]`, `[class*="store-info--name"]`},
	{`.shop-name a`, `.store-name`},
}

var storeLogoGroups = []selectorGroup{
	{`[class*="store-header--storeLogo"] img`, `[class*="store-detail--storeLogo"] img`, `.shop-logo img`},
}
