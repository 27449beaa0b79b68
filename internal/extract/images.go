package extract

import (
	"regexp"
	"strings"

	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// alicdn serves thumbnails as "<name>.jpg_220x220.jpg_.webp"; the part after
// the first real extension only selects a rendition.
var imageRendition = regexp.MustCompile(`(?i)(\.(?:jpe?g|png|webp|gif|avif))_[^/]*$`)

func normalizeImageURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || strings.HasPrefix(u, "data:") {
		return ""
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return imageRendition.ReplaceAllString(u, "$1")
}

func addImage(d *models.Draft, raw string) {
	d.AddImage(normalizeImageURL(raw))
}
