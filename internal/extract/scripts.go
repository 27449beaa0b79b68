package extract

import (
	"regexp"

	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
)

// Each pattern ends right where an object literal starts. Within one script
// runParams is tried first, then the other bootstrap globals.
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`window\.runParams\s*=\s*\{\s*data\s*:\s*`),
	regexp.MustCompile(`(?m)^\s*data\s*:\s*`),
	regexp.MustCompile(`window\.__INIT_DATA__\s*=\s*`),
	regexp.MustCompile(`window\._d_c_\.DCData\s*=\s*`),
}

// ExtractScripts searches inline script bodies for embedded product JSON and
// returns the first blob the legacy normalizer accepts. Scripts are scanned in
// document order; an earlier script wins regardless of which pattern it hits.
func ExtractScripts(scripts []string, defaultCurrency models.CurrencyCode) *models.Draft {
	for _, script := range scripts {
		for _, pattern := range scriptPatterns {
			for _, loc := range pattern.FindAllStringIndex(script, -1) {
				literal := balancedObject(script[loc[1]:])
				if literal == "" {
					continue
				}
				obj, err := parser.UnwrapObject(literal)
				if err != nil {
					continue
				}
				if d := NormalizeLegacy(obj, defaultCurrency); d != nil {
					return d
				}
			}
		}
	}
	return nil
}

// balancedObject returns the object literal at the start of s, matching
// braces outside of string literals. It returns "" when s does not start
// with "{" or the object is never closed.
func balancedObject(s string) string {
	if len(s) == 0 || s[0] != '{' {
		return ""
	}

	var (
		depth    int
		quote    byte
		escaped  bool
		inString bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString, quote = true, c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
