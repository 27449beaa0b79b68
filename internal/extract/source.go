package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// Source supplies the inputs of one product page. Implementations own all
// I/O; the orchestrator only reads.
type Source interface {
	// Responses blocks until the page's product API responses have arrived
	// or ctx is done. On ctx expiry it returns what was captured so far
	// together with ctx.Err().
	Responses(ctx context.Context) ([]models.CapturedResponse, error)
	// GlobalState returns the page's bootstrap data object, or nil.
	GlobalState(ctx context.Context) (map[string]interface{}, error)
	Document(ctx context.Context) (*goquery.Document, error)
	// Scripts returns the bodies of inline script elements.
	Scripts(ctx context.Context) ([]string, error)
}

// StaticSource serves inputs collected earlier, such as a saved page.
// When ScriptBodies is nil they are taken from HTML.
type StaticSource struct {
	Captured     []models.CapturedResponse
	State        map[string]interface{}
	HTML         string
	ScriptBodies []string

	doc *goquery.Document
}

func (s *StaticSource) Responses(context.Context) ([]models.CapturedResponse, error) {
	return s.Captured, nil
}

func (s *StaticSource) GlobalState(context.Context) (map[string]interface{}, error) {
	return s.State, nil
}

func (s *StaticSource) Document(context.Context) (*goquery.Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.HTML))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	s.doc = doc
	return doc, nil
}

func (s *StaticSource) Scripts(ctx context.Context) ([]string, error) {
	if s.ScriptBodies != nil {
		return s.ScriptBodies, nil
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return InlineScripts(doc), nil
}

// InlineScripts collects the text of script elements without a src.
func InlineScripts(doc *goquery.Document) []string {
	var out []string
	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	})
	return out
}
