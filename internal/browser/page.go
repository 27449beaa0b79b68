package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

const globalStateScript = `() => {
	try {
		return (window.runParams && window.runParams.data) || null;
	} catch (e) {
		return null;
	}
}`

const inlineScriptsScript = `() => Array.from(document.querySelectorAll('script:not([src])'))
	.map(s => s.textContent || '')
	.filter(t => t.trim().length > 0)`

// Page is an opened product page. It serves captured responses, the
// runParams snapshot, the rendered DOM and inline scripts.
type Page struct {
	*Capture
	page playwright.Page
}

func (p *Page) GlobalState(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := p.page.Evaluate(globalStateScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read runParams: %w", err)
	}
	state, _ := v.(map[string]interface{})
	return state, nil
}

func (p *Page) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}
	return doc, nil
}

func (p *Page) Scripts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := p.page.Evaluate(inlineScriptsScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read inline scripts: %w", err)
	}
	items, _ := v.([]interface{})
	scripts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			scripts = append(scripts, s)
		}
	}
	return scripts, nil
}

// HTML returns the rendered markup, for saving a page to replay offline.
func (p *Page) HTML() (string, error) {
	return p.page.Content()
}

func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *Page) Close() error {
	return p.page.Close()
}
