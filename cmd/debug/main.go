package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/config"
	"github.com/maltedev/aliexpress-scraper/internal/browser"
	"github.com/maltedev/aliexpress-scraper/internal/extract"
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// debug replays extraction against a saved product page, or fetches a live
// one and keeps its HTML and a screenshot next to the result.
func main() {
	var (
		file       = flag.String("file", "", "saved product page HTML to extract offline")
		id         = flag.String("id", "", "product id to fetch live")
		html       = flag.String("html", "debug.html", "where to save the live page HTML")
		screenshot = flag.String("screenshot", "debug.png", "where to save the live page screenshot")
		currency   = flag.String("currency", "BRL", "currency assumed when the page shows none")
		verbose    = flag.Bool("v", false, "log every extraction stage")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	code, ok := models.ParseCurrencyCode(*currency)
	if !ok {
		logger.Error("invalid currency", "currency", *currency)
		os.Exit(2)
	}

	ctx := context.Background()
	var (
		result *extract.Result
		err    error
	)
	switch {
	case *file != "":
		result, err = extractFile(ctx, *file, code, logger)
	case *id != "":
		result, err = extractLive(ctx, *id, *html, *screenshot, logger)
	default:
		fmt.Fprintln(os.Stderr, "usage: debug -file page.html | -id 1005006...")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	logger.Info("extracted", "stage", result.Stage)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Product); err != nil {
		logger.Error("failed to encode product", "error", err)
		os.Exit(1)
	}
}

func extractFile(ctx context.Context, path string, currency models.CurrencyCode, logger *slog.Logger) (*extract.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	orchestrator := extract.NewOrchestrator(extract.Config{DefaultCurrency: currency}, logger)
	return orchestrator.Run(ctx, &extract.StaticSource{HTML: string(content)})
}

func extractLive(ctx context.Context, id, htmlPath, screenshotPath string, logger *slog.Logger) (*extract.Result, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Scraper.Timeout
	opts.ExecutablePath = cfg.Browser.ExecutablePath
	opts.ProxyServer = cfg.Browser.ProxyServer

	b, err := browser.New(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer b.Close()

	url := cfg.Scraper.ProductURL(id)
	logger.Info("navigating", "url", url)

	page, err := b.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	orchestrator := extract.NewOrchestrator(extract.Config{
		CaptureTimeout:  cfg.Scraper.CaptureWait,
		DefaultCurrency: cfg.Scraper.DefaultCurrency,
	}, logger)
	result, runErr := orchestrator.Run(ctx, page)

	if content, err := page.HTML(); err != nil {
		logger.Warn("failed to get content", "error", err)
	} else if err := os.WriteFile(htmlPath, []byte(content), 0o644); err != nil {
		logger.Warn("failed to save HTML", "error", err)
	} else {
		logger.Info("HTML saved", "file", htmlPath)
	}
	if err := page.Screenshot(screenshotPath); err != nil {
		logger.Warn("failed to take screenshot", "error", err)
	} else {
		logger.Info("screenshot saved", "file", screenshotPath)
	}

	settled, cancel := context.WithTimeout(ctx, time.Millisecond)
	defer cancel()
	captured, _ := page.Responses(settled)
	logger.Info("captured api responses", "count", len(captured))

	return result, runErr
}
