package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"github.com/maltedev/aliexpress-scraper/internal/models"
	"github.com/maltedev/aliexpress-scraper/internal/parser"
)

// Stage names a step of the extraction cascade.
type Stage string

const (
	StageAwaitingCapture Stage = "awaiting_capture"
	StageAPIResults      Stage = "api_results"
	StageGlobalState     Stage = "global_state"
	StageDOM             Stage = "dom"
	StageScripts         Stage = "scripts"
)

// DefaultCaptureTimeout bounds how long Run waits for API responses.
const DefaultCaptureTimeout = 15 * time.Second

type Config struct {
	CaptureTimeout time.Duration
	// DefaultCurrency applies when neither the payload nor the price text
	// names a currency.
	DefaultCurrency models.CurrencyCode
}

// Result is an extracted product plus the stage that produced it.
type Result struct {
	Product *models.Product
	Stage   Stage
}

// Orchestrator runs the extraction strategies in a fixed order and stops at
// the first draft that passes its strategy's acceptance check.
type Orchestrator struct {
	captureTimeout time.Duration
	currency       models.CurrencyCode
	logger         *slog.Logger
}

func NewOrchestrator(cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = DefaultCaptureTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		captureTimeout: cfg.CaptureTimeout,
		currency:       currencyOr(cfg.DefaultCurrency, ""),
		logger:         logger.With("component", "extractor"),
	}
}

type strategy struct {
	stage   Stage
	extract func(ctx context.Context) (*models.Draft, error)
}

// run holds the state of a single extraction; nothing is shared between runs.
type run struct {
	o         *Orchestrator
	src       Source
	responses []models.CapturedResponse

	state       map[string]interface{}
	stateLoaded bool
}

// Run extracts one product from src. It returns ErrExtractionExhausted when
// no strategy succeeds and ctx.Err() when ctx is cancelled mid-cascade.
func (o *Orchestrator) Run(ctx context.Context, src Source) (*Result, error) {
	responses := o.awaitCapture(ctx, src)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &run{o: o, src: src, responses: responses}
	strategies := []strategy{
		{StageAPIResults, r.fromResponses},
		{StageGlobalState, r.fromGlobalState},
		{StageDOM, r.fromDocument},
		{StageScripts, r.fromScripts},
	}

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d, err := s.extract(ctx)
		if err != nil {
			o.logger.Debug("strategy failed", "stage", s.stage, "error", err)
			continue
		}

		o.logger.Info("product data resolved",
			"stage", s.stage,
			"title", d.Title,
			"has_sale_price", d.SalePrice != nil,
		)
		return &Result{Product: Assemble(d, o.currency), Stage: s.stage}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Warn("all extraction strategies failed", "responses", len(responses))
	return nil, ErrExtractionExhausted
}

func (o *Orchestrator) awaitCapture(ctx context.Context, src Source) []models.CapturedResponse {
	waitCtx, cancel := context.WithTimeout(ctx, o.captureTimeout)
	defer cancel()

	responses, err := src.Responses(waitCtx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
	case errors.Is(err, context.DeadlineExceeded):
		o.logger.Info("capture wait elapsed",
			"error", ErrCaptureTimeout,
			"timeout", o.captureTimeout,
			"captured", len(responses),
		)
	default:
		o.logger.Warn("response capture failed", "error", err, "captured", len(responses))
	}

	o.logger.Debug("capture settled", "stage", StageAwaitingCapture, "responses", len(responses))
	return responses
}

// fromResponses tries every captured response in capture order.
func (r *run) fromResponses(ctx context.Context) (*models.Draft, error) {
	for i, resp := range r.responses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := parser.UnwrapObject(resp.Body)
		if err != nil {
			r.o.logger.Debug("skipping response", "index", i, "url", resp.URL, "error", err)
			continue
		}
		if d := r.o.normalize(apiResult(payload)); d != nil {
			return d, nil
		}
	}
	return nil, errors.Wrapf(ErrInsufficientData, "%d captured responses", len(r.responses))
}

func (r *run) fromGlobalState(ctx context.Context) (*models.Draft, error) {
	state, err := r.globalState(ctx)
	if err != nil {
		return nil, err
	}
	if d := r.o.normalize(state); d != nil {
		return d, nil
	}
	return nil, ErrInsufficientData
}

func (r *run) fromDocument(ctx context.Context) (*models.Draft, error) {
	doc, err := r.src.Document(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read document")
	}
	// The global state only supplements the DOM price here.
	state, _ := r.globalState(ctx)

	if d := ExtractDOM(doc, state, r.o.currency); domSufficient(d) {
		return d, nil
	}
	return nil, ErrInsufficientData
}

func (r *run) fromScripts(ctx context.Context) (*models.Draft, error) {
	scripts, err := r.src.Scripts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read scripts")
	}
	if d := ExtractScripts(scripts, r.o.currency); d != nil {
		return d, nil
	}
	return nil, ErrInsufficientData
}

func (r *run) globalState(ctx context.Context) (map[string]interface{}, error) {
	if r.stateLoaded {
		return r.state, nil
	}
	state, err := r.src.GlobalState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read global state")
	}
	r.state, r.stateLoaded = state, true
	return state, nil
}

// normalize applies the current layout first and the legacy layouts second.
func (o *Orchestrator) normalize(result map[string]interface{}) *models.Draft {
	if result == nil {
		return nil
	}
	if d := NormalizeCurrent(result, o.currency); currentSufficient(d) {
		return d
	}
	return NormalizeLegacy(result, o.currency)
}

// apiResult unwraps the {"data": {"result": ...}} envelope of the product
// detail API. Payloads without it are returned as is.
func apiResult(payload map[string]interface{}) map[string]interface{} {
	if result := firstObject(payload, "data.result", "result"); result != nil {
		return result
	}
	return payload
}
