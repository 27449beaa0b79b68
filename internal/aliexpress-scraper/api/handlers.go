package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/maltedev/aliexpress-scraper/internal/aliexpress-scraper/scraper"
	"github.com/maltedev/aliexpress-scraper/internal/database"
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

// ProductScraper is the part of scraper.Service the handlers call.
type ProductScraper interface {
	Scrape(ctx context.Context, productID string) (*models.Product, error)
}

// OutboxStats reports outbox backlog for the health check.
type OutboxStats interface {
	CountByStatus(ctx context.Context, statuses ...string) (int64, error)
}

const (
	pendingWarnThreshold    = 1000
	deadLetterFailThreshold = 100
)

type Handlers struct {
	scraper ProductScraper
	outbox  OutboxStats
	logger  *slog.Logger
}

// NewHandlers builds the handlers. outbox may be nil when persistence is
// disabled.
func NewHandlers(scraper ProductScraper, outbox OutboxStats, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: scraper,
		outbox:  outbox,
		logger:  logger.With("component", "api"),
	}
}

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewRouter wires the HTTP surface of the service.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Get("/scrape", h.Scrape)
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	return r
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Outbox  *OutboxHealth `json:"outbox,omitempty"`
}

type OutboxHealth struct {
	Pending    int64 `json:"pending"`
	DeadLetter int64 `json:"dead_letter"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Message: "AliExpress scraper is running",
	}
	status := http.StatusOK

	if h.outbox != nil {
		pending, pendingErr := h.outbox.CountByStatus(r.Context(), database.OutboxStatusPending, database.OutboxStatusFailed)
		if pendingErr != nil {
			h.logger.Warn("failed to count pending outbox events", "error", pendingErr)
		}
		deadLetter, deadErr := h.outbox.CountByStatus(r.Context(), database.OutboxStatusDeadLetter)
		if deadErr != nil {
			h.logger.Warn("failed to count dead letter events", "error", deadErr)
		}
		if pendingErr != nil || deadErr != nil {
			resp.Status = "error"
			resp.Message = "Outbox status unavailable"
			h.respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Outbox = &OutboxHealth{Pending: pending, DeadLetter: deadLetter}

		if pending > pendingWarnThreshold {
			resp.Status = "warning"
			resp.Message = "High number of pending outbox events"
		}
		if deadLetter > deadLetterFailThreshold {
			resp.Status = "error"
			resp.Message = "High number of dead letter events"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, resp)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Scrape handles GET /api/scrape?id=<productID>.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("id")
	if productID == "" {
		h.respondError(w, http.StatusBadRequest, "product id is required", "")
		return
	}

	product, err := h.scraper.Scrape(r.Context(), productID)
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, product)
	case errors.Is(err, scraper.ErrInvalidProductID):
		h.respondError(w, http.StatusBadRequest, "invalid product id", err.Error())
	default:
		h.logger.Error("scrape request failed",
			"product_id", productID,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to scrape product", err.Error())
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message, details string) {
	h.respondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
