package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PriceObservation is one successful scrape of a product.
type PriceObservation struct {
	ID            uuid.UUID
	ProductID     string
	Title         string
	SalePrice     *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Currency      string
	Rating        string
	Orders        string
	StoreName     string
	Stage         string
	ObservedAt    time.Time
}

// OutboxWriter appends an event within a caller-owned transaction.
type OutboxWriter interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, event *OutboxEvent) error
}

type PriceObservationRepository struct {
	db     *DB
	outbox OutboxWriter
}

func NewPriceObservationRepository(db *DB, outbox OutboxWriter) *PriceObservationRepository {
	return &PriceObservationRepository{db: db, outbox: outbox}
}

// Record stores obs and its outbox event in one transaction, so the event
// is published if and only if the observation exists.
func (r *PriceObservationRepository) Record(ctx context.Context, obs *PriceObservation, event *OutboxEvent) error {
	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO price_observation (
				id, product_id, title, sale_price, original_price,
				currency, rating, orders, store_name, extraction_stage, observed_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
			)`

		_, err := tx.Exec(ctx, query,
			obs.ID, obs.ProductID, obs.Title,
			numericArg(obs.SalePrice), numericArg(obs.OriginalPrice),
			obs.Currency, obs.Rating, obs.Orders, obs.StoreName, obs.Stage, obs.ObservedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert price observation: %w", err)
		}

		if event == nil {
			return nil
		}
		return r.outbox.InsertWithTx(ctx, tx, event)
	})
}

// numericArg renders a price for a NUMERIC column, keeping NULL for
// missing prices.
func numericArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
