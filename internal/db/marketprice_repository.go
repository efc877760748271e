package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
)

type MarketPriceRepository struct {
	db *sql.DB
}

func NewMarketPriceRepository(database *PostgresDB) *MarketPriceRepository {
	return &MarketPriceRepository{db: database.Conn}
}

const marketPriceColumns = `id, product_name, category, unit, price, source, recorded_at, created_at`

// Create records a market price observation.
func (r *MarketPriceRepository) Create(ctx context.Context, req models.UploadPriceRequest) (*models.MarketPrice, error) {
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	source := req.Source
	if source == "" {
		source = "uploaded"
	}

	query := `
		INSERT INTO market_prices (id, product_name, category, unit, price, source, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + marketPriceColumns

	var mp models.MarketPrice
	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.ProductName, req.Category, unit, req.Price, source, time.Now().UTC(),
	).Scan(&mp.ID, &mp.ProductName, &mp.Category, &mp.Unit, &mp.Price, &mp.Source, &mp.RecordedAt, &mp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert market price: %w", err)
	}

	return &mp, nil
}

// Latest returns the most recent price for a product name, or nil.
func (r *MarketPriceRepository) Latest(ctx context.Context, productName string) (*models.MarketPrice, error) {
	query := `SELECT ` + marketPriceColumns + ` FROM market_prices WHERE product_name = $1 ORDER BY recorded_at DESC, created_at DESC LIMIT 1`

	var mp models.MarketPrice
	err := r.db.QueryRowContext(ctx, query, productName).
		Scan(&mp.ID, &mp.ProductName, &mp.Category, &mp.Unit, &mp.Price, &mp.Source, &mp.RecordedAt, &mp.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	return &mp, nil
}

// List returns recent prices, optionally filtered by category, capped at limit.
func (r *MarketPriceRepository) List(ctx context.Context, category string, limit int) ([]models.MarketPrice, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + marketPriceColumns + ` FROM market_prices`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY recorded_at DESC, created_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query market prices: %w", err)
	}
	defer rows.Close()

	prices := []models.MarketPrice{}
	for rows.Next() {
		var mp models.MarketPrice
		if err := rows.Scan(&mp.ID, &mp.ProductName, &mp.Category, &mp.Unit, &mp.Price, &mp.Source, &mp.RecordedAt, &mp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan market price: %w", err)
		}
		prices = append(prices, mp)
	}

	return prices, rows.Err()
}
