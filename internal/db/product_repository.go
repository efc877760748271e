package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

const productColumns = `id, name, description, price, quantity, unit, offer, image_url, is_upcoming, available_date, farmer_id, created_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var availableDate sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Unit,
		&p.Offer, &p.ImageURL, &p.IsUpcoming, &availableDate, &p.FarmerID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if availableDate.Valid {
		p.AvailableDate = &availableDate.Time
	}
	return &p, nil
}

// Create inserts a new product owned by the given farmer.
func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest, farmerID string) (*models.Product, error) {
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	query := `
		INSERT INTO products (id, name, description, price, quantity, unit, offer, image_url, is_upcoming, available_date, farmer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.Name, req.Description, req.Price, req.Quantity, unit,
		req.Offer, req.ImageURL, req.IsUpcoming, req.AvailableDate, farmerID,
	)

	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// GetByID returns a single product, or nil when it does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// List returns products, newest first, optionally filtered.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}

	if filter.Upcoming != nil {
		args = append(args, *filter.Upcoming)
		query += fmt.Sprintf(" AND is_upcoming = $%d", len(args))
	}
	if filter.FarmerID != "" {
		args = append(args, filter.FarmerID)
		query += fmt.Sprintf(" AND farmer_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// Update rewrites a product's mutable fields. The farmer_id column is
// deliberately absent from the statement.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, unit = $5,
		    offer = $6, image_url = $7, is_upcoming = $8, available_date = $9
		WHERE id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Price, p.Quantity, p.Unit,
		p.Offer, p.ImageURL, p.IsUpcoming, p.AvailableDate, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("product %s vanished during update", p.ID)
	}

	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("product %s vanished during delete", id)
	}

	return nil
}
