package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/lib/pq"
)

type NegotiationRepository struct {
	db *sql.DB
}

func NewNegotiationRepository(database *PostgresDB) *NegotiationRepository {
	return &NegotiationRepository{db: database.Conn}
}

const negotiationColumns = `id, product_id, farmer_id, customer_id, status, final_price, created_at`

func scanNegotiation(row interface{ Scan(...interface{}) error }) (*models.Negotiation, error) {
	var n models.Negotiation
	var finalPrice sql.NullFloat64
	err := row.Scan(&n.ID, &n.ProductID, &n.FarmerID, &n.CustomerID, &n.Status, &finalPrice, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if finalPrice.Valid {
		n.FinalPrice = &finalPrice.Float64
	}
	return &n, nil
}

// Create inserts a new open negotiation thread.
func (r *NegotiationRepository) Create(ctx context.Context, n *models.Negotiation) error {
	query := `
		INSERT INTO negotiations (id, product_id, farmer_id, customer_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, n.ID, n.ProductID, n.FarmerID, n.CustomerID, n.Status).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert negotiation: %w", err)
	}
	return nil
}

// GetByID returns a negotiation with its messages, or nil when absent.
func (r *NegotiationRepository) GetByID(ctx context.Context, id string) (*models.Negotiation, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE id = $1`

	n, err := scanNegotiation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}

	if err := r.attachMessages(ctx, []*models.Negotiation{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// FindOpen returns the open negotiation for (product, customer), or nil.
// The partial unique index on the table guarantees at most one exists.
func (r *NegotiationRepository) FindOpen(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE product_id = $1 AND customer_id = $2 AND status = $3`

	n, err := scanNegotiation(r.db.QueryRowContext(ctx, query, productID, customerID, models.NegotiationStatusOpen))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open negotiation: %w", err)
	}

	if err := r.attachMessages(ctx, []*models.Negotiation{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// ListOpenByProduct returns all open negotiations on a product.
func (r *NegotiationRepository) ListOpenByProduct(ctx context.Context, productID string) ([]models.Negotiation, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE product_id = $1 AND status = $2 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, productID, models.NegotiationStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to query negotiations: %w", err)
	}
	defer rows.Close()

	var refs []*models.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan negotiation: %w", err)
		}
		refs = append(refs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating negotiations: %w", err)
	}

	if err := r.attachMessages(ctx, refs); err != nil {
		return nil, err
	}

	negotiations := make([]models.Negotiation, 0, len(refs))
	for _, n := range refs {
		negotiations = append(negotiations, *n)
	}
	return negotiations, nil
}

func (r *NegotiationRepository) attachMessages(ctx context.Context, negotiations []*models.Negotiation) error {
	if len(negotiations) == 0 {
		return nil
	}

	byID := make(map[string]*models.Negotiation, len(negotiations))
	ids := make([]string, 0, len(negotiations))
	for _, n := range negotiations {
		n.Messages = []models.NegotiationMessage{}
		byID[n.ID] = n
		ids = append(ids, n.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT negotiation_id, sender_id, text, price, ts FROM negotiation_messages WHERE negotiation_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var negotiationID string
		var msg models.NegotiationMessage
		var price sql.NullFloat64
		if err := rows.Scan(&negotiationID, &msg.SenderID, &msg.Text, &price, &msg.Timestamp); err != nil {
			return fmt.Errorf("failed to scan message: %w", err)
		}
		if price.Valid {
			msg.Price = &price.Float64
		}
		if n, ok := byID[negotiationID]; ok {
			n.Messages = append(n.Messages, msg)
		}
	}
	return rows.Err()
}

// AppendMessage durably appends one message. A single insert, so two racing
// posts on the same thread both land.
func (r *NegotiationRepository) AppendMessage(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO negotiation_messages (negotiation_id, sender_id, text, price, ts) VALUES ($1, $2, $3, $4, $5)`,
		negotiationID, msg.SenderID, msg.Text, msg.Price, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// Close moves a negotiation into a terminal status, recording the final price
// when one was resolved.
func (r *NegotiationRepository) Close(ctx context.Context, id, status string, finalPrice *float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE negotiations SET status = $1, final_price = $2 WHERE id = $3`,
		status, finalPrice, id)
	if err != nil {
		return fmt.Errorf("failed to close negotiation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("negotiation %s vanished during close", id)
	}

	return nil
}
