package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/lib/pq"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// Create inserts a new order with its items and the seed tracking entry in
// one transaction. order.Tracking must already hold the initial entry.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, customer_id, farmer_id, items_total, shipping_price, total_price, payment_method, is_paid, shipping_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, orderQuery,
		order.ID, order.CustomerID, order.FarmerID, order.ItemsTotal, order.ShippingPrice,
		order.TotalPrice, order.PaymentMethod, order.IsPaid, address, order.Status,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Name, item.Price, item.Quantity); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	trackingQuery := `
		INSERT INTO order_tracking (order_id, status, note, ts)
		VALUES ($1, $2, $3, $4)
	`
	for _, entry := range order.Tracking {
		if _, err := tx.ExecContext(ctx, trackingQuery, order.ID, entry.Status, entry.Note, entry.Timestamp); err != nil {
			return fmt.Errorf("failed to insert tracking entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, customer_id, farmer_id, items_total, shipping_price, total_price, payment_method, is_paid, shipping_address, status, created_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	var address []byte
	err := row.Scan(&o.ID, &o.CustomerID, &o.FarmerID, &o.ItemsTotal, &o.ShippingPrice,
		&o.TotalPrice, &o.PaymentMethod, &o.IsPaid, &address, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}
	return &o, nil
}

// GetByID returns a single order with items and tracking log, or nil when it
// does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []*models.Order{order}
	if err := r.attachDetails(ctx, orders); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.list(ctx, "customer_id", customerID)
}

// ListByFarmer returns the orders attributed to a farmer, newest first.
// Mixed-farmer orders carry no attribution and never show up here.
func (r *OrderRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.Order, error) {
	return r.list(ctx, "farmer_id", farmerID)
}

func (r *OrderRepository) list(ctx context.Context, column, value string) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s = $1 ORDER BY created_at DESC`, orderColumns, column)

	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var refs []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		refs = append(refs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating orders: %w", err)
	}

	if err := r.attachDetails(ctx, refs); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(refs))
	for _, o := range refs {
		orders = append(orders, *o)
	}
	return orders, nil
}

// attachDetails loads items and tracking entries for a batch of orders.
func (r *OrderRepository) attachDetails(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*models.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []models.OrderItem{}
		o.Tracking = []models.TrackingEntry{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, name, price, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item models.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed iterating order items: %w", err)
	}

	trackRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, status, note, ts FROM order_tracking WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query tracking entries: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var orderID string
		var entry models.TrackingEntry
		if err := trackRows.Scan(&orderID, &entry.Status, &entry.Note, &entry.Timestamp); err != nil {
			return fmt.Errorf("failed to scan tracking entry: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Tracking = append(o.Tracking, entry)
		}
	}
	return trackRows.Err()
}

// AppendTracking sets the order's status and appends the matching tracking
// entry in one transaction, so the status column can never drift from the
// log's last row.
func (r *OrderRepository) AppendTracking(ctx context.Context, orderID string, entry models.TrackingEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, entry.Status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("order %s vanished during status update", orderID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_tracking (order_id, status, note, ts) VALUES ($1, $2, $3, $4)`,
		orderID, entry.Status, entry.Note, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert tracking entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
