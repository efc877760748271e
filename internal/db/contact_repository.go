package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(database *PostgresDB) *ContactRepository {
	return &ContactRepository{db: database.Conn}
}

const contactColumns = `id, name, email, phone, subject, message, role, user_id, status, created_at`

func scanContact(row interface{ Scan(...interface{}) error }) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Role, &m.UserID, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores an inbound contact message.
func (r *ContactRepository) Create(ctx context.Context, m *models.ContactMessage) error {
	m.ID = uuid.NewString()
	query := `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, role, user_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, m.Role, m.UserID, m.Status,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}

// List returns contact messages, newest first, with optional filters.
// Query matches name, email, subject or body, case-insensitively.
func (r *ContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages WHERE 1=1`
	args := []interface{}{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR subject ILIKE $%d OR message ILIKE $%d)", n, n, n, n)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, *m)
	}

	return messages, rows.Err()
}

// GetByID returns a single contact message, or nil.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = $1`

	m, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact message: %w", err)
	}
	return m, nil
}

// UpdateStatus moves a message through the triage states.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update contact message: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("contact message %s vanished during update", id)
	}

	return nil
}
