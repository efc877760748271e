package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/lib/pq"
)

type ImpactRepository struct {
	db *sql.DB
}

func NewImpactRepository(database *PostgresDB) *ImpactRepository {
	return &ImpactRepository{db: database.Conn}
}

const impactColumns = `id, title, role, name, location, quote, stats, image_url, author_id, created_at`

// Create stores a new impact story.
func (r *ImpactRepository) Create(ctx context.Context, story *models.ImpactStory) error {
	story.ID = uuid.NewString()
	if story.Stats == nil {
		story.Stats = []string{}
	}

	query := `
		INSERT INTO impact_stories (id, title, role, name, location, quote, stats, image_url, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		story.ID, story.Title, story.Role, story.Name, story.Location,
		story.Quote, pq.Array(story.Stats), story.ImageURL, story.AuthorID,
	).Scan(&story.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert impact story: %w", err)
	}
	return nil
}

// List returns all impact stories, newest first.
func (r *ImpactRepository) List(ctx context.Context) ([]models.ImpactStory, error) {
	query := `SELECT ` + impactColumns + ` FROM impact_stories ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query impact stories: %w", err)
	}
	defer rows.Close()

	stories := []models.ImpactStory{}
	for rows.Next() {
		var s models.ImpactStory
		if err := rows.Scan(&s.ID, &s.Title, &s.Role, &s.Name, &s.Location,
			&s.Quote, pq.Array(&s.Stats), &s.ImageURL, &s.AuthorID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan impact story: %w", err)
		}
		stories = append(stories, s)
	}

	return stories, rows.Err()
}
