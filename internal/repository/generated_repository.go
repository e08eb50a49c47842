package repository

import (
	"database/sql"
	"fmt"

	"github.com/palmto/trajgen-backend-go/internal/models"
)

// GeneratedRepository handles database operations for generated trajectory
// file records
type GeneratedRepository struct {
	db *sql.DB
}

// NewGeneratedRepository creates a new generated trajectory repository
func NewGeneratedRepository(db *sql.DB) *GeneratedRepository {
	return &GeneratedRepository{db: db}
}

// Create inserts a generated trajectory record and fills in its ID
func (r *GeneratedRepository) Create(g *models.GeneratedTrajectory) error {
	result, err := r.db.Exec(
		"INSERT INTO generated_trajectories (config_id, file_path) VALUES (?, ?)",
		g.ConfigID, g.FilePath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generated trajectory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get generated trajectory id: %w", err)
	}
	g.ID = id

	return r.db.QueryRow(
		"SELECT created_at FROM generated_trajectories WHERE id = ?", id,
	).Scan(&g.CreatedAt)
}

// ListByConfig retrieves the generated files of one configuration
func (r *GeneratedRepository) ListByConfig(configID int64) ([]models.GeneratedTrajectory, error) {
	rows, err := r.db.Query(
		`SELECT id, config_id, file_path, created_at
		FROM generated_trajectories WHERE config_id = ? ORDER BY created_at DESC`,
		configID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated trajectories: %w", err)
	}
	defer rows.Close()

	var records []models.GeneratedTrajectory
	for rows.Next() {
		var g models.GeneratedTrajectory
		if err := rows.Scan(&g.ID, &g.ConfigID, &g.FilePath, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated trajectory: %w", err)
		}
		records = append(records, g)
	}

	return records, rows.Err()
}
