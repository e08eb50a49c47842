package repository

import (
	"database/sql"
	"fmt"

	"github.com/palmto/trajgen-backend-go/internal/models"
)

// ConfigRepository handles database operations for generation configurations
type ConfigRepository struct {
	db *sql.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Create inserts a generation configuration and fills in its ID
func (r *ConfigRepository) Create(cfg *models.GenerationConfig) error {
	result, err := r.db.Exec(
		`INSERT INTO generation_configs
			(cell_size, num_trajectories, trajectory_len, generation_method, source_file)
		VALUES (?, ?, ?, ?, ?)`,
		cfg.CellSize, cfg.NumTrajectories, cfg.TrajectoryLen, cfg.GenerationMethod, cfg.SourceFile,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get config id: %w", err)
	}
	cfg.ID = id

	return r.db.QueryRow(
		"SELECT created_at FROM generation_configs WHERE id = ?", id,
	).Scan(&cfg.CreatedAt)
}

// GetByID retrieves a single generation configuration
func (r *ConfigRepository) GetByID(id int64) (*models.GenerationConfig, error) {
	var cfg models.GenerationConfig
	err := r.db.QueryRow(
		`SELECT id, cell_size, num_trajectories, trajectory_len, generation_method, source_file, created_at
		FROM generation_configs WHERE id = ?`, id,
	).Scan(
		&cfg.ID, &cfg.CellSize, &cfg.NumTrajectories, &cfg.TrajectoryLen,
		&cfg.GenerationMethod, &cfg.SourceFile, &cfg.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generation config %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query generation config: %w", err)
	}
	return &cfg, nil
}

// List retrieves generation configurations with pagination, newest first
func (r *ConfigRepository) List(limit, offset int) ([]models.GenerationConfig, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM generation_configs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count generation configs: %w", err)
	}

	rows, err := r.db.Query(
		`SELECT id, cell_size, num_trajectories, trajectory_len, generation_method, source_file, created_at
		FROM generation_configs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query generation configs: %w", err)
	}
	defer rows.Close()

	var configs []models.GenerationConfig
	for rows.Next() {
		var cfg models.GenerationConfig
		if err := rows.Scan(
			&cfg.ID, &cfg.CellSize, &cfg.NumTrajectories, &cfg.TrajectoryLen,
			&cfg.GenerationMethod, &cfg.SourceFile, &cfg.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan generation config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, total, rows.Err()
}
