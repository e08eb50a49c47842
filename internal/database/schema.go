package database

import (
	"database/sql"
	"fmt"
)

// schema holds the DDL for the record store. The statements are idempotent
// so ApplySchema can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS generation_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cell_size INTEGER NOT NULL,
		num_trajectories INTEGER NOT NULL,
		trajectory_len INTEGER NOT NULL DEFAULT 0,
		generation_method TEXT NOT NULL,
		source_file TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS generated_trajectories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		config_id INTEGER NOT NULL,
		file_path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (config_id) REFERENCES generation_configs(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_config ON generated_trajectories(config_id)`,
}

// ApplySchema creates the tables used by the record store
func ApplySchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
