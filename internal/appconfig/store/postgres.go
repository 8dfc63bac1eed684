package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ett/internal/appconfig/models"
	"ett/pkg/platform/sentinel"
)

// PostgresStore persists policy values in the app_configs table. It is pure
// I/O; unit conversion lives on models.AppConfig.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetAppConfig(ctx context.Context, name models.ConfigName) (*models.AppConfig, error) {
	var cfg models.AppConfig
	var rawName string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, value, description FROM app_configs WHERE name = $1`,
		string(name),
	).Scan(&rawName, &cfg.Seconds, &cfg.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config %s: %w", name, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get app config: %w", err)
	}
	cfg.Name = models.ConfigName(rawName)
	return &cfg, nil
}

// Upsert writes a policy value, replacing any existing one.
func (s *PostgresStore) Upsert(ctx context.Context, cfg *models.AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("app config is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_configs (name, value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			description = EXCLUDED.description
	`, string(cfg.Name), cfg.Seconds, cfg.Description)
	if err != nil {
		return fmt.Errorf("upsert app config: %w", err)
	}
	return nil
}

// List returns every stored policy ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]*models.AppConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value, description FROM app_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list app configs: %w", err)
	}
	defer rows.Close()

	var out []*models.AppConfig
	for rows.Next() {
		var cfg models.AppConfig
		var rawName string
		if err := rows.Scan(&rawName, &cfg.Seconds, &cfg.Description); err != nil {
			return nil, fmt.Errorf("scan app config: %w", err)
		}
		cfg.Name = models.ConfigName(rawName)
		out = append(out, &cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app configs: %w", err)
	}
	return out, nil
}
