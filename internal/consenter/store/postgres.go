package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ett/internal/consenter/models"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
	"ett/pkg/platform/tx"
)

// PostgresStore reads and writes consenters. Event logs live in TEXT[]
// columns of ISO-8601 strings.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const consenterColumns = `email, fullname, active, consented_timestamp, rescinded_timestamp, renewed_timestamp, create_timestamp`

func (s *PostgresStore) Save(ctx context.Context, c *models.Consenter) error {
	query := `
		INSERT INTO consenters (` + consenterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			fullname = EXCLUDED.fullname,
			active = EXCLUDED.active,
			consented_timestamp = EXCLUDED.consented_timestamp,
			rescinded_timestamp = EXCLUDED.rescinded_timestamp,
			renewed_timestamp = EXCLUDED.renewed_timestamp
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		id.NormalizeEmail(c.Email),
		c.Fullname,
		string(c.Active),
		pq.Array(models.FormatTimestamps(c.ConsentedTimestamps)),
		pq.Array(models.FormatTimestamps(c.RescindedTimestamps)),
		pq.Array(models.FormatTimestamps(c.RenewedTimestamps)),
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save consenter: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Consenter, error) {
	query := `SELECT ` + consenterColumns + ` FROM consenters WHERE email = $1`
	row := tx.Q(ctx, s.db).QueryRowContext(ctx, query, id.NormalizeEmail(email))
	c, err := scanConsenter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consenter %s: %w", email, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every active consenter ordered by email.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Consenter, error) {
	query := `SELECT ` + consenterColumns + ` FROM consenters WHERE active = 'Y' ORDER BY email`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list consenters: %w", err)
	}
	defer rows.Close()

	var out []*models.Consenter
	for rows.Next() {
		c, err := scanConsenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consenters: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConsenter(row scanner) (*models.Consenter, error) {
	var (
		c                             models.Consenter
		active                        string
		consented, rescinded, renewed []string
	)
	err := row.Scan(&c.Email, &c.Fullname, &active,
		pq.Array(&consented), pq.Array(&rescinded), pq.Array(&renewed), &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan consenter: %w", err)
	}
	flag, err := id.ParseYesNo(active)
	if err != nil {
		return nil, fmt.Errorf("consenter %s has active flag %q: %w", c.Email, active, sentinel.ErrInvalidState)
	}
	c.Active = flag
	if c.ConsentedTimestamps, err = models.ParseTimestamps(consented); err != nil {
		return nil, fmt.Errorf("consenter %s consented log: %w", c.Email, err)
	}
	if c.RescindedTimestamps, err = models.ParseTimestamps(rescinded); err != nil {
		return nil, fmt.Errorf("consenter %s rescinded log: %w", c.Email, err)
	}
	if c.RenewedTimestamps, err = models.ParseTimestamps(renewed); err != nil {
		return nil, fmt.Errorf("consenter %s renewed log: %w", c.Email, err)
	}
	return &c, nil
}
