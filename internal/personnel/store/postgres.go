package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ett/internal/personnel/models"
	id "ett/pkg/domain"
	"ett/pkg/platform/sentinel"
	"ett/pkg/platform/tx"
)

// PostgresStore reads entities and their users from PostgreSQL. It is pure
// I/O; staffing rules live in the vacancy engine.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindEntity(ctx context.Context, entityID id.EntityID) (*models.Entity, error) {
	query := `
		SELECT entity_id, entity_name, description, active, create_timestamp, update_timestamp
		FROM entities
		WHERE entity_id = $1
	`
	var (
		e       models.Entity
		rawID   uuid.UUID
		active  string
		updated sql.NullTime
	)
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(entityID)).
		Scan(&rawID, &e.Name, &e.Description, &active, &e.CreatedAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", entityID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find entity: %w", err)
	}
	e.ID = id.EntityID(rawID)
	e.Active = id.YesNo(active)
	if updated.Valid {
		e.UpdatedAt = &updated.Time
	}
	return &e, nil
}

func (s *PostgresStore) ListUsersByEntity(ctx context.Context, entityID id.EntityID) ([]*models.User, error) {
	query := `
		SELECT entity_id, email, role, active, fullname, create_timestamp, update_timestamp
		FROM users
		WHERE entity_id = $1
		ORDER BY create_timestamp
	`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) SaveEntity(ctx context.Context, e *models.Entity) error {
	query := `
		INSERT INTO entities (entity_id, entity_name, description, active, create_timestamp, update_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity_id) DO UPDATE SET
			entity_name = EXCLUDED.entity_name,
			description = EXCLUDED.description,
			active = EXCLUDED.active,
			update_timestamp = EXCLUDED.update_timestamp
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(e.ID), e.Name, e.Description, string(e.Active), e.CreatedAt, nullTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}
	return nil
}

// SaveUser inserts or replaces the user keyed by (entity, email, role).
func (s *PostgresStore) SaveUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (entity_id, email, role, active, fullname, create_timestamp, update_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entity_id, email, role) DO UPDATE SET
			active = EXCLUDED.active,
			fullname = EXCLUDED.fullname,
			update_timestamp = EXCLUDED.update_timestamp
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(u.EntityID), u.Email, string(u.Role), string(u.Active), u.Fullname, u.CreatedAt, nullTime(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.Email, err)
	}
	return nil
}

// SaveRoster writes an entity and its users in one transaction.
func (s *PostgresStore) SaveRoster(ctx context.Context, e *models.Entity, users []*models.User) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.SaveEntity(ctx, e); err != nil {
			return err
		}
		for _, u := range users {
			if err := s.SaveUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ListEntityIDs returns every active entity ordered by ID.
func (s *PostgresStore) ListEntityIDs(ctx context.Context) ([]id.EntityID, error) {
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, `SELECT entity_id FROM entities WHERE active = 'Y' ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("list entity ids: %w", err)
	}
	defer rows.Close()

	var ids []id.EntityID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan entity id: %w", err)
		}
		ids = append(ids, id.EntityID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity ids: %w", err)
	}
	return ids, nil
}

func scanUser(rows *sql.Rows) (*models.User, error) {
	var (
		u       models.User
		rawID   uuid.UUID
		role    string
		active  string
		updated sql.NullTime
	)
	if err := rows.Scan(&rawID, &u.Email, &role, &active, &u.Fullname, &u.CreatedAt, &updated); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s has role %q: %w", u.Email, role, sentinel.ErrInvalidState)
	}
	flag, err := id.ParseYesNo(active)
	if err != nil {
		return nil, fmt.Errorf("user %s has active flag %q: %w", u.Email, active, sentinel.ErrInvalidState)
	}
	u.EntityID = id.EntityID(rawID)
	u.Role = r
	u.Active = flag
	if updated.Valid {
		u.UpdatedAt = &updated.Time
	}
	return &u, nil
}
