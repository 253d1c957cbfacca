package eventtype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "rng/pkg/errors"
	"rng/pkg/metrics"
)

const uniqueViolation = "23505"

// Source lists the event type configs fed to the route deriver.
type Source interface {
	ListEnabled(ctx context.Context) ([]Config, error)
}

type Repository interface {
	Source
	Create(ctx context.Context, cfg *Config) error
	List(ctx context.Context) ([]Config, error)
	Get(ctx context.Context, entityType string) (*Config, error)
	Update(ctx context.Context, cfg *Config) error
	Delete(ctx context.Context, entityType string) error
}

type PostgresRepository struct {
	db      *sql.DB
	service string
}

func NewPostgresRepository(db *sql.DB, service string) *PostgresRepository {
	return &PostgresRepository{db: db, service: service}
}

const selectColumns = `id, entity_type, label, enabled, registration_types, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, cfg *Config) (err error) {
	defer r.observe("create", time.Now(), &err)

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.RegistrationTypes == nil {
		cfg.RegistrationTypes = []string{}
	}
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	query := `
		INSERT INTO event_type_configs (id, entity_type, label, enabled, registration_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		cfg.ID, cfg.EntityType, cfg.Label, cfg.Enabled,
		pq.Array(cfg.RegistrationTypes), cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return pkgerrors.ErrConflict.WithCause(err).
				WithDetail("message", fmt.Sprintf("event type '%s' already exists", cfg.EntityType))
		}
		return fmt.Errorf("failed to create event type config: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, entityType string) (cfg *Config, err error) {
	defer r.observe("get", time.Now(), &err)

	query := `SELECT ` + selectColumns + ` FROM event_type_configs WHERE entity_type = $1`

	cfg, err = scanConfig(r.db.QueryRowContext(ctx, query, entityType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithCause(err).WithDetail("entity_type", entityType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event type config: %w", err)
	}
	return cfg, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Config, error) {
	return r.list(ctx, "list", `SELECT `+selectColumns+` FROM event_type_configs ORDER BY entity_type`)
}

func (r *PostgresRepository) ListEnabled(ctx context.Context) ([]Config, error) {
	return r.list(ctx, "list_enabled", `SELECT `+selectColumns+` FROM event_type_configs WHERE enabled ORDER BY entity_type`)
}

func (r *PostgresRepository) list(ctx context.Context, operation, query string) (configs []Config, err error) {
	defer r.observe(operation, time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list event type configs: %w", err)
	}
	defer rows.Close()

	configs = make([]Config, 0)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event type config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, cfg *Config) (err error) {
	defer r.observe("update", time.Now(), &err)

	if cfg.RegistrationTypes == nil {
		cfg.RegistrationTypes = []string{}
	}
	cfg.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE event_type_configs
		SET label = $1, enabled = $2, registration_types = $3, updated_at = $4
		WHERE entity_type = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		cfg.Label, cfg.Enabled, pq.Array(cfg.RegistrationTypes), cfg.UpdatedAt, cfg.EntityType,
	)
	if err != nil {
		return fmt.Errorf("failed to update event type config: %w", err)
	}
	return requireAffected(res, cfg.EntityType)
}

func (r *PostgresRepository) Delete(ctx context.Context, entityType string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, `DELETE FROM event_type_configs WHERE entity_type = $1`, entityType)
	if err != nil {
		return fmt.Errorf("failed to delete event type config: %w", err)
	}
	return requireAffected(res, entityType)
}

// HasEntityType reports whether a config designates entityType, enabled or not.
func (r *PostgresRepository) HasEntityType(ctx context.Context, entityType string) (exists bool, err error) {
	defer r.observe("exists", time.Now(), &err)

	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_type_configs WHERE entity_type = $1)`, entityType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event type config: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) observe(operation string, start time.Time, err *error) {
	metrics.ObserveQuery(r.service, "postgres", operation, start, *err)
}

func requireAffected(res sql.Result, entityType string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("entity_type", entityType)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row scanner) (*Config, error) {
	var (
		cfg   Config
		label sql.NullString
	)
	if err := row.Scan(
		&cfg.ID, &cfg.EntityType, &label, &cfg.Enabled,
		pq.Array(&cfg.RegistrationTypes), &cfg.CreatedAt, &cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cfg.Label = label.String
	if cfg.RegistrationTypes == nil {
		cfg.RegistrationTypes = []string{}
	}
	return &cfg, nil
}
