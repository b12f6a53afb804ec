package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "inboxai/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, a *Agent) error
	Get(ctx context.Context, id string) (*Agent, error)
	List(ctx context.Context, orgID string) ([]Agent, error)
	Update(ctx context.Context, a *Agent) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Agent) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	cfg, err := marshalConfig(a.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agents (id, org_id, name, kind, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.OrgID, a.Name, string(a.Kind), cfg, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("agent with name '%s' already exists", a.Name))
			}
		}
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("agent with name '%s' already exists", a.Name))
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Agent, error) {
	query := `
		SELECT id, org_id, name, kind, config, created_at, updated_at
		FROM agents
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("agent_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context, orgID string) ([]Agent, error) {
	query := `
		SELECT id, org_id, name, kind, config, created_at, updated_at
		FROM agents
	`
	args := []interface{}{}
	if orgID != "" {
		query += ` WHERE org_id = $1`
		args = append(args, orgID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, *a)
	}

	return agents, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *Agent) error {
	a.UpdatedAt = time.Now()

	cfg, err := marshalConfig(a.Config)
	if err != nil {
		return err
	}

	query := `
		UPDATE agents
		SET name = $1, kind = $2, config = $3, updated_at = $4
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		a.Name, string(a.Kind), cfg, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("agent_id", a.ID)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM agents WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("agent_id", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAgent(row rowScanner) (*Agent, error) {
	var a Agent
	var kind string
	var cfg []byte
	if err := row.Scan(&a.ID, &a.OrgID, &a.Name, &kind, &cfg, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Kind = Kind(kind)
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &a.Config); err != nil {
			return nil, fmt.Errorf("failed to decode agent config: %w", err)
		}
	}
	return &a, nil
}

func marshalConfig(cfg map[string]interface{}) ([]byte, error) {
	if cfg == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent config: %w", err)
	}
	return b, nil
}
