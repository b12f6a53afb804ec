package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "inboxai/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, id string) (*Schedule, error)
	ListByAgent(ctx context.Context, agentID string) ([]Schedule, error)
	ListActive(ctx context.Context) ([]Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id string) error
	MarkRun(ctx context.Context, id string, ranAt time.Time) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *Schedule) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now()

	query := `
		INSERT INTO agent_schedules (id, agent_id, schedule_time, criteria_type, recipient_email, is_active, last_run_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.AgentID, s.ScheduleTime, s.CriteriaType,
		s.RecipientEmail, s.IsActive, s.LastRunAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Schedule, error) {
	query := `
		SELECT id, agent_id, schedule_time, criteria_type, recipient_email, is_active, last_run_at, created_at
		FROM agent_schedules
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var s Schedule
	err := row.Scan(
		&s.ID, &s.AgentID, &s.ScheduleTime, &s.CriteriaType,
		&s.RecipientEmail, &s.IsActive, &s.LastRunAt, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("schedule_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return &s, nil
}

func (r *PostgresRepository) ListByAgent(ctx context.Context, agentID string) ([]Schedule, error) {
	query := `
		SELECT id, agent_id, schedule_time, criteria_type, recipient_email, is_active, last_run_at, created_at
		FROM agent_schedules
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, agentID)
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]Schedule, error) {
	query := `
		SELECT id, agent_id, schedule_time, criteria_type, recipient_email, is_active, last_run_at, created_at
		FROM agent_schedules
		WHERE is_active = true
		ORDER BY created_at
	`
	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var s Schedule
		if err := rows.Scan(
			&s.ID, &s.AgentID, &s.ScheduleTime, &s.CriteriaType,
			&s.RecipientEmail, &s.IsActive, &s.LastRunAt, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *Schedule) error {
	query := `
		UPDATE agent_schedules
		SET schedule_time = $1, criteria_type = $2, recipient_email = $3, is_active = $4
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		s.ScheduleTime, s.CriteriaType, s.RecipientEmail, s.IsActive, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("schedule_id", s.ID)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM agent_schedules WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("schedule_id", id)
	}

	return nil
}

func (r *PostgresRepository) MarkRun(ctx context.Context, id string, ranAt time.Time) error {
	query := `UPDATE agent_schedules SET last_run_at = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, ranAt, id); err != nil {
		return fmt.Errorf("failed to mark schedule run: %w", err)
	}
	return nil
}
