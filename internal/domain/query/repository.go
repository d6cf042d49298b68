package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Insert(ctx context.Context, q *Query) error
	GetByID(ctx context.Context, id uuid.UUID) (*Query, error)
	List(ctx context.Context, filter ListFilter) ([]Query, error)
	Claim(ctx context.Context, id uuid.UUID) (*Query, error)
	Finish(ctx context.Context, id uuid.UUID, status Status, resultSummary string, responseTimeMs int, errorMessage string) (*Query, error)
}

// QueryRepository provides query audit-log persistence over PostgreSQL.
type QueryRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) Insert(ctx context.Context, q *Query) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.Status = StatusPending
	q.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO query_requests (
			id, officer_id, type, input, source, credits_used, status,
			session_id, platform, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, q.ID, q.OfficerID, string(q.Type), q.Input, q.Source, q.CreditsUsed,
		string(q.Status), q.SessionID, q.Platform, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert query", ErrInternal)
	}

	return nil
}

func (r *QueryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Query, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var q Query
	err := r.db.GetContext(ctx2, &q, `SELECT * FROM query_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get query", ErrInternal)
	}

	return &q, nil
}

func (r *QueryRepository) List(ctx context.Context, filter ListFilter) ([]Query, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `SELECT * FROM query_requests WHERE 1=1`
	args := make([]interface{}, 0, 6)
	idx := 1

	if filter.OfficerID != nil {
		base += fmt.Sprintf(" AND officer_id = $%d", idx)
		args = append(args, *filter.OfficerID)
		idx++
	}
	if filter.Type != nil && *filter.Type != "" {
		base += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, string(*filter.Type))
		idx++
	}
	if filter.Status != nil && *filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(*filter.Status))
		idx++
	}
	if filter.DateFrom != nil {
		base += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filter.DateFrom)
		idx++
	}
	if filter.DateTo != nil {
		base += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filter.DateTo)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	base += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	queries := make([]Query, 0)
	if err := r.db.SelectContext(ctx2, &queries, base, args...); err != nil {
		return nil, fmt.Errorf("%w: list queries", ErrInternal)
	}

	return queries, nil
}

// Claim atomically moves a Pending query to Processing. It is the guard
// against double completion: only one caller wins the transition, so the
// deduction that follows happens at most once.
func (r *QueryRepository) Claim(ctx context.Context, id uuid.UUID) (*Query, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var q Query
	err := r.db.GetContext(ctx2, &q, `
		UPDATE query_requests
		SET status = 'Processing'
		WHERE id = $1 AND status = 'Pending'
		RETURNING *
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either unknown or already claimed/completed
			existing, gerr := r.GetByID(ctx2, id)
			if gerr != nil {
				return nil, gerr
			}
			if existing.Status.Terminal() || existing.Status == StatusProcessing {
				return nil, ErrAlreadyCompleted
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: claim query", ErrInternal)
	}

	return &q, nil
}

func (r *QueryRepository) Finish(ctx context.Context, id uuid.UUID, status Status, resultSummary string, responseTimeMs int, errorMessage string) (*Query, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var summary, errMsg *string
	if resultSummary != "" {
		summary = &resultSummary
	}
	if errorMessage != "" {
		errMsg = &errorMessage
	}
	var respTime *int
	if responseTimeMs > 0 {
		respTime = &responseTimeMs
	}

	var q Query
	err := r.db.GetContext(ctx2, &q, `
		UPDATE query_requests
		SET status = $2, result_summary = $3, response_time_ms = $4,
		    error_message = $5, completed_at = NOW()
		WHERE id = $1 AND status = 'Processing'
		RETURNING *
	`, id, string(status), summary, respTime, errMsg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("%w: finish query", ErrInternal)
	}

	return &q, nil
}
