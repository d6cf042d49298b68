package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Insert(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, error)
	MarkApproved(ctx context.Context, id, reviewerID, officerID uuid.UUID) (*Request, error)
	MarkRejected(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*Request, error)
}

// RegistrationRepository provides signup request persistence over PostgreSQL.
type RegistrationRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Insert(ctx context.Context, req *Request) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = StatusPending
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO registration_requests (
			id, name, mobile, email, department, rank, badge_number, notes,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, req.ID, req.Name, req.Mobile, req.Email, req.Department, req.Rank,
		req.BadgeNumber, req.Notes, string(req.Status), now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateMobile
		}
		return fmt.Errorf("%w: insert request", ErrInternal)
	}

	return nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var req Request
	err := r.db.GetContext(ctx2, &req, `SELECT * FROM registration_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get request", ErrInternal)
	}

	return &req, nil
}

func (r *RegistrationRepository) List(ctx context.Context, filter ListFilter) ([]Request, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `SELECT * FROM registration_requests WHERE 1=1`
	args := make([]interface{}, 0, 3)
	idx := 1

	if filter.Status != nil && *filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(*filter.Status))
		idx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	base += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	requests := make([]Request, 0)
	if err := r.db.SelectContext(ctx2, &requests, base, args...); err != nil {
		return nil, fmt.Errorf("%w: list requests", ErrInternal)
	}

	return requests, nil
}

// MarkApproved moves a Pending request to Approved. Only one reviewer
// wins the transition; a processed request returns ErrAlreadyProcessed.
func (r *RegistrationRepository) MarkApproved(ctx context.Context, id, reviewerID, officerID uuid.UUID) (*Request, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var req Request
	err := r.db.GetContext(ctx2, &req, `
		UPDATE registration_requests
		SET status = 'Approved', reviewed_by = $2, reviewed_at = NOW(),
		    officer_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'Pending'
		RETURNING *
	`, id, reviewerID, officerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionFailure(ctx2, id)
		}
		return nil, fmt.Errorf("%w: approve request", ErrInternal)
	}

	return &req, nil
}

func (r *RegistrationRepository) MarkRejected(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*Request, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	var req Request
	err := r.db.GetContext(ctx2, &req, `
		UPDATE registration_requests
		SET status = 'Rejected', reviewed_by = $2, reviewed_at = NOW(),
		    reject_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'Pending'
		RETURNING *
	`, id, reviewerID, reasonPtr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionFailure(ctx2, id)
		}
		return nil, fmt.Errorf("%w: reject request", ErrInternal)
	}

	return &req, nil
}

func (r *RegistrationRepository) transitionFailure(ctx context.Context, id uuid.UUID) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusPending {
		return ErrAlreadyProcessed
	}
	return ErrNotFound
}
