package officer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Create(ctx context.Context, o *Officer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Officer, error)
	List(ctx context.Context, filter ListFilter) ([]Officer, error)
	Update(ctx context.Context, o *Officer) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
	TouchLastActive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}

// OfficerRepository provides directory persistence over PostgreSQL.
type OfficerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *OfficerRepository {
	return &OfficerRepository{db: db}
}

func (r *OfficerRepository) Create(ctx context.Context, o *Officer) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	if o.RegisteredOn.IsZero() {
		o.RegisteredOn = now
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusActive
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO officers (
			id, name, mobile, telegram_id, whatsapp_id, email, status,
			department, rank, badge_number, credits_remaining, total_credits,
			total_queries, pro_access_enabled, rate_limit_per_hour,
			registered_on, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, 0, $11, $12, $13, $14, $15)
	`, o.ID, o.Name, o.Mobile, o.TelegramID, o.WhatsappID, o.Email, string(o.Status),
		o.Department, o.Rank, o.BadgeNumber, o.ProAccessEnabled, o.RateLimitPerHour,
		o.RegisteredOn, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateMobile
		}
		return fmt.Errorf("%w: create officer", ErrInternal)
	}

	return nil
}

func (r *OfficerRepository) GetByID(ctx context.Context, id uuid.UUID) (*Officer, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o Officer
	err := r.db.GetContext(ctx2, &o, `SELECT * FROM officers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get officer", ErrInternal)
	}

	return &o, nil
}

func (r *OfficerRepository) List(ctx context.Context, filter ListFilter) ([]Officer, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `SELECT * FROM officers WHERE 1=1`
	args := make([]interface{}, 0, 4)
	idx := 1

	if filter.Status != nil && *filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(*filter.Status))
		idx++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		base += fmt.Sprintf(" AND (name ILIKE $%d OR mobile ILIKE $%d OR badge_number ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+s+"%")
		idx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	base += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	officers := make([]Officer, 0)
	if err := r.db.SelectContext(ctx2, &officers, base, args...); err != nil {
		return nil, fmt.Errorf("%w: list officers", ErrInternal)
	}

	return officers, nil
}

func (r *OfficerRepository) Update(ctx context.Context, o *Officer) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Snapshot fields (credits_remaining, total_credits, total_queries)
	// are deliberately not updatable here; only the ledger writes them.
	result, err := r.db.ExecContext(ctx2, `
		UPDATE officers
		SET name = $2, mobile = $3, telegram_id = $4, whatsapp_id = $5,
		    email = $6, department = $7, rank = $8, badge_number = $9,
		    pro_access_enabled = $10, rate_limit_per_hour = $11,
		    updated_at = NOW()
		WHERE id = $1
	`, o.ID, o.Name, o.Mobile, o.TelegramID, o.WhatsappID, o.Email,
		o.Department, o.Rank, o.BadgeNumber, o.ProAccessEnabled, o.RateLimitPerHour)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateMobile
		}
		return fmt.Errorf("%w: update officer", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetStatus transitions the officer's status. Setting the current value is a
// no-op, not an error: the guarded update touches nothing when the status
// already matches, so repeated calls produce one observable change.
func (r *OfficerRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE officers
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $2
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("%w: set status", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		// Either already in this status or unknown officer
		exists, err := r.Exists(ctx2, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}

	return nil
}

func (r *OfficerRepository) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2,
		`UPDATE officers SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("%w: set avatar", ErrInternal)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *OfficerRepository) TouchLastActive(ctx context.Context, id uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2,
		`UPDATE officers SET last_active = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: touch last active", ErrInternal)
	}

	return nil
}

func (r *OfficerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete officer", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *OfficerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx2, &exists,
		`SELECT EXISTS (SELECT 1 FROM officers WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("%w: officer exists", ErrInternal)
	}

	return exists, nil
}

func (r *OfficerRepository) Stats(ctx context.Context) (*Stats, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stats Stats
	err := r.db.GetContext(ctx2, &stats, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'Active') AS active,
		       COUNT(*) FILTER (WHERE status = 'Suspended') AS suspended,
		       COUNT(*) FILTER (WHERE status = 'Inactive') AS inactive
		FROM officers
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: officer stats", ErrInternal)
	}

	return &stats, nil
}
