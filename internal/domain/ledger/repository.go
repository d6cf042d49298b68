package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/osintdesk/console-api/internal/pkg/errorhandler"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	Append(ctx context.Context, officerID uuid.UUID, action Action, signed int, meta Meta) (*Transaction, error)
	LatestBalance(ctx context.Context, officerID uuid.UUID) (int, error)
	List(ctx context.Context, filter Filter) ([]Transaction, error)
}

// LedgerRepository provides the append-only credit ledger over PostgreSQL.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts one ledger row and updates the officer snapshot in a single
// database transaction. The FOR UPDATE lock on the officer row serializes
// concurrent appends for the same officer; unrelated officers do not contend.
// Either both writes commit or neither is observable.
func (r *LedgerRepository) Append(ctx context.Context, officerID uuid.UUID, action Action, signed int, meta Meta) (*Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		errorhandler.LogDatabaseError(ctx, "ledger.append.begin", err)
		return nil, fmt.Errorf("%w: begin tx", ErrPersistence)
	}
	defer tx.Rollback()

	// The snapshot row carries the new_balance of the latest transaction
	// (0 before the first append), so the locked read is both the
	// serialization point and the previous-balance read.
	var prev int
	err = tx.QueryRowContext(ctx2,
		`SELECT credits_remaining FROM officers WHERE id = $1 FOR UPDATE`,
		officerID,
	).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownOfficer
		}
		errorhandler.LogDatabaseError(ctx, "ledger.append.lock", err)
		return nil, fmt.Errorf("%w: lock officer row", ErrPersistence)
	}

	newBalance := prev + signed
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}

	txn := &Transaction{
		OfficerID:       officerID,
		Action:          action,
		Credits:         signed,
		PreviousBalance: prev,
		NewBalance:      newBalance,
		Remarks:         meta.Remarks,
		ProcessedBy:     meta.ProcessedBy,
	}
	if meta.PaymentMode != "" {
		txn.PaymentMode = &meta.PaymentMode
	}
	if meta.PaymentReference != "" {
		txn.PaymentReference = &meta.PaymentReference
	}

	err = tx.QueryRowContext(ctx2, `
		INSERT INTO credit_transactions (
			id, officer_id, action, credits, previous_balance, new_balance,
			payment_mode, payment_reference, remarks, processed_by
		)
		VALUES (
			gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id, seq, created_at
	`, officerID, string(action), signed, prev, newBalance,
		txn.PaymentMode, txn.PaymentReference, txn.Remarks, txn.ProcessedBy,
	).Scan(&txn.ID, &txn.Seq, &txn.CreatedAt)
	if err != nil {
		errorhandler.LogDatabaseError(ctx, "ledger.append.insert", err)
		return nil, fmt.Errorf("%w: insert transaction", ErrPersistence)
	}

	issued := 0
	if action.Issues() {
		issued = signed
	}
	queryBump := 0
	if action == ActionDeduction && meta.QueryID != nil {
		queryBump = 1
	}

	_, err = tx.ExecContext(ctx2, `
		UPDATE officers
		SET credits_remaining = $2,
		    total_credits = total_credits + $3,
		    total_queries = total_queries + $4,
		    updated_at = NOW()
		WHERE id = $1
	`, officerID, newBalance, issued, queryBump)
	if err != nil {
		errorhandler.LogDatabaseError(ctx, "ledger.append.snapshot", err)
		return nil, fmt.Errorf("%w: update officer snapshot", ErrPersistence)
	}

	if err := tx.Commit(); err != nil {
		errorhandler.LogDatabaseError(ctx, "ledger.append.commit", err)
		return nil, fmt.Errorf("%w: commit tx", ErrPersistence)
	}

	return txn, nil
}

// LatestBalance returns the new_balance of the most recent transaction for
// the officer, or 0 if none exist.
func (r *LedgerRepository) LatestBalance(ctx context.Context, officerID uuid.UUID) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int
	err := r.db.GetContext(ctx2, &balance, `
		SELECT new_balance FROM credit_transactions
		WHERE officer_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, officerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		errorhandler.LogDatabaseError(ctx, "ledger.latest_balance", err)
		return 0, fmt.Errorf("%w: latest balance", ErrPersistence)
	}

	return balance, nil
}

// List returns transactions matching the filter in insertion order.
func (r *LedgerRepository) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `
		SELECT id, officer_id, seq, action, credits, previous_balance, new_balance,
		       payment_mode, payment_reference, remarks, processed_by, created_at
		FROM credit_transactions
		WHERE 1=1`
	args := make([]interface{}, 0, 6)
	idx := 1

	if filter.OfficerID != nil {
		base += fmt.Sprintf(" AND officer_id = $%d", idx)
		args = append(args, *filter.OfficerID)
		idx++
	}
	if filter.Action != nil && *filter.Action != "" {
		base += fmt.Sprintf(" AND action = $%d", idx)
		args = append(args, string(*filter.Action))
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

	base = strings.TrimSpace(base) + fmt.Sprintf(" ORDER BY seq ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	transactions := make([]Transaction, 0)
	if err := r.db.SelectContext(ctx2, &transactions, base, args...); err != nil {
		errorhandler.LogDatabaseError(ctx, "ledger.list", err)
		return nil, fmt.Errorf("%w: list transactions", ErrPersistence)
	}

	return transactions, nil
}
