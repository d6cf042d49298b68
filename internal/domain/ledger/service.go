package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Service defines the credit ledger operations.
type Service interface {
	// Append validates and appends one transaction for the officer.
	// amount is a positive integer for Renewal, Top-up, Refund and
	// Deduction (the action determines the sign); for Adjustment the
	// caller supplies the signed value explicitly.
	Append(ctx context.Context, officerID uuid.UUID, action Action, amount int, meta Meta) (*Transaction, error)

	// BalanceOf returns the new_balance of the officer's latest
	// transaction, or 0 if none exist.
	BalanceOf(ctx context.Context, officerID uuid.UUID) (int, error)

	// History returns transactions in insertion order, optionally
	// filtered by action kind and time range.
	History(ctx context.Context, filter Filter) ([]Transaction, error)
}

type service struct {
	repo Repository
}

// NewService creates a ledger service backed by PostgreSQL
func NewService(db *sqlx.DB) Service {
	return &service{repo: NewRepository(db)}
}

func (s *service) Append(ctx context.Context, officerID uuid.UUID, action Action, amount int, meta Meta) (*Transaction, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}

	var signed int
	switch action {
	case ActionAdjustment:
		// Correction primitive: the caller chooses the sign
		if amount == 0 {
			return nil, ErrInvalidAmount
		}
		signed = amount
	case ActionDeduction:
		if amount <= 0 {
			return nil, ErrInvalidAmount
		}
		signed = -amount
	default:
		if amount <= 0 {
			return nil, ErrInvalidAmount
		}
		signed = amount
	}

	if meta.Remarks == "" {
		meta.Remarks = fmt.Sprintf("%s - %d credits", action, abs(signed))
	}

	return s.repo.Append(ctx, officerID, action, signed, meta)
}

func (s *service) BalanceOf(ctx context.Context, officerID uuid.UUID) (int, error) {
	return s.repo.LatestBalance(ctx, officerID)
}

func (s *service) History(ctx context.Context, filter Filter) ([]Transaction, error) {
	return s.repo.List(ctx, filter)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
