package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Action defines the supported credit transaction kinds.
type Action string

const (
	ActionRenewal    Action = "Renewal"
	ActionTopUp      Action = "Top-up"
	ActionDeduction  Action = "Deduction"
	ActionRefund     Action = "Refund"
	ActionAdjustment Action = "Adjustment"
)

// Valid reports whether a is one of the five known action kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionRenewal, ActionTopUp, ActionDeduction, ActionRefund, ActionAdjustment:
		return true
	}
	return false
}

// Issues reports whether the action grants new allotment (raises the
// officer's total_credits ceiling).
func (a Action) Issues() bool {
	return a == ActionRenewal || a == ActionTopUp
}

// Transaction is one immutable credit ledger row. Rows are appended by the
// ledger and never updated or deleted; corrections are new Adjustment or
// Refund rows.
type Transaction struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OfficerID uuid.UUID `db:"officer_id" json:"officer_id"`

	// Seq is assigned by the database on insert and defines insertion
	// order, the only ordering guarantee. Timestamps may collide.
	Seq int64 `db:"seq" json:"seq"`

	Action Action `db:"action" json:"action"`

	// Credits is signed: positive for Renewal/Top-up/Refund and positive
	// Adjustments, negative for Deduction and negative Adjustments.
	Credits         int `db:"credits" json:"credits"`
	PreviousBalance int `db:"previous_balance" json:"previous_balance"`
	NewBalance      int `db:"new_balance" json:"new_balance"`

	PaymentMode      *string    `db:"payment_mode" json:"payment_mode,omitempty"`
	PaymentReference *string    `db:"payment_reference" json:"payment_reference,omitempty"`
	Remarks          string     `db:"remarks" json:"remarks"`
	ProcessedBy      *uuid.UUID `db:"processed_by" json:"processed_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Meta carries optional metadata attached to an append.
type Meta struct {
	PaymentMode      string
	PaymentReference string
	Remarks          string
	ProcessedBy      *uuid.UUID

	// QueryID links a Deduction to the completed query it settles; it
	// also bumps the officer's total_queries counter.
	QueryID *uuid.UUID
}

// Filter restricts a history listing.
type Filter struct {
	OfficerID *uuid.UUID
	Action    *Action
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}
