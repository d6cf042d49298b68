package query

import (
	"time"

	"github.com/google/uuid"
)

// Type is the lookup kind
type Type string

const (
	TypeOSINT Type = "OSINT"
	TypePRO   Type = "PRO"
)

// Valid reports whether t is a known query type
func (t Type) Valid() bool {
	return t == TypeOSINT || t == TypePRO
}

// Status is the query lifecycle status
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusSuccess    Status = "Success"
	StatusFailed     Status = "Failed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status is final
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Query is one OSINT/PRO lookup event. The ledger is the sole balance
// mutator a completed query triggers: a Success settles exactly one
// Deduction transaction.
type Query struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OfficerID uuid.UUID `db:"officer_id" json:"officer_id"`
	Type      Type      `db:"type" json:"type"`
	Input     string    `db:"input" json:"input"`
	Source    string    `db:"source" json:"source"`

	ResultSummary  *string `db:"result_summary" json:"result_summary,omitempty"`
	CreditsUsed    int     `db:"credits_used" json:"credits_used"`
	Status         Status  `db:"status" json:"status"`
	ResponseTimeMs *int    `db:"response_time_ms" json:"response_time_ms,omitempty"`
	ErrorMessage   *string `db:"error_message" json:"error_message,omitempty"`

	SessionID *string `db:"session_id" json:"session_id,omitempty"`
	Platform  *string `db:"platform" json:"platform,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	// RateLimitRemaining is filled on Record when the limiter is active;
	// it is not persisted.
	RateLimitRemaining *int `db:"-" json:"rate_limit_remaining,omitempty"`
}

// ListFilter restricts a query listing
type ListFilter struct {
	OfficerID *uuid.UUID
	Type      *Type
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}
