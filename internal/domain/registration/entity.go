package registration

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review status of a signup request
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Request is an officer signup awaiting admin review. Approval creates
// the officer record; the request itself is never deleted and keeps the
// reviewer stamp for the audit trail.
type Request struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Mobile      string    `db:"mobile" json:"mobile"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Department  *string   `db:"department" json:"department,omitempty"`
	Rank        *string   `db:"rank" json:"rank,omitempty"`
	BadgeNumber *string   `db:"badge_number" json:"badge_number,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`

	Status     Status     `db:"status" json:"status"`
	ReviewedBy *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	// OfficerID links an approved request to the officer it created
	OfficerID    *uuid.UUID `db:"officer_id" json:"officer_id,omitempty"`
	RejectReason *string    `db:"reject_reason" json:"reject_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ListFilter restricts a request listing
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}
