package officer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents officer lifecycle status
type Status string

const (
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusInactive  Status = "Inactive"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// Officer is the directory snapshot for one registered officer.
// CreditsRemaining is a projection of the credit ledger and is written only
// by ledger appends; it is never hand-edited.
type Officer struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Mobile     string    `db:"mobile" json:"mobile"`
	TelegramID *string   `db:"telegram_id" json:"telegram_id,omitempty"`
	WhatsappID *string   `db:"whatsapp_id" json:"whatsapp_id,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Status     Status    `db:"status" json:"status"`

	Department  *string `db:"department" json:"department,omitempty"`
	Rank        *string `db:"rank" json:"rank,omitempty"`
	BadgeNumber *string `db:"badge_number" json:"badge_number,omitempty"`

	CreditsRemaining int `db:"credits_remaining" json:"credits_remaining"`
	// TotalCredits is the historical allotment ceiling, raised by each
	// Renewal/Top-up. It is not an enforced cap on the balance.
	TotalCredits int `db:"total_credits" json:"total_credits"`
	TotalQueries int `db:"total_queries" json:"total_queries"`

	ProAccessEnabled bool    `db:"pro_access_enabled" json:"pro_access_enabled"`
	RateLimitPerHour int     `db:"rate_limit_per_hour" json:"rate_limit_per_hour"`
	AvatarURL        *string `db:"avatar_url" json:"avatar_url,omitempty"`

	RegisteredOn time.Time    `db:"registered_on" json:"registered_on"`
	LastActive   sql.NullTime `db:"last_active" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IsActive returns true if the officer may run queries
func (o *Officer) IsActive() bool {
	return o.Status == StatusActive
}

// Stats holds directory counts by status
type Stats struct {
	Total     int `db:"total" json:"total"`
	Active    int `db:"active" json:"active"`
	Suspended int `db:"suspended" json:"suspended"`
	Inactive  int `db:"inactive" json:"inactive"`
}

// ListFilter restricts an officer listing
type ListFilter struct {
	Status *Status
	Search string // matches name, mobile or badge number
	Limit  int
	Offset int
}
