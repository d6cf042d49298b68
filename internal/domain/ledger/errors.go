package ledger

import "errors"

var (
	// ErrUnknownOfficer is returned when the officer reference does not resolve
	ErrUnknownOfficer = errors.New("officer not found")

	// ErrInvalidAmount is returned when amount is <= 0 (or 0 for adjustments)
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidAction is returned for an unknown action kind
	ErrInvalidAction = errors.New("invalid credit action")

	// ErrInsufficientBalance is returned when a deduction would drive the
	// balance below zero; the transaction is rejected and nothing is appended
	ErrInsufficientBalance = errors.New("insufficient credit balance")

	// ErrPersistence is returned when the durable commit did not complete;
	// the operation must be treated as not-happened and may be retried
	ErrPersistence = errors.New("credit transaction failed")
)
