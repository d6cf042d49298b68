package officer

import "errors"

var (
	// ErrNotFound is returned when the officer does not exist
	ErrNotFound = errors.New("officer not found")

	// ErrInvalidStatus is returned for an unknown lifecycle status
	ErrInvalidStatus = errors.New("invalid officer status")

	// ErrDuplicateMobile is returned when the mobile number is already registered
	ErrDuplicateMobile = errors.New("mobile number already registered")

	ErrInternal = errors.New("internal error")
)
