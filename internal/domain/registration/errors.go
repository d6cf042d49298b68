package registration

import "errors"

var (
	ErrNotFound         = errors.New("registration request not found")
	ErrAlreadyProcessed = errors.New("registration request already processed")
	ErrDuplicateMobile  = errors.New("a pending request with this mobile already exists")
	ErrInternal         = errors.New("internal registration error")
)
