package query

import "errors"

var (
	// ErrNotFound is returned when the query does not exist
	ErrNotFound = errors.New("query not found")

	// ErrAlreadyCompleted is returned when completing a query that has
	// already reached a terminal status
	ErrAlreadyCompleted = errors.New("query already completed")

	// ErrOfficerNotActive is returned when the officer may not run queries
	ErrOfficerNotActive = errors.New("officer is not active")

	// ErrProAccessDisabled is returned for a PRO query without PRO access
	ErrProAccessDisabled = errors.New("PRO access disabled for officer")

	// ErrRateLimited is returned when the officer's hourly limit is exhausted
	ErrRateLimited = errors.New("hourly query limit exceeded")

	ErrInternal = errors.New("internal error")
)
