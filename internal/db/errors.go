package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrHuntNotFound = errors.New("hunt record not found")
)
