package store

import "errors"

// Sentinel errors returned by Store implementations. The service layer
// translates these into user-facing domain errors; nothing here carries
// HTTP semantics.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyExists     = errors.New("record already exists")
	ErrNoAvailableCopies = errors.New("no available copies")
	ErrLoanClosed        = errors.New("loan already returned")
	ErrLoanExtended      = errors.New("loan already extended")
)
