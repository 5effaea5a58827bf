package services

import "errors"

// Error kinds returned by the services. Handlers translate them to
// HTTP statuses with errors.Is; callers wrap them with context via %w.
var (
	// ErrNotFound means a referenced order, listing, conversation or
	// user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the authenticated caller lacks the role or
	// ownership required for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the operation is not permitted given the
	// entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a concurrent or duplicate condition, such as an
	// existing pending order or a lost availability race.
	ErrConflict = errors.New("conflict")
)
