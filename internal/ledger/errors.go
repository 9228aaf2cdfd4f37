package ledger

import "errors"

// Error definitions for zero-tolerance error handling. Every public operation
// rejects synchronously with one of these; none are retried internally and a
// rejected operation never leaves a partial mutation behind.
var (
	ErrInvalidPool          = errors.New("ledger: pool index out of range")
	ErrInvalidAmount        = errors.New("ledger: amount must be positive")
	ErrInsufficientPosition = errors.New("ledger: withdrawal exceeds staked amount")
	ErrPositionLocked       = errors.New("ledger: position is still within its lock period")
	ErrEmergencyDisabled    = errors.New("ledger: emergency withdraw is disabled for this pool")
	ErrNoActivePosition     = errors.New("ledger: no active position")
	ErrUnauthorized         = errors.New("ledger: caller is not authorized")
	ErrSystemPaused         = errors.New("ledger: deposits are paused")
	ErrInvalidParameter     = errors.New("ledger: parameter outside allowed bounds")
)
