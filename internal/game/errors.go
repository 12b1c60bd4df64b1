package game

import (
	"errors"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/ledger"
)

var (
	// ErrNotFound is returned when the target account or plant does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is not legal in the
	// plant's or account's current state (wrong stage, timer already running,
	// fertilizer exhausted, plant limit reached).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned for unknown plant types and malformed parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateAccount is returned when an account already exists for the email.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrUsernameTaken is returned when a rename collides with an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrCapacityExhausted is returned when all 10,000 username suffixes for a
	// base name are taken.
	ErrCapacityExhausted = errors.New("username suffix space exhausted")

	// ErrConfiguration marks a missing species/rarity table entry. A broken
	// table is a configuration bug, never silently defaulted.
	ErrConfiguration = errors.New("configuration error")
)

// ErrInsufficientFunds mirrors the ledger sentinel so callers only need to
// match against this package's taxonomy.
var ErrInsufficientFunds = ledger.ErrInsufficientFunds
