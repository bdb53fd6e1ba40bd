package ledger

import "errors"

// Error taxonomy for the mutation contract. Operations wrap these sentinels
// with fmt.Errorf("%w: ...") so callers can classify failures with
// errors.Is. Every error is surfaced synchronously and the ledger is left
// unchanged on failure.
var (
	// ErrValidation indicates input violates a data-model invariant
	// (non-positive amount, empty name, empty split set, unknown category).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced id does not exist at the time of
	// the operation.
	ErrNotFound = errors.New("not found")

	// ErrReferentialIntegrity indicates a reference crosses entities
	// incorrectly (payer or split member outside the group's member list,
	// expense pointing at a nonexistent group).
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
