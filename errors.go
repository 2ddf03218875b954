package main

import "errors"

// Error taxonomy for the ledger and engine. Handlers map these to HTTP
// status codes; everything else wraps them with %w and context.
var (
	// ErrNotFound: the referenced debt or payment does not exist, or is not
	// owned by the caller. Ownership misses are deliberately indistinguishable
	// from missing rows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount: non-positive payment, malformed or non-finite money
	// input, or a non-positive total payment handed to the simulator.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvariant: a stored balance disagrees with the balance re-derived
	// from the payment history, or a mutation would drive a balance negative
	// outside the documented floor-at-zero rule. Indicates a bug, not a bad
	// request; the whole operation must have been rolled back.
	ErrInvariant = errors.New("ledger invariant violation")
)
