package interfaces

import "errors"

// Sentinel errors shared by all repository backends. Use cases rely on
// these to translate storage outcomes into business results, so every
// backend must return them (wrapped is fine).
var (
	// ErrNotFound covers both genuinely missing entities and entities
	// that exist in another tenant; the two are indistinguishable to
	// callers on purpose.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionMismatch is the compare-and-set failure: the stored
	// version differs from the expected one, meaning a concurrent
	// writer got there first.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrAlreadyExists signals a create with a duplicate ID.
	ErrAlreadyExists = errors.New("entity already exists")
)
