package blog

import (
	"errors"

	"shiftdb/pkg/ids"
	"shiftdb/pkg/store"
)

// Failure taxonomy surfaced to the API layer. Failures against the
// authoritative store are fatal to the request; failures against a
// secondary store are logged and swallowed and never appear here.
var (
	// ErrNotFound: the entity is absent in the authoritative store for
	// the current phase.
	ErrNotFound = errors.New("not found")

	// ErrValidation: a required field is missing.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey: email uniqueness violation, checked only against
	// the authoritative store.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidIdentifier: malformed external identifier.
	ErrInvalidIdentifier = ids.ErrInvalidIdentifier
)

// mapErr converts a store-level miss into the domain sentinel.
func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// retriable reports whether a target read error is a store failure worth
// falling back on. A clean miss is an answer, not a failure.
func retriable(err error) bool {
	return !errors.Is(err, store.ErrNotFound)
}
