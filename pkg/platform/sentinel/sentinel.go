package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator clients
// return these (optionally wrapped) so services can translate them into domain
// errors without knowing which backend produced them.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrConflict: a storage-level uniqueness constraint rejected the write
//   - ErrInvalidState: row was not in the state the conditional write expected
//   - ErrUnavailable: backend or collaborator could not answer
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
