package versioning

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by Insert when a record with the same
// (acrID, version) key already exists. Callers treat it as retryable:
// re-read the latest version and try the next number.
var ErrVersionConflict = errors.New("version already exists")

// ErrVersionNotFound is returned by reads when no matching record exists.
var ErrVersionNotFound = errors.New("version not found")

// Store persists version records keyed by (acrID, version). Records are
// immutable: there is no update operation, and implementations must enforce
// key uniqueness on Insert, since allocation correctness under concurrent
// writers depends on it.
type Store interface {
	// Insert stores a record if and only if its (acrID, version) key is
	// absent. Returns ErrVersionConflict if the key exists.
	Insert(ctx context.Context, v *Version) error

	// Get returns the record for (acrID, version), or ErrVersionNotFound.
	Get(ctx context.Context, acrID string, version int) (*Version, error)

	// List returns every record for acrID in ascending version order.
	List(ctx context.Context, acrID string) ([]*Version, error)

	// Latest returns the highest-numbered record for acrID, or
	// ErrVersionNotFound when none exist.
	Latest(ctx context.Context, acrID string) (*Version, error)

	// Purge removes every record for acrID and returns how many were
	// deleted. Administrative use only; not part of the normal flow.
	Purge(ctx context.Context, acrID string) (int, error)
}
