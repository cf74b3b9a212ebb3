package nestedset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references a node id that
	// does not exist in the forest. Record lookups by name (users, terms)
	// wrap it too.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity wraps storage-level constraint violations (duplicate keys,
	// foreign keys). The original driver error stays in the chain.
	ErrIntegrity = errors.New("integrity constraint violation")

	// ErrInvalidHierarchy is returned when a move would place a node inside
	// its own subtree.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrUnsavedEntity is returned when a hierarchy or translation operation
	// targets an entity that has no assigned id yet.
	ErrUnsavedEntity = errors.New("entity has not been saved")
)

// NotFound returns an error wrapping ErrNotFound for the given id.
func NotFound(id int64) error {
	return fmt.Errorf("node %d: %w", id, ErrNotFound)
}

// Integrity wraps a storage error so that errors.Is(err, ErrIntegrity)
// holds while the driver error remains reachable through errors.As.
func Integrity(err error) error {
	if err == nil {
		return nil
	}
	return &integrityError{err: err}
}

type integrityError struct {
	err error
}

func (e *integrityError) Error() string {
	return fmt.Sprintf("%s: %v", ErrIntegrity, e.err)
}

func (e *integrityError) Is(target error) bool {
	return target == ErrIntegrity
}

func (e *integrityError) Unwrap() error {
	return e.err
}
