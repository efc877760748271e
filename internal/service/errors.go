package service

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the order and negotiation services. Handlers map
// these onto HTTP statuses; services never retry and never return partial
// mutations alongside an error.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageFailure marks an unexpected backing-store error as unavailable
// rather than letting it surface as an anonymous 500.
func storageFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
