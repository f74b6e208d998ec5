package qlock

import (
	"errors"
	"fmt"
)

var (
	ErrNotHeld     = errors.New("qlock: lock is not held by the calling goroutine")
	ErrUnknownKind = errors.New("qlock: unknown lock kind")
)

// LockStateError is the panic value of a strict lock whose Unlock was
// called by a goroutine that does not hold it.
type LockStateError struct {
	Kind      Kind
	Goroutine uint64
}

func (e *LockStateError) Error() string {
	return fmt.Sprintf("qlock: Unlock: goroutine %d does not hold the %s lock", e.Goroutine, e.Kind)
}

func (e *LockStateError) Unwrap() error {
	return ErrNotHeld
}
