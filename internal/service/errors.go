package service

import (
	"errors"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
)

// The storage sentinels surface through the service unchanged so callers
// can classify with a single errors.Is chain.
var (
	ErrNotFound         = database.ErrNotFound
	ErrTransientStorage = database.ErrTransient
)

var (
	// ErrSeatUnavailable means the claim race was lost. Expected under
	// concurrency; the caller should re-read availability and retry with
	// another seat.
	ErrSeatUnavailable = errors.New("seat not available")

	// ErrFlightNotBookable means the flight is not in scheduled status.
	ErrFlightNotBookable = errors.New("flight not open for booking")

	// ErrReferenceExhausted means the generator hit its retry ceiling.
	// Collision probability at 36^8 is astronomically low, so this points
	// at broken randomness or a flooded store and is alert-worthy, not
	// user-retryable.
	ErrReferenceExhausted = errors.New("booking reference space exhausted")

	// ErrCancelWindowClosed means the flight has already departed.
	ErrCancelWindowClosed = errors.New("cancellation window closed")

	// ErrInvalidTransition means the requested lifecycle transition is not
	// legal from the reservation's current status.
	ErrInvalidTransition = errors.New("invalid reservation transition")
)
