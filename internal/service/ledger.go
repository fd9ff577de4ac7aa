package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/google/uuid"
)

// InventoryLedger is the authoritative view of which seats are held for a
// flight. Holding is derived: a seat is held iff a live-status reservation
// references it. There is no separate counter to drift; availability is
// recomputed from the reservation store on every read.
type InventoryLedger struct {
	store   Store
	catalog *SeatCatalog
}

// NewInventoryLedger creates a ledger over the given store and catalog
func NewInventoryLedger(store Store, catalog *SeatCatalog) *InventoryLedger {
	return &InventoryLedger{store: store, catalog: catalog}
}

// AvailableSeats returns the seats of the flight's aircraft not currently
// held by a live reservation. The read is not serialized against in-flight
// claims; a momentarily stale view is acceptable. A double-claim is not,
// and Claim is where that line is held.
func (l *InventoryLedger) AvailableSeats(ctx context.Context, flightID uuid.UUID) ([]database.Seat, error) {
	flight, err := l.store.GetFlight(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("flight %s: %w", flightID, err)
	}

	seats, err := l.catalog.SeatsFor(ctx, flight.AircraftID)
	if err != nil {
		return nil, err
	}

	heldIDs, err := l.store.HeldSeatIDs(ctx, flightID)
	if err != nil {
		return nil, err
	}
	held := make(map[uuid.UUID]struct{}, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = struct{}{}
	}

	available := make([]database.Seat, 0, len(seats)-len(held))
	for _, s := range seats {
		if _, taken := held[s.ID]; !taken {
			available = append(available, s)
		}
	}
	return available, nil
}

// Claim atomically binds a seat to the reservation by inserting it. The
// storage layer rejects a second live reservation for the same (flight,
// seat) pair, which surfaces here as ErrSeatUnavailable. Release needs no
// separate operation: flipping the reservation to a non-live status frees
// the seat under the derived-hold rule.
func (l *InventoryLedger) Claim(ctx context.Context, res *database.Reservation) error {
	err := l.store.CreateReservation(ctx, res)
	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrSeatHeld) {
		return fmt.Errorf("%w: seat %s on flight %s", ErrSeatUnavailable, res.SeatNumber, res.FlightID)
	}
	if errors.Is(err, database.ErrDuplicateReference) {
		// The generator verified this reference moments ago; losing the
		// insert race on it is as improbable as a collision. Treated as a
		// retryable storage conflict since the whole book operation is
		// atomic and safe to rerun.
		return fmt.Errorf("%w: booking reference collision", ErrTransientStorage)
	}
	return err
}
