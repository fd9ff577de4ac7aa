package service

import (
	"context"
	"fmt"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/google/uuid"
)

// SeatCatalog exposes the immutable seat layout of each aircraft. Seats are
// created at fleet provisioning and never change afterwards, so the catalog
// is a pure read path.
type SeatCatalog struct {
	store Store
}

// NewSeatCatalog creates a seat catalog backed by the given store
func NewSeatCatalog(store Store) *SeatCatalog {
	return &SeatCatalog{store: store}
}

// SeatsFor returns the seats of an aircraft, business class first, ordered
// by seat number within class.
func (c *SeatCatalog) SeatsFor(ctx context.Context, aircraftID uuid.UUID) ([]database.Seat, error) {
	if _, err := c.store.GetAircraft(ctx, aircraftID); err != nil {
		return nil, fmt.Errorf("aircraft %s: %w", aircraftID, err)
	}
	return c.store.GetSeatsForAircraft(ctx, aircraftID)
}
