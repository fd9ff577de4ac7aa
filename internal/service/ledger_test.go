package service

import (
	"context"
	"testing"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimMapsStorageConflicts(t *testing.T) {
	f := newFixture(t, time.Now().Add(24*time.Hour))
	ctx := context.Background()

	catalog := NewSeatCatalog(f.store)
	ledger := NewInventoryLedger(f.store, catalog)

	passenger, err := f.store.GetOrCreatePassenger(ctx, &database.Passenger{
		FirstName: "Claim", LastName: "Tester", Email: "claim@example.com",
	})
	require.NoError(t, err)

	seatID := f.seat1B.ID
	first := &database.Reservation{
		BookingReference: "AAAA1111",
		PassengerID:      passenger.ID,
		FlightID:         f.flight.ID,
		SeatID:           &seatID,
		TicketPrice:      150,
		Status:           database.ReservationStatusConfirmed,
		PaymentStatus:    database.PaymentStatusPaid,
	}
	require.NoError(t, ledger.Claim(ctx, first))

	// Same seat, different reference: the losing claim surfaces as
	// ErrSeatUnavailable, not a raw storage error.
	second := &database.Reservation{
		BookingReference: "BBBB2222",
		PassengerID:      passenger.ID,
		FlightID:         f.flight.ID,
		SeatID:           &seatID,
		TicketPrice:      150,
		Status:           database.ReservationStatusConfirmed,
		PaymentStatus:    database.PaymentStatusPaid,
	}
	err = ledger.Claim(ctx, second)
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	// Different seat but a reference that slipped past the generator's
	// check: retryable conflict, never a silent success.
	otherSeatID := f.seat1A.ID
	dup := &database.Reservation{
		BookingReference: "AAAA1111",
		PassengerID:      passenger.ID,
		FlightID:         f.flight.ID,
		SeatID:           &otherSeatID,
		TicketPrice:      350,
		Status:           database.ReservationStatusConfirmed,
		PaymentStatus:    database.PaymentStatusPaid,
	}
	err = ledger.Claim(ctx, dup)
	assert.ErrorIs(t, err, ErrTransientStorage)
}

func TestAvailableSeatsUnknownFlight(t *testing.T) {
	f := newFixture(t, time.Now().Add(24*time.Hour))
	ledger := NewInventoryLedger(f.store, NewSeatCatalog(f.store))

	_, err := ledger.AvailableSeats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
