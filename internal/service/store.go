package service

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/google/uuid"
)

// Store is the storage contract the engine is built against. It is
// satisfied by database.Repository (Postgres) and database.MemoryStore.
//
// CreateReservation must be atomic with respect to concurrent calls for
// the same (flight, seat) pair: two racing inserts may not both succeed.
// Both implementations enforce this at the storage layer (partial unique
// index / single critical section), never by an application-level check.
type Store interface {
	GetAirports(ctx context.Context) ([]database.Airport, error)

	GetAircraft(ctx context.Context, id uuid.UUID) (*database.Aircraft, error)
	GetSeatsForAircraft(ctx context.Context, aircraftID uuid.UUID) ([]database.Seat, error)
	GetSeat(ctx context.Context, id uuid.UUID) (*database.Seat, error)

	GetFlight(ctx context.Context, id uuid.UUID) (*database.Flight, error)
	SearchFlights(ctx context.Context, originCode, destinationCode string, date time.Time) ([]database.Flight, error)
	UpdateFlightStatus(ctx context.Context, id uuid.UUID, status database.FlightStatus) error

	GetOrCreatePassenger(ctx context.Context, p *database.Passenger) (*database.Passenger, error)

	CreateReservation(ctx context.Context, res *database.Reservation) error
	GetReservationByReference(ctx context.Context, ref string) (*database.Reservation, error)
	GetReservationsForPassenger(ctx context.Context, email string) ([]database.Reservation, error)
	HeldSeatIDs(ctx context.Context, flightID uuid.UUID) ([]uuid.UUID, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	TransitionReservation(ctx context.Context, ref string, from []database.ReservationStatus, to database.ReservationStatus, payment *database.PaymentStatus) (bool, error)
	CompleteFlightReservations(ctx context.Context, flightID uuid.UUID) (int, error)

	GetManifest(ctx context.Context, flightID uuid.UUID) ([]database.ManifestEntry, error)
	GetStatistics(ctx context.Context) (*database.Statistics, error)
}
