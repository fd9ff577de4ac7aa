package mocks

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReservationService is a mock implementation of ReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Search(ctx context.Context, originCode, destinationCode string, date time.Time) ([]service.FlightSearchResult, error) {
	args := m.Called(ctx, originCode, destinationCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.FlightSearchResult), args.Error(1)
}

func (m *MockReservationService) GetFlight(ctx context.Context, flightID uuid.UUID) (*database.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockReservationService) AvailableSeats(ctx context.Context, flightID uuid.UUID) ([]database.Seat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Seat), args.Error(1)
}

func (m *MockReservationService) Book(ctx context.Context, req service.BookRequest) (*database.Reservation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Reservation), args.Error(1)
}

func (m *MockReservationService) Cancel(ctx context.Context, bookingReference string) error {
	args := m.Called(ctx, bookingReference)
	return args.Error(0)
}

func (m *MockReservationService) CheckIn(ctx context.Context, bookingReference string) (*database.Reservation, error) {
	args := m.Called(ctx, bookingReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Reservation), args.Error(1)
}

func (m *MockReservationService) CompleteFlight(ctx context.Context, flightID uuid.UUID) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationService) Lookup(ctx context.Context, bookingReference string) (*database.Reservation, error) {
	args := m.Called(ctx, bookingReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Reservation), args.Error(1)
}

func (m *MockReservationService) ListForPassenger(ctx context.Context, email string) ([]database.Reservation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Reservation), args.Error(1)
}

func (m *MockReservationService) Manifest(ctx context.Context, flightID uuid.UUID) ([]database.ManifestEntry, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.ManifestEntry), args.Error(1)
}

func (m *MockReservationService) Airports(ctx context.Context) ([]database.Airport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Airport), args.Error(1)
}

func (m *MockReservationService) Statistics(ctx context.Context) (*database.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Statistics), args.Error(1)
}

func (m *MockReservationService) SetFlightStatus(ctx context.Context, flightID uuid.UUID, status database.FlightStatus) error {
	args := m.Called(ctx, flightID, status)
	return args.Error(0)
}
