package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BusinessClassSurcharge is the flat premium added to the flight's base
// price for a business-class seat.
const BusinessClassSurcharge = 200.00

// BookRequest carries everything needed to create a reservation
type BookRequest struct {
	FlightID       uuid.UUID `json:"flightId"`
	SeatID         uuid.UUID `json:"seatId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PassportNumber string    `json:"passportNumber,omitempty"`
	// TicketPrice overrides the computed fare when positive.
	TicketPrice float64 `json:"ticketPrice,omitempty"`
}

// FlightSearchResult pairs a flight with its derived availability
type FlightSearchResult struct {
	Flight         database.Flight                `json:"flight"`
	AvailableSeats int                            `json:"availableSeats"`
	PriceByClass   map[database.SeatClass]float64 `json:"priceByClass"`
}

// AvailabilityNotifier receives seat-holding changes, e.g. to push them to
// WebSocket clients watching a flight. Implementations must not block.
type AvailabilityNotifier interface {
	SeatClaimed(flightID uuid.UUID, seatNumber string, available int)
	SeatReleased(flightID uuid.UUID, seatNumber string, available int)
}

// ReservationService defines the reservation engine interface
type ReservationService interface {
	Search(ctx context.Context, originCode, destinationCode string, date time.Time) ([]FlightSearchResult, error)
	GetFlight(ctx context.Context, flightID uuid.UUID) (*database.Flight, error)
	AvailableSeats(ctx context.Context, flightID uuid.UUID) ([]database.Seat, error)
	Book(ctx context.Context, req BookRequest) (*database.Reservation, error)
	Cancel(ctx context.Context, bookingReference string) error
	CheckIn(ctx context.Context, bookingReference string) (*database.Reservation, error)
	CompleteFlight(ctx context.Context, flightID uuid.UUID) (int, error)
	Lookup(ctx context.Context, bookingReference string) (*database.Reservation, error)
	ListForPassenger(ctx context.Context, email string) ([]database.Reservation, error)
	Manifest(ctx context.Context, flightID uuid.UUID) ([]database.ManifestEntry, error)
	Airports(ctx context.Context) ([]database.Airport, error)
	Statistics(ctx context.Context) (*database.Statistics, error)
	SetFlightStatus(ctx context.Context, flightID uuid.UUID, status database.FlightStatus) error
}

// reservationService implements ReservationService
type reservationService struct {
	store    Store
	catalog  *SeatCatalog
	ledger   *InventoryLedger
	refs     *ReferenceGenerator
	notifier AvailabilityNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewReservationService wires the engine components over a single store.
// notifier may be nil.
func NewReservationService(store Store, notifier AvailabilityNotifier, logger *zap.Logger) ReservationService {
	catalog := NewSeatCatalog(store)
	return &reservationService{
		store:    store,
		catalog:  catalog,
		ledger:   NewInventoryLedger(store, catalog),
		refs:     NewReferenceGenerator(store),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *reservationService) Search(ctx context.Context, originCode, destinationCode string, date time.Time) ([]FlightSearchResult, error) {
	flights, err := s.store.SearchFlights(ctx, originCode, destinationCode, date)
	if err != nil {
		return nil, err
	}

	results := make([]FlightSearchResult, 0, len(flights))
	for _, f := range flights {
		available, err := s.ledger.AvailableSeats(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, FlightSearchResult{
			Flight:         f,
			AvailableSeats: len(available),
			PriceByClass: map[database.SeatClass]float64{
				database.SeatClassEconomy:  f.BasePrice,
				database.SeatClassBusiness: f.BasePrice + BusinessClassSurcharge,
			},
		})
	}
	return results, nil
}

func (s *reservationService) GetFlight(ctx context.Context, flightID uuid.UUID) (*database.Flight, error) {
	return s.store.GetFlight(ctx, flightID)
}

func (s *reservationService) AvailableSeats(ctx context.Context, flightID uuid.UUID) ([]database.Seat, error) {
	return s.ledger.AvailableSeats(ctx, flightID)
}

// Book claims the seat, mints a reference and persists the reservation as
// one storage write. There is no window where the seat is held by no
// resolvable reservation: the claim is the reservation row itself.
func (s *reservationService) Book(ctx context.Context, req BookRequest) (*database.Reservation, error) {
	flight, err := s.store.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, fmt.Errorf("flight %s: %w", req.FlightID, err)
	}
	if flight.Status != database.FlightStatusScheduled {
		return nil, fmt.Errorf("%w: flight %s is %s", ErrFlightNotBookable, flight.FlightNumber, flight.Status)
	}

	seat, err := s.store.GetSeat(ctx, req.SeatID)
	if err != nil {
		return nil, fmt.Errorf("seat %s: %w", req.SeatID, err)
	}
	if seat.AircraftID != flight.AircraftID {
		return nil, fmt.Errorf("%w: seat %s is not on flight %s", ErrNotFound, seat.SeatNumber, flight.FlightNumber)
	}

	passenger, err := s.store.GetOrCreatePassenger(ctx, &database.Passenger{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		PassportNumber: req.PassportNumber,
	})
	if err != nil {
		return nil, err
	}

	price := req.TicketPrice
	if price <= 0 {
		price = flight.BasePrice
		if seat.Class == database.SeatClassBusiness {
			price += BusinessClassSurcharge
		}
	}

	ref, err := s.refs.NewReference(ctx)
	if err != nil {
		return nil, err
	}

	seatID := seat.ID
	res := &database.Reservation{
		BookingReference: ref,
		PassengerID:      passenger.ID,
		FlightID:         flight.ID,
		SeatID:           &seatID,
		SeatNumber:       seat.SeatNumber,
		TicketPrice:      price,
		Status:           database.ReservationStatusConfirmed,
		PaymentStatus:    database.PaymentStatusPaid,
	}
	if err := s.ledger.Claim(ctx, res); err != nil {
		return nil, err
	}

	s.logger.Info("reservation booked",
		zap.String("reference", ref),
		zap.String("flight", flight.FlightNumber),
		zap.String("seat", seat.SeatNumber),
		zap.Float64("price", price),
	)
	s.notifySeatChange(ctx, flight.ID, seat.SeatNumber, true)
	return res, nil
}

// Cancel releases the held seat by flipping the reservation to cancelled.
// Idempotent: cancelling an already-cancelled reservation succeeds without
// touching the row, since duplicate cancel requests from retrying callers
// are expected.
func (s *reservationService) Cancel(ctx context.Context, bookingReference string) error {
	res, err := s.store.GetReservationByReference(ctx, bookingReference)
	if err != nil {
		return fmt.Errorf("reservation %s: %w", bookingReference, err)
	}

	switch res.Status {
	case database.ReservationStatusCancelled:
		return nil
	case database.ReservationStatusCompleted:
		return fmt.Errorf("%w: reservation %s is completed", ErrInvalidTransition, bookingReference)
	}

	flight, err := s.store.GetFlight(ctx, res.FlightID)
	if err != nil {
		return err
	}
	if !s.now().Before(flight.DepartureTime) {
		return fmt.Errorf("%w: flight %s already departed", ErrCancelWindowClosed, flight.FlightNumber)
	}

	payment := res.PaymentStatus
	if payment == database.PaymentStatusPaid {
		payment = database.PaymentStatusRefunded
	}
	updated, err := s.store.TransitionReservation(ctx, bookingReference,
		[]database.ReservationStatus{database.ReservationStatusConfirmed, database.ReservationStatusCheckedIn},
		database.ReservationStatusCancelled, &payment)
	if err != nil {
		return err
	}
	if !updated {
		// Lost a transition race. If the other writer cancelled, the
		// outcome is what we wanted.
		current, err := s.store.GetReservationByReference(ctx, bookingReference)
		if err != nil {
			return err
		}
		if current.Status != database.ReservationStatusCancelled {
			return fmt.Errorf("%w: reservation %s is %s", ErrInvalidTransition, bookingReference, current.Status)
		}
		return nil
	}

	s.logger.Info("reservation cancelled",
		zap.String("reference", bookingReference),
		zap.String("flight", flight.FlightNumber),
	)
	s.notifySeatChange(ctx, flight.ID, res.SeatNumber, false)
	return nil
}

// CheckIn moves a confirmed reservation to checked_in. Repeating a
// check-in is a no-op success.
func (s *reservationService) CheckIn(ctx context.Context, bookingReference string) (*database.Reservation, error) {
	res, err := s.store.GetReservationByReference(ctx, bookingReference)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", bookingReference, err)
	}
	if res.Status == database.ReservationStatusCheckedIn {
		return res, nil
	}

	updated, err := s.store.TransitionReservation(ctx, bookingReference,
		[]database.ReservationStatus{database.ReservationStatusConfirmed},
		database.ReservationStatusCheckedIn, nil)
	if err != nil {
		return nil, err
	}
	if !updated {
		current, err := s.store.GetReservationByReference(ctx, bookingReference)
		if err != nil {
			return nil, err
		}
		if current.Status != database.ReservationStatusCheckedIn {
			return nil, fmt.Errorf("%w: cannot check in from %s", ErrInvalidTransition, current.Status)
		}
		return current, nil
	}
	return s.store.GetReservationByReference(ctx, bookingReference)
}

// CompleteFlight moves the checked-in reservations of an arrived flight to
// completed and returns how many were affected.
func (s *reservationService) CompleteFlight(ctx context.Context, flightID uuid.UUID) (int, error) {
	flight, err := s.store.GetFlight(ctx, flightID)
	if err != nil {
		return 0, fmt.Errorf("flight %s: %w", flightID, err)
	}
	if flight.Status != database.FlightStatusArrived {
		return 0, fmt.Errorf("%w: flight %s is %s, not arrived", ErrInvalidTransition, flight.FlightNumber, flight.Status)
	}
	count, err := s.store.CompleteFlightReservations(ctx, flightID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("flight reservations completed",
		zap.String("flight", flight.FlightNumber),
		zap.Int("count", count),
	)
	return count, nil
}

func (s *reservationService) Lookup(ctx context.Context, bookingReference string) (*database.Reservation, error) {
	return s.store.GetReservationByReference(ctx, bookingReference)
}

func (s *reservationService) ListForPassenger(ctx context.Context, email string) ([]database.Reservation, error) {
	return s.store.GetReservationsForPassenger(ctx, email)
}

func (s *reservationService) Manifest(ctx context.Context, flightID uuid.UUID) ([]database.ManifestEntry, error) {
	if _, err := s.store.GetFlight(ctx, flightID); err != nil {
		return nil, fmt.Errorf("flight %s: %w", flightID, err)
	}
	return s.store.GetManifest(ctx, flightID)
}

func (s *reservationService) Airports(ctx context.Context) ([]database.Airport, error) {
	return s.store.GetAirports(ctx)
}

func (s *reservationService) Statistics(ctx context.Context) (*database.Statistics, error) {
	return s.store.GetStatistics(ctx)
}

// SetFlightStatus is the pass-through for the operations collaborator. The
// engine validates the label and writes it; transition legality between
// operational statuses is owned by operations staff.
func (s *reservationService) SetFlightStatus(ctx context.Context, flightID uuid.UUID, status database.FlightStatus) error {
	if !database.ValidFlightStatus(status) {
		return fmt.Errorf("%w: unknown flight status %q", ErrInvalidTransition, status)
	}
	return s.store.UpdateFlightStatus(ctx, flightID, status)
}

func (s *reservationService) notifySeatChange(ctx context.Context, flightID uuid.UUID, seatNumber string, claimed bool) {
	if s.notifier == nil {
		return
	}
	available, err := s.ledger.AvailableSeats(ctx, flightID)
	if err != nil {
		s.logger.Warn("failed to compute availability for notification",
			zap.String("flight", flightID.String()), zap.Error(err))
		return
	}
	if claimed {
		s.notifier.SeatClaimed(flightID, seatNumber, len(available))
	} else {
		s.notifier.SeatReleased(flightID, seatNumber, len(available))
	}
}
