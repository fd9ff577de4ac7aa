package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the storage contract. It
// backs the engine tests and lets the server run without Postgres. The
// single mutex makes every operation atomic, which is exactly the
// transaction guarantee CreateReservation needs: the held-seat check and
// the insert happen under one critical section.
type MemoryStore struct {
	mu           sync.RWMutex
	airports     map[uuid.UUID]Airport
	aircraft     map[uuid.UUID]Aircraft
	seats        map[uuid.UUID]Seat
	flights      map[uuid.UUID]Flight
	passengers   map[uuid.UUID]Passenger
	reservations map[uuid.UUID]Reservation
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		airports:     make(map[uuid.UUID]Airport),
		aircraft:     make(map[uuid.UUID]Aircraft),
		seats:        make(map[uuid.UUID]Seat),
		flights:      make(map[uuid.UUID]Flight),
		passengers:   make(map[uuid.UUID]Passenger),
		reservations: make(map[uuid.UUID]Reservation),
	}
}

// --- Provisioning (fleet/master data setup, not part of the engine contract) ---

// AddAirport registers an airport and returns it with an assigned ID.
func (m *MemoryStore) AddAirport(a Airport) Airport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	m.airports[a.ID] = a
	return a
}

// AddAircraft registers an aircraft with its seat catalog. Seat counts are
// derived from the catalog so the business+economy==total invariant holds
// by construction.
func (m *MemoryStore) AddAircraft(model, registration string, seats []Seat) Aircraft {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := Aircraft{
		ID:                 uuid.New(),
		Model:              model,
		RegistrationNumber: registration,
		TotalSeats:         len(seats),
		CreatedAt:          time.Now(),
	}
	for _, s := range seats {
		if s.Class == SeatClassBusiness {
			a.BusinessSeats++
		} else {
			a.EconomySeats++
		}
	}
	m.aircraft[a.ID] = a

	for _, s := range seats {
		s.ID = uuid.New()
		s.AircraftID = a.ID
		s.CreatedAt = time.Now()
		m.seats[s.ID] = s
	}
	return a
}

// AddFlight registers a flight instance. Origin/destination codes are
// resolved from the registered airports; status defaults to scheduled.
func (m *MemoryStore) AddFlight(f Flight) Flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = FlightStatusScheduled
	}
	if origin, ok := m.airports[f.OriginAirportID]; ok {
		f.OriginCode = origin.AirportCode
	}
	if dest, ok := m.airports[f.DestinationAirportID]; ok {
		f.DestinationCode = dest.AirportCode
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	m.flights[f.ID] = f
	return f
}

// --- Airport Operations ---

func (m *MemoryStore) GetAirports(ctx context.Context) ([]Airport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	airports := make([]Airport, 0, len(m.airports))
	for _, a := range m.airports {
		airports = append(airports, a)
	}
	sort.Slice(airports, func(i, j int) bool { return airports[i].City < airports[j].City })
	return airports, nil
}

// --- Aircraft Operations ---

func (m *MemoryStore) GetAircraft(ctx context.Context, id uuid.UUID) (*Aircraft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.aircraft[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) GetSeatsForAircraft(ctx context.Context, aircraftID uuid.UUID) ([]Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var seats []Seat
	for _, s := range m.seats {
		if s.AircraftID == aircraftID {
			seats = append(seats, s)
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Class != seats[j].Class {
			return seats[i].Class < seats[j].Class // business < economy
		}
		return seats[i].SeatNumber < seats[j].SeatNumber
	})
	return seats, nil
}

func (m *MemoryStore) GetSeat(ctx context.Context, id uuid.UUID) (*Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// --- Flight Operations ---

func (m *MemoryStore) GetFlight(ctx context.Context, id uuid.UUID) (*Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (m *MemoryStore) SearchFlights(ctx context.Context, originCode, destinationCode string, date time.Time) ([]Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var flights []Flight
	for _, f := range m.flights {
		if f.Status != FlightStatusScheduled {
			continue
		}
		if !strings.EqualFold(f.OriginCode, originCode) || !strings.EqualFold(f.DestinationCode, destinationCode) {
			continue
		}
		y, mo, d := f.DepartureTime.Date()
		wy, wmo, wd := date.Date()
		if y != wy || mo != wmo || d != wd {
			continue
		}
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].DepartureTime.Before(flights[j].DepartureTime) })
	return flights, nil
}

func (m *MemoryStore) UpdateFlightStatus(ctx context.Context, id uuid.UUID, status FlightStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	m.flights[id] = f
	return nil
}

// --- Passenger Operations ---

func (m *MemoryStore) GetOrCreatePassenger(ctx context.Context, p *Passenger) (*Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.passengers {
		if strings.EqualFold(existing.Email, p.Email) {
			found := existing
			return &found, nil
		}
	}
	created := *p
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.CreatedAt = time.Now()
	m.passengers[created.ID] = created
	return &created, nil
}

func (m *MemoryStore) GetPassengerByEmail(ctx context.Context, email string) (*Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.passengers {
		if strings.EqualFold(p.Email, email) {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// --- Reservation Operations ---

func (m *MemoryStore) CreateReservation(ctx context.Context, res *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reservations {
		if existing.BookingReference == res.BookingReference {
			return ErrDuplicateReference
		}
		if res.SeatID != nil && existing.SeatID != nil &&
			existing.FlightID == res.FlightID &&
			*existing.SeatID == *res.SeatID &&
			existing.Status.IsLive() {
			return ErrSeatHeld
		}
	}

	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.SeatID != nil {
		if seat, ok := m.seats[*res.SeatID]; ok {
			res.SeatNumber = seat.SeatNumber
		}
	}
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	m.reservations[res.ID] = *res
	return nil
}

func (m *MemoryStore) GetReservationByReference(ctx context.Context, ref string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, res := range m.reservations {
		if res.BookingReference == ref {
			found := res
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetReservationsForPassenger(ctx context.Context, email string) ([]Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var passengerID uuid.UUID
	found := false
	for _, p := range m.passengers {
		if strings.EqualFold(p.Email, email) {
			passengerID = p.ID
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	var reservations []Reservation
	for _, res := range m.reservations {
		if res.PassengerID == passengerID {
			reservations = append(reservations, res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		fi := m.flights[reservations[i].FlightID]
		fj := m.flights[reservations[j].FlightID]
		return fi.DepartureTime.After(fj.DepartureTime)
	})
	return reservations, nil
}

func (m *MemoryStore) HeldSeatIDs(ctx context.Context, flightID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uuid.UUID
	for _, res := range m.reservations {
		if res.FlightID == flightID && res.SeatID != nil && res.Status.IsLive() {
			ids = append(ids, *res.SeatID)
		}
	}
	return ids, nil
}

func (m *MemoryStore) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, res := range m.reservations {
		if res.BookingReference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) TransitionReservation(ctx context.Context, ref string, from []ReservationStatus, to ReservationStatus, payment *PaymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, res := range m.reservations {
		if res.BookingReference != ref {
			continue
		}
		for _, s := range from {
			if res.Status == s {
				res.Status = to
				if payment != nil {
					res.PaymentStatus = *payment
				}
				res.UpdatedAt = time.Now()
				m.reservations[id] = res
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (m *MemoryStore) CompleteFlightReservations(ctx context.Context, flightID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, res := range m.reservations {
		if res.FlightID == flightID && res.Status == ReservationStatusCheckedIn {
			res.Status = ReservationStatusCompleted
			res.UpdatedAt = time.Now()
			m.reservations[id] = res
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) GetManifest(ctx context.Context, flightID uuid.UUID) ([]ManifestEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []ManifestEntry
	for _, res := range m.reservations {
		if res.FlightID != flightID {
			continue
		}
		p := m.passengers[res.PassengerID]
		e := ManifestEntry{
			PassengerName:    p.FirstName + " " + p.LastName,
			Email:            p.Email,
			BookingReference: res.BookingReference,
			Status:           res.Status,
		}
		if res.SeatID != nil {
			if seat, ok := m.seats[*res.SeatID]; ok {
				e.SeatNumber = seat.SeatNumber
				e.SeatClass = seat.Class
			}
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SeatNumber < entries[j].SeatNumber })
	return entries, nil
}

func (m *MemoryStore) GetStatistics(ctx context.Context) (*Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Statistics{
		TotalFlights:    len(m.flights),
		TotalPassengers: len(m.passengers),
	}
	for _, res := range m.reservations {
		if res.Status == ReservationStatusConfirmed {
			stats.TotalReservations++
		}
		if res.PaymentStatus == PaymentStatusPaid {
			stats.TotalRevenue += res.TicketPrice
		}
	}
	return &stats, nil
}
