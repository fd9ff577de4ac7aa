package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrSeatHeld           = errors.New("seat already held")
	ErrDuplicateReference = errors.New("duplicate booking reference")
	ErrTransient          = errors.New("transient storage failure")
)

// Names of the unique constraints that back the no-double-booking and
// reference-uniqueness invariants. A violation of the first means a lost
// claim race, never a bug.
const (
	constraintLiveSeat  = "reservations_live_seat_idx"
	constraintReference = "reservations_booking_reference_key"
)

// Repository handles all database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// classify maps low-level pgx errors onto the package sentinels.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case constraintLiveSeat:
				return ErrSeatHeld
			case constraintReference:
				return ErrDuplicateReference
			}
		case "40001", "40P01", "55P03", "57014": // serialization, deadlock, lock timeout, cancel
			return fmt.Errorf("%w: %s", ErrTransient, pgErr.Code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// --- Airport Operations ---

// GetAirports returns all airports ordered by city
func (r *Repository) GetAirports(ctx context.Context) ([]Airport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, airport_code, airport_name, city, country, created_at
		FROM airports
		ORDER BY city
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", classify(err))
	}
	defer rows.Close()

	var airports []Airport
	for rows.Next() {
		var a Airport
		if err := rows.Scan(&a.ID, &a.AirportCode, &a.AirportName, &a.City, &a.Country, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	return airports, nil
}

// --- Aircraft Operations ---

// GetAircraft returns an aircraft by ID
func (r *Repository) GetAircraft(ctx context.Context, id uuid.UUID) (*Aircraft, error) {
	var a Aircraft
	err := r.pool.QueryRow(ctx, `
		SELECT id, model, registration_number, total_seats, business_seats, economy_seats, created_at
		FROM aircraft
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Model, &a.RegistrationNumber, &a.TotalSeats, &a.BusinessSeats, &a.EconomySeats, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get aircraft: %w", classify(err))
	}
	return &a, nil
}

// GetSeatsForAircraft returns the seat catalog of an aircraft, business
// class first, ordered by seat number within class.
func (r *Repository) GetSeatsForAircraft(ctx context.Context, aircraftID uuid.UUID) ([]Seat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, aircraft_id, seat_number, class, created_at
		FROM seats
		WHERE aircraft_id = $1
		ORDER BY class, seat_number
	`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", classify(err))
	}
	defer rows.Close()

	var seats []Seat
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.AircraftID, &s.SeatNumber, &s.Class, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, nil
}

// GetSeat returns a seat by ID
func (r *Repository) GetSeat(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var s Seat
	err := r.pool.QueryRow(ctx, `
		SELECT id, aircraft_id, seat_number, class, created_at
		FROM seats
		WHERE id = $1
	`, id).Scan(&s.ID, &s.AircraftID, &s.SeatNumber, &s.Class, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", classify(err))
	}
	return &s, nil
}

// --- Flight Operations ---

const flightColumns = `
	f.id, f.flight_number, f.aircraft_id, f.origin_airport_id, f.destination_airport_id,
	o.airport_code, d.airport_code, f.departure_time, f.arrival_time,
	f.base_price, f.status, f.created_at, f.updated_at
`

func scanFlight(row pgx.Row) (*Flight, error) {
	var f Flight
	err := row.Scan(
		&f.ID, &f.FlightNumber, &f.AircraftID, &f.OriginAirportID, &f.DestinationAirportID,
		&f.OriginCode, &f.DestinationCode, &f.DepartureTime, &f.ArrivalTime,
		&f.BasePrice, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFlight returns a flight by ID
func (r *Repository) GetFlight(ctx context.Context, id uuid.UUID) (*Flight, error) {
	f, err := scanFlight(r.pool.QueryRow(ctx, `
		SELECT `+flightColumns+`
		FROM flights f
		JOIN airports o ON f.origin_airport_id = o.id
		JOIN airports d ON f.destination_airport_id = d.id
		WHERE f.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", classify(err))
	}
	return f, nil
}

// SearchFlights returns scheduled flights between two airports departing on
// the given calendar date.
func (r *Repository) SearchFlights(ctx context.Context, originCode, destinationCode string, date time.Time) ([]Flight, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT `+flightColumns+`
		FROM flights f
		JOIN airports o ON f.origin_airport_id = o.id
		JOIN airports d ON f.destination_airport_id = d.id
		WHERE o.airport_code = $1
		  AND d.airport_code = $2
		  AND f.departure_time >= $3 AND f.departure_time < $4
		  AND f.status = 'scheduled'
		ORDER BY f.departure_time
	`, originCode, destinationCode, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", classify(err))
	}
	defer rows.Close()

	var flights []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, nil
}

// UpdateFlightStatus updates the operational status of a flight. Status
// transitions are owned by operations staff; the engine only writes the
// label.
func (r *Repository) UpdateFlightStatus(ctx context.Context, id uuid.UUID, status FlightStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE flights SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update flight status: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Passenger Operations ---

// GetOrCreatePassenger returns the passenger with the given email, creating
// the record if it does not exist yet.
func (r *Repository) GetOrCreatePassenger(ctx context.Context, p *Passenger) (*Passenger, error) {
	existing, err := r.GetPassengerByEmail(ctx, p.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO passengers (id, first_name, last_name, email, phone, passport_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, created_at
	`, p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.PassportNumber).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create passenger: %w", classify(err))
	}
	return p, nil
}

// GetPassengerByEmail returns a passenger by email
func (r *Repository) GetPassengerByEmail(ctx context.Context, email string) (*Passenger, error) {
	var p Passenger
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, passport_number, created_at
		FROM passengers
		WHERE email = $1
	`, email).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.PassportNumber, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get passenger: %w", classify(err))
	}
	return &p, nil
}

// --- Reservation Operations ---

// CreateReservation inserts a reservation. The insert is the atomic seat
// claim: the partial unique index over (flight_id, seat_id) restricted to
// live statuses turns a losing race into ErrSeatHeld, and the unique
// constraint on booking_reference closes the verify-then-claim gap in
// reference generation (ErrDuplicateReference).
func (r *Repository) CreateReservation(ctx context.Context, res *Reservation) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reservations (id, booking_reference, passenger_id, flight_id, seat_id, ticket_price, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, res.ID, res.BookingReference, res.PassengerID, res.FlightID, res.SeatID,
		res.TicketPrice, res.Status, res.PaymentStatus,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		mapped := classify(err)
		if errors.Is(mapped, ErrSeatHeld) || errors.Is(mapped, ErrDuplicateReference) {
			return mapped
		}
		return fmt.Errorf("failed to create reservation: %w", mapped)
	}
	return nil
}

const reservationColumns = `
	r.id, r.booking_reference, r.passenger_id, r.flight_id, r.seat_id,
	COALESCE(s.seat_number, ''), r.ticket_price, r.status, r.payment_status,
	r.created_at, r.updated_at
`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	err := row.Scan(
		&res.ID, &res.BookingReference, &res.PassengerID, &res.FlightID, &res.SeatID,
		&res.SeatNumber, &res.TicketPrice, &res.Status, &res.PaymentStatus,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetReservationByReference returns a reservation by its booking reference
func (r *Repository) GetReservationByReference(ctx context.Context, ref string) (*Reservation, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		LEFT JOIN seats s ON r.seat_id = s.id
		WHERE r.booking_reference = $1
	`, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", classify(err))
	}
	return res, nil
}

// GetReservationsForPassenger returns all reservations for the passenger
// with the given email, newest departure first.
func (r *Repository) GetReservationsForPassenger(ctx context.Context, email string) ([]Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN passengers p ON r.passenger_id = p.id
		JOIN flights f ON r.flight_id = f.id
		LEFT JOIN seats s ON r.seat_id = s.id
		WHERE p.email = $1
		ORDER BY f.departure_time DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", classify(err))
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	return reservations, nil
}

// HeldSeatIDs returns the IDs of seats currently held for a flight, i.e.
// referenced by a reservation in a live status. Recomputed from the
// reservations table on every call.
func (r *Repository) HeldSeatIDs(ctx context.Context, flightID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seat_id FROM reservations
		WHERE flight_id = $1
		  AND seat_id IS NOT NULL
		  AND status IN ('confirmed', 'checked_in', 'completed')
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query held seats: %w", classify(err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ReferenceExists reports whether a booking reference is already taken
func (r *Repository) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM reservations WHERE booking_reference = $1)
	`, ref).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", classify(err))
	}
	return exists, nil
}

// TransitionReservation conditionally moves a reservation from one of the
// given statuses to the target status, optionally updating the payment
// label in the same statement. It returns false with a nil error when no
// row matched, so the caller can distinguish a lost race or an illegal
// transition from a storage failure.
func (r *Repository) TransitionReservation(ctx context.Context, ref string, from []ReservationStatus, to ReservationStatus, payment *PaymentStatus) (bool, error) {
	fromLabels := make([]string, len(from))
	for i, s := range from {
		fromLabels[i] = string(s)
	}

	var result pgconn.CommandTag
	var err error
	if payment != nil {
		result, err = r.pool.Exec(ctx, `
			UPDATE reservations
			SET status = $1, payment_status = $2, updated_at = NOW()
			WHERE booking_reference = $3 AND status = ANY($4)
		`, to, *payment, ref, fromLabels)
	} else {
		result, err = r.pool.Exec(ctx, `
			UPDATE reservations
			SET status = $1, updated_at = NOW()
			WHERE booking_reference = $2 AND status = ANY($3)
		`, to, ref, fromLabels)
	}
	if err != nil {
		return false, fmt.Errorf("failed to transition reservation: %w", classify(err))
	}
	return result.RowsAffected() > 0, nil
}

// CompleteFlightReservations moves all checked-in reservations of a flight
// to completed. Returns the number of reservations completed.
func (r *Repository) CompleteFlightReservations(ctx context.Context, flightID uuid.UUID) (int, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE reservations
		SET status = 'completed', updated_at = NOW()
		WHERE flight_id = $1 AND status = 'checked_in'
	`, flightID)
	if err != nil {
		return 0, fmt.Errorf("failed to complete reservations: %w", classify(err))
	}
	return int(result.RowsAffected()), nil
}

// GetManifest returns the passenger manifest for a flight, ordered by seat
// number.
func (r *Repository) GetManifest(ctx context.Context, flightID uuid.UUID) ([]ManifestEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.first_name || ' ' || p.last_name, p.email, r.booking_reference,
		       COALESCE(s.seat_number, ''), COALESCE(s.class, ''), r.status
		FROM reservations r
		JOIN passengers p ON r.passenger_id = p.id
		LEFT JOIN seats s ON r.seat_id = s.id
		WHERE r.flight_id = $1
		ORDER BY s.seat_number
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifest: %w", classify(err))
	}
	defer rows.Close()

	var entries []ManifestEntry
	for rows.Next() {
		var e ManifestEntry
		if err := rows.Scan(&e.PassengerName, &e.Email, &e.BookingReference, &e.SeatNumber, &e.SeatClass, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetStatistics returns the dashboard counters
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM flights),
			(SELECT COUNT(*) FROM passengers),
			(SELECT COUNT(*) FROM reservations WHERE status = 'confirmed'),
			(SELECT COALESCE(SUM(ticket_price), 0) FROM reservations WHERE payment_status = 'paid')
	`).Scan(&stats.TotalFlights, &stats.TotalPassengers, &stats.TotalReservations, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", classify(err))
	}
	return &stats, nil
}
