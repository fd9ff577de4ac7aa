package database

import (
	"context"
	"fmt"
)

// schema is applied at startup. The two uniqueness backstops live here:
// reservations_booking_reference_key guarantees reference uniqueness, and
// reservations_live_seat_idx guarantees at most one live reservation per
// (flight, seat) pair regardless of what the application layer checked.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS airports (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		airport_code TEXT UNIQUE NOT NULL,
		airport_name TEXT NOT NULL,
		city TEXT NOT NULL,
		country TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS aircraft (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		model TEXT NOT NULL,
		registration_number TEXT UNIQUE NOT NULL,
		total_seats INT NOT NULL,
		business_seats INT NOT NULL DEFAULT 0,
		economy_seats INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT aircraft_seat_split CHECK (business_seats + economy_seats = total_seats)
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		aircraft_id UUID NOT NULL REFERENCES aircraft(id),
		seat_number TEXT NOT NULL,
		class TEXT NOT NULL CHECK (class IN ('business', 'economy')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (aircraft_id, seat_number)
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		flight_number TEXT NOT NULL,
		aircraft_id UUID NOT NULL REFERENCES aircraft(id),
		origin_airport_id UUID NOT NULL REFERENCES airports(id),
		destination_airport_id UUID NOT NULL REFERENCES airports(id),
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time TIMESTAMPTZ NOT NULL,
		base_price NUMERIC(10,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled'
			CHECK (status IN ('scheduled', 'boarding', 'departed', 'arrived', 'cancelled', 'delayed')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		passport_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		booking_reference TEXT NOT NULL,
		passenger_id UUID NOT NULL REFERENCES passengers(id),
		flight_id UUID NOT NULL REFERENCES flights(id),
		seat_id UUID REFERENCES seats(id),
		ticket_price NUMERIC(10,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed'
			CHECK (status IN ('confirmed', 'cancelled', 'checked_in', 'completed')),
		payment_status TEXT NOT NULL DEFAULT 'pending'
			CHECK (payment_status IN ('pending', 'paid', 'refunded')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reservations_booking_reference_key UNIQUE (booking_reference)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_live_seat_idx
		ON reservations (flight_id, seat_id)
		WHERE seat_id IS NOT NULL AND status IN ('confirmed', 'checked_in', 'completed')`,
	`CREATE INDEX IF NOT EXISTS reservations_flight_idx ON reservations (flight_id)`,
	`CREATE INDEX IF NOT EXISTS reservations_passenger_idx ON reservations (passenger_id)`,
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
