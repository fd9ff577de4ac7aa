package database

import (
	"time"

	"github.com/google/uuid"
)

// Airport represents an airport in the database
type Airport struct {
	ID          uuid.UUID `json:"id"`
	AirportCode string    `json:"airportCode"`
	AirportName string    `json:"airportName"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Aircraft represents an aircraft in the fleet. Seat counts are fixed at
// provisioning time; business + economy always equals total.
type Aircraft struct {
	ID                 uuid.UUID `json:"id"`
	Model              string    `json:"model"`
	RegistrationNumber string    `json:"registrationNumber"`
	TotalSeats         int       `json:"totalSeats"`
	BusinessSeats      int       `json:"businessSeats"`
	EconomySeats       int       `json:"economySeats"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SeatClass represents the cabin class of a seat
type SeatClass string

const (
	SeatClassBusiness SeatClass = "business"
	SeatClassEconomy  SeatClass = "economy"
)

// Seat represents a physical seat on an aircraft. Seat numbers are unique
// within an aircraft and immutable once created.
type Seat struct {
	ID         uuid.UUID `json:"id"`
	AircraftID uuid.UUID `json:"aircraftId"`
	SeatNumber string    `json:"seatNumber"`
	Class      SeatClass `json:"class"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FlightStatus represents the operational status of a flight. It is mutated
// by operations staff, not by the reservation engine.
type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusArrived   FlightStatus = "arrived"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusDelayed   FlightStatus = "delayed"
)

// ValidFlightStatus reports whether s is a known flight status label.
func ValidFlightStatus(s FlightStatus) bool {
	switch s {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
		FlightStatusArrived, FlightStatusCancelled, FlightStatusDelayed:
		return true
	}
	return false
}

// Flight represents one scheduled flight instance. Its seat universe is the
// seat catalog of the assigned aircraft.
type Flight struct {
	ID                   uuid.UUID    `json:"id"`
	FlightNumber         string       `json:"flightNumber"`
	AircraftID           uuid.UUID    `json:"aircraftId"`
	OriginAirportID      uuid.UUID    `json:"originAirportId"`
	DestinationAirportID uuid.UUID    `json:"destinationAirportId"`
	OriginCode           string       `json:"originCode"`
	DestinationCode      string       `json:"destinationCode"`
	DepartureTime        time.Time    `json:"departureTime"`
	ArrivalTime          time.Time    `json:"arrivalTime"`
	BasePrice            float64      `json:"basePrice"`
	Status               FlightStatus `json:"status"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// Passenger represents a passenger identity record, keyed by email.
type Passenger struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PassportNumber string    `json:"passportNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCheckedIn ReservationStatus = "checked_in"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// LiveStatuses are the reservation statuses that occupy a seat. A seat is
// held for a flight iff a reservation on that (flight, seat) pair carries
// one of these.
var LiveStatuses = []ReservationStatus{
	ReservationStatusConfirmed,
	ReservationStatusCheckedIn,
	ReservationStatusCompleted,
}

// IsLive reports whether the status holds a seat.
func (s ReservationStatus) IsLive() bool {
	for _, live := range LiveStatuses {
		if s == live {
			return true
		}
	}
	return false
}

// PaymentStatus represents the recorded payment state of a reservation
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Reservation represents a booking. Rows are never deleted; cancellation is
// a status change that preserves history.
type Reservation struct {
	ID               uuid.UUID         `json:"id"`
	BookingReference string            `json:"bookingReference"`
	PassengerID      uuid.UUID         `json:"passengerId"`
	FlightID         uuid.UUID         `json:"flightId"`
	SeatID           *uuid.UUID        `json:"seatId,omitempty"`
	SeatNumber       string            `json:"seatNumber,omitempty"`
	TicketPrice      float64           `json:"ticketPrice"`
	Status           ReservationStatus `json:"status"`
	PaymentStatus    PaymentStatus     `json:"paymentStatus"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// ManifestEntry is one row of a flight's passenger manifest.
type ManifestEntry struct {
	PassengerName    string            `json:"passengerName"`
	Email            string            `json:"email"`
	BookingReference string            `json:"bookingReference"`
	SeatNumber       string            `json:"seatNumber,omitempty"`
	SeatClass        SeatClass         `json:"seatClass,omitempty"`
	Status           ReservationStatus `json:"status"`
}

// Statistics holds the admin dashboard counters. All values are recomputed
// from the reservation store, never cached.
type Statistics struct {
	TotalFlights      int     `json:"totalFlights"`
	TotalPassengers   int     `json:"totalPassengers"`
	TotalReservations int     `json:"totalReservations"`
	TotalRevenue      float64 `json:"totalRevenue"`
}
