package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service/mocks"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/flights/search", h.SearchFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/seats", h.GetAvailableSeats).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/manifest", h.GetManifest).Methods(http.MethodGet)
	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{reference}", h.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reference}", h.CancelReservation).Methods(http.MethodDelete)
	api.HandleFunc("/reservations/{reference}/check-in", h.CheckIn).Methods(http.MethodPost)
	api.HandleFunc("/passengers/{email}/reservations", h.GetPassengerReservations).Methods(http.MethodGet)
	api.HandleFunc("/admin/statistics", h.GetStatistics).Methods(http.MethodGet)
	return r
}

func newTestHandler() (*mocks.MockReservationService, *mux.Router) {
	mockService := new(mocks.MockReservationService)
	handler := NewHandler(mockService, zap.NewNop())
	return mockService, setupTestRouter(handler)
}

func TestHandler_CreateReservation(t *testing.T) {
	flightID := uuid.New()
	seatID := uuid.New()

	tests := []struct {
		name           string
		requestBody    service.BookRequest
		mockReturn     *database.Reservation
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "valid booking",
			requestBody: service.BookRequest{
				FlightID:  flightID,
				SeatID:    seatID,
				FirstName: "John",
				LastName:  "Doe",
				Email:     "john@example.com",
			},
			mockReturn: &database.Reservation{
				BookingReference: "AB12CD34",
				FlightID:         flightID,
				Status:           database.ReservationStatusConfirmed,
				PaymentStatus:    database.PaymentStatusPaid,
			},
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name: "missing flight ID",
			requestBody: service.BookRequest{
				SeatID:    seatID,
				FirstName: "John",
				LastName:  "Doe",
				Email:     "john@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing email",
			requestBody: service.BookRequest{
				FlightID:  flightID,
				SeatID:    seatID,
				FirstName: "John",
				LastName:  "Doe",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "seat lost to a concurrent booking",
			requestBody: service.BookRequest{
				FlightID:  flightID,
				SeatID:    seatID,
				FirstName: "John",
				LastName:  "Doe",
				Email:     "john@example.com",
			},
			mockError:      service.ErrSeatUnavailable,
			expectedStatus: http.StatusConflict,
			shouldCallMock: true,
		},
		{
			name: "flight not bookable",
			requestBody: service.BookRequest{
				FlightID:  flightID,
				SeatID:    seatID,
				FirstName: "John",
				LastName:  "Doe",
				Email:     "john@example.com",
			},
			mockError:      service.ErrFlightNotBookable,
			expectedStatus: http.StatusUnprocessableEntity,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()

			if tt.shouldCallMock {
				mockService.On("Book", mock.Anything, mock.AnythingOfType("service.BookRequest")).Return(tt.mockReturn, tt.mockError)
			}

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetReservation(t *testing.T) {
	tests := []struct {
		name           string
		reference      string
		mockReturn     *database.Reservation
		mockError      error
		expectedStatus int
	}{
		{
			name:      "reservation found",
			reference: "AB12CD34",
			mockReturn: &database.Reservation{
				BookingReference: "AB12CD34",
				Status:           database.ReservationStatusConfirmed,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "reservation not found",
			reference:      "MISSING1",
			mockError:      service.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()
			mockService.On("Lookup", mock.Anything, tt.reference).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/reservations/"+tt.reference, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response database.Reservation
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, tt.reference, response.BookingReference)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CancelReservation(t *testing.T) {
	tests := []struct {
		name           string
		reference      string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "successful cancellation",
			reference:      "AB12CD34",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "reservation not found",
			reference:      "MISSING1",
			mockError:      service.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "window closed",
			reference:      "AB12CD34",
			mockError:      service.ErrCancelWindowClosed,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()
			mockService.On("Cancel", mock.Anything, tt.reference).Return(tt.mockError)

			req := httptest.NewRequest(http.MethodDelete, "/api/reservations/"+tt.reference, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SearchFlights(t *testing.T) {
	mockService, router := newTestHandler()

	flightID := uuid.New()
	mockService.On("Search", mock.Anything, "JFK", "LAX", mock.AnythingOfType("time.Time")).Return([]service.FlightSearchResult{
		{
			Flight:         database.Flight{ID: flightID, FlightNumber: "AA123"},
			AvailableSeats: 42,
			PriceByClass: map[database.SeatClass]float64{
				database.SeatClassEconomy:  150,
				database.SeatClassBusiness: 350,
			},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/flights/search?origin=JFK&destination=LAX&date=2025-06-01", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []service.FlightSearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, "AA123", response[0].Flight.FlightNumber)
	assert.Equal(t, 42, response[0].AvailableSeats)

	mockService.AssertExpectations(t)
}

func TestHandler_SearchFlightsValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing origin", query: "destination=LAX&date=2025-06-01"},
		{name: "missing date", query: "origin=JFK&destination=LAX"},
		{name: "malformed date", query: "origin=JFK&destination=LAX&date=June+1st"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := newTestHandler()

			req := httptest.NewRequest(http.MethodGet, "/api/flights/search?"+tt.query, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_GetAvailableSeats(t *testing.T) {
	mockService, router := newTestHandler()

	flightID := uuid.New()
	mockService.On("AvailableSeats", mock.Anything, flightID).Return([]database.Seat{
		{ID: uuid.New(), SeatNumber: "1A", Class: database.SeatClassBusiness},
		{ID: uuid.New(), SeatNumber: "10C", Class: database.SeatClassEconomy},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/flights/"+flightID.String()+"/seats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []database.Seat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Len(t, response, 2)

	mockService.AssertExpectations(t)
}

func TestHandler_GetAvailableSeatsInvalidID(t *testing.T) {
	_, router := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/flights/not-a-uuid/seats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CheckIn(t *testing.T) {
	mockService, router := newTestHandler()

	mockService.On("CheckIn", mock.Anything, "AB12CD34").Return(&database.Reservation{
		BookingReference: "AB12CD34",
		Status:           database.ReservationStatusCheckedIn,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations/AB12CD34/check-in", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response database.Reservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, database.ReservationStatusCheckedIn, response.Status)

	mockService.AssertExpectations(t)
}

func TestHandler_GetPassengerReservations(t *testing.T) {
	mockService, router := newTestHandler()

	mockService.On("ListForPassenger", mock.Anything, "jane@example.com").Return([]database.Reservation{
		{BookingReference: "AB12CD34"},
		{BookingReference: "EF56GH78"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/passengers/jane@example.com/reservations", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []database.Reservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Len(t, response, 2)

	mockService.AssertExpectations(t)
}

func TestHandler_GetStatistics(t *testing.T) {
	mockService, router := newTestHandler()

	mockService.On("Statistics", mock.Anything).Return(&database.Statistics{
		TotalFlights:      3,
		TotalPassengers:   10,
		TotalReservations: 7,
		TotalRevenue:      2450,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response database.Statistics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 7, response.TotalReservations)

	mockService.AssertExpectations(t)
}
