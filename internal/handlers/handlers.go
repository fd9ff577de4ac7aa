package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	reservations service.ReservationService
	logger       *zap.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(reservations service.ReservationService, logger *zap.Logger) *Handler {
	return &Handler{
		reservations: reservations,
		logger:       logger,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps engine error kinds onto HTTP statuses. Every
// kind surfaces to the caller intact; nothing is swallowed.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSeatUnavailable):
		status = http.StatusConflict
	case errors.Is(err, service.ErrFlightNotBookable),
		errors.Is(err, service.ErrCancelWindowClosed),
		errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTransientStorage):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("internal error", zap.Error(err))
		status = http.StatusInternalServerError
	}
	respondError(w, status, err.Error())
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// GetAirports handles GET /api/airports
func (h *Handler) GetAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.reservations.Airports(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, airports)
}

// SearchFlights handles GET /api/flights/search?origin=JFK&destination=LAX&date=2025-06-01
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := q.Get("origin")
	destination := q.Get("destination")
	if origin == "" || destination == "" {
		respondError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}
	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	results, err := h.reservations.Search(r.Context(), origin, destination, date)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight ID")
		return
	}
	flight, err := h.reservations.GetFlight(r.Context(), flightID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetAvailableSeats handles GET /api/flights/{id}/seats
func (h *Handler) GetAvailableSeats(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight ID")
		return
	}
	seats, err := h.reservations.AvailableSeats(r.Context(), flightID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, seats)
}

// GetManifest handles GET /api/flights/{id}/manifest
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight ID")
		return
	}
	manifest, err := h.reservations.Manifest(r.Context(), flightID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, manifest)
}

// SetFlightStatus handles PUT /api/flights/{id}/status
func (h *Handler) SetFlightStatus(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight ID")
		return
	}

	var req struct {
		Status database.FlightStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reservations.SetFlightStatus(r.Context(), flightID, req.Status); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

// CompleteFlight handles POST /api/flights/{id}/complete
func (h *Handler) CompleteFlight(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight ID")
		return
	}
	count, err := h.reservations.CompleteFlight(r.Context(), flightID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"completed": count})
}

// CreateReservation handles POST /api/reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req service.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FlightID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "flight ID is required")
		return
	}
	if req.SeatID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "seat ID is required")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "passenger email is required")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		respondError(w, http.StatusBadRequest, "passenger name is required")
		return
	}

	res, err := h.reservations.Book(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// GetReservation handles GET /api/reservations/{reference}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["reference"]
	res, err := h.reservations.Lookup(r.Context(), ref)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// CancelReservation handles DELETE /api/reservations/{reference}
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["reference"]
	if err := h.reservations.Cancel(r.Context(), ref); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "reservation cancelled"})
}

// CheckIn handles POST /api/reservations/{reference}/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["reference"]
	res, err := h.reservations.CheckIn(r.Context(), ref)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GetPassengerReservations handles GET /api/passengers/{email}/reservations
func (h *Handler) GetPassengerReservations(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	reservations, err := h.reservations.ListForPassenger(r.Context(), email)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if reservations == nil {
		reservations = []database.Reservation{}
	}
	respondJSON(w, http.StatusOK, reservations)
}

// GetStatistics handles GET /api/admin/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reservations.Statistics(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
