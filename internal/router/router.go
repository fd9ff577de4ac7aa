package router

import (
	"net/http"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/handlers"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// New creates and configures the HTTP router
func New(h *handlers.Handler, hub *websocket.Hub, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(requestLogger(logger))

	api := r.PathPrefix("/api").Subrouter()

	// Flights
	api.HandleFunc("/flights/search", h.SearchFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}/seats", h.GetAvailableSeats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}/manifest", h.GetManifest).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}/status", h.SetFlightStatus).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/flights/{id}/complete", h.CompleteFlight).Methods(http.MethodPost, http.MethodOptions)

	// Reservations
	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/{reference}", h.GetReservation).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reservations/{reference}", h.CancelReservation).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/reservations/{reference}/check-in", h.CheckIn).Methods(http.MethodPost, http.MethodOptions)

	// Passengers
	api.HandleFunc("/passengers/{email}/reservations", h.GetPassengerReservations).Methods(http.MethodGet, http.MethodOptions)

	// Master data / admin
	api.HandleFunc("/airports", h.GetAirports).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/admin/statistics", h.GetStatistics).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket availability feed per flight
	api.HandleFunc("/flights/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
		flightID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid flight ID", http.StatusBadRequest)
			return
		}
		hub.ServeWS(w, r, flightID)
	})

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
