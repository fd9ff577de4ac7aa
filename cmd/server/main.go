package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/database"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/handlers"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/router"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const DefaultPort = "8080"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = DefaultPort
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, cleanup, err := openStore(ctx, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer cleanup()

	hub := websocket.NewHub(logger)
	go hub.Run()

	reservations := service.NewReservationService(store, hub, logger)
	h := handlers.NewHandler(reservations, logger)
	r := router.New(h, hub, logger)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStore connects to Postgres when DATABASE_URL is set, otherwise falls
// back to an in-memory store seeded with a sample fleet.
func openStore(ctx context.Context, logger *zap.Logger) (service.Store, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Info("DATABASE_URL not set, using in-memory store with sample fleet")
		return seedSampleFleet(database.NewMemoryStore()), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	repo := database.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("connected to Postgres")
	return repo, pool.Close, nil
}

// seedSampleFleet provisions demo master data: three airports, one
// aircraft (rows 1-3 business, 4-20 economy, columns A-F) and two flights
// departing tomorrow.
func seedSampleFleet(store *database.MemoryStore) *database.MemoryStore {
	jfk := store.AddAirport(database.Airport{AirportCode: "JFK", AirportName: "John F. Kennedy International", City: "New York", Country: "USA"})
	lax := store.AddAirport(database.Airport{AirportCode: "LAX", AirportName: "Los Angeles International", City: "Los Angeles", Country: "USA"})
	ord := store.AddAirport(database.Airport{AirportCode: "ORD", AirportName: "O'Hare International", City: "Chicago", Country: "USA"})

	var seats []database.Seat
	for row := 1; row <= 20; row++ {
		for _, col := range []string{"A", "B", "C", "D", "E", "F"} {
			class := database.SeatClassEconomy
			if row <= 3 {
				class = database.SeatClassBusiness
			}
			seats = append(seats, database.Seat{
				SeatNumber: fmt.Sprintf("%d%s", row, col),
				Class:      class,
			})
		}
	}
	aircraft := store.AddAircraft("Boeing 737-800", "N737AB", seats)

	tomorrow := time.Now().Add(24 * time.Hour)
	store.AddFlight(database.Flight{
		FlightNumber:         "AA123",
		AircraftID:           aircraft.ID,
		OriginAirportID:      jfk.ID,
		DestinationAirportID: lax.ID,
		DepartureTime:        tomorrow,
		ArrivalTime:          tomorrow.Add(6 * time.Hour),
		BasePrice:            150.00,
	})
	store.AddFlight(database.Flight{
		FlightNumber:         "UA456",
		AircraftID:           aircraft.ID,
		OriginAirportID:      ord.ID,
		DestinationAirportID: lax.ID,
		DepartureTime:        tomorrow.Add(4 * time.Hour),
		ArrivalTime:          tomorrow.Add(8 * time.Hour),
		BasePrice:            200.00,
	})
	return store
}
