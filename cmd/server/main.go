package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swedavia-flights-service/internal/domain/entity"
	domainrepo "swedavia-flights-service/internal/domain/repository"
	"swedavia-flights-service/internal/infrastructure/config"
	"swedavia-flights-service/internal/infrastructure/persistence"
	"swedavia-flights-service/internal/interface/httpapi"
	"swedavia-flights-service/internal/interface/repository"
	"swedavia-flights-service/internal/interface/swedavia"
	"swedavia-flights-service/internal/usecase"
	"swedavia-flights-service/pkg/logger"
	"swedavia-flights-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Check for key rotation warnings every 6 hours
const keyRotationCheckInterval = 6 * time.Hour

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Swedavia Flights Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Airport reference data lives in PostgreSQL; the service still runs
	// without it, falling back to bare IATA codes
	var airportRepository domainrepo.AirportRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepository, err = repository.NewGormAirportRepository(gormDB)
		if err != nil {
			log.Fatal("Failed to seed airport reference data", "error", err)
		}
	} else {
		log.Warn("POSTGRES_DSN not set, airport reference data disabled")
	}

	// Set up repositories
	callLogRepo := repository.NewMongoCallLogRepository(db)
	boostRepo := repository.NewMongoBoostRepository(db)
	subscriberRepo := repository.NewMongoSubscriberRepository(db)

	// Set up metrics
	m := metrics.NewMetrics("swedavia")

	// Quota ledger and boost windows load their persisted state up front
	ledger := usecase.NewQuotaLedger(ctx, callLogRepo, log, m)
	boostManager := usecase.NewBoostManager(ctx, boostRepo, log, m)
	if purged := boostManager.PurgeExpired(ctx); purged > 0 {
		log.Info("Purged expired boost windows", "count", purged)
	}

	// Shared API client; every outbound call is recorded in the ledger
	apiClient := swedavia.NewClient(
		cfg.SwedaviaBaseURL,
		cfg.APIKey,
		cfg.APIKeySecondary,
		cfg.RequestTimeout,
		ledger,
		log,
		m,
	)

	scheduler := usecase.NewUpdateScheduler(log)
	manager := usecase.NewPollManager(apiClient, scheduler, boostManager, airportRepository, log, m)

	subscribers := loadSubscribers(ctx, cfg, subscriberRepo, airportRepository, log)
	if len(subscribers) == 0 {
		log.Fatal("No subscribers configured, set AIRPORT or seed the subscribers collection")
	}

	// Start polling
	manager.Start(ctx, subscribers)

	// Periodic key rotation warnings
	rotation := usecase.NewKeyRotationChecker()
	go func() {
		checkRotation(rotation, log)

		rotationTicker := time.NewTicker(keyRotationCheckInterval)
		defer rotationTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-rotationTicker.C:
				checkRotation(rotation, log)
			}
		}
	}()

	// Set up HTTP server for the API and metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	apiHandler := httpapi.NewHandler(manager, ledger, boostManager, rotation, log)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all poll loops
	manager.Wait()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Swedavia Flights Service stopped")
}

// loadSubscribers reads the configured subscriber set, seeding a default
// from the environment when the collection is empty
func loadSubscribers(ctx context.Context, cfg *config.Config, repo domainrepo.SubscriberRepository, airports domainrepo.AirportRepository, log logger.Logger) []*entity.Subscriber {
	subscribers, err := repo.All(ctx)
	if err != nil {
		log.Fatal("Failed to load subscribers", "error", err)
	}

	if len(subscribers) == 0 && cfg.Airport != "" {
		seed := &entity.Subscriber{
			Airport:    cfg.Airport,
			FlightType: cfg.FlightType,
			HoursBack:  cfg.HoursBack,
			HoursAhead: cfg.HoursAhead,
		}
		if err := validateSubscriber(ctx, seed, airports); err != nil {
			log.Fatal("Invalid subscriber configuration", "error", err)
		}
		if err := repo.Upsert(ctx, seed); err != nil {
			log.Fatal("Failed to seed default subscriber", "error", err)
		}
		log.Info("Seeded default subscriber", "airport", seed.Airport, "flightType", seed.FlightType)
		subscribers = []*entity.Subscriber{seed}
	}

	for _, subscriber := range subscribers {
		if err := validateSubscriber(ctx, subscriber, airports); err != nil {
			log.Fatal("Invalid subscriber configuration",
				"airport", subscriber.Airport, "error", err)
		}
	}
	return subscribers
}

func validateSubscriber(ctx context.Context, subscriber *entity.Subscriber, airports domainrepo.AirportRepository) error {
	if err := subscriber.Validate(); err != nil {
		return err
	}
	if airports != nil {
		if _, err := airports.GetByIATA(ctx, subscriber.Airport); err != nil {
			return err
		}
	}
	return nil
}

func checkRotation(rotation *usecase.KeyRotationChecker, log logger.Logger) {
	for _, kind := range []usecase.KeyKind{usecase.KeyPrimary, usecase.KeySecondary} {
		if rotation.ShouldWarn(kind) {
			log.Warn("Upcoming API key rotation", "message", rotation.WarningMessage(kind))
		}
	}
}
