// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"swedavia-flights-service/internal/domain/entity"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (airport reference data)
	PostgresURI string

	// Swedavia API
	SwedaviaBaseURL string
	APIKey          string
	APIKeySecondary string
	RequestTimeout  time.Duration

	// Default subscriber, used to seed an empty subscriber collection
	Airport    string
	FlightType entity.FlightType
	HoursBack  int
	HoursAhead int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "swedavia"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		SwedaviaBaseURL: getEnv("SWEDAVIA_BASE_URL", "https://api.swedavia.se/flightinfo/v2"),
		APIKey:          getEnv("SWEDAVIA_API_KEY", ""),
		APIKeySecondary: getEnv("SWEDAVIA_API_KEY_SECONDARY", ""),
		RequestTimeout:  time.Duration(getEnvAsInt("SWEDAVIA_REQUEST_TIMEOUT", 30)) * time.Second,

		Airport:    getEnv("AIRPORT", ""),
		FlightType: entity.FlightType(getEnv("FLIGHT_TYPE", string(entity.FlightTypeBoth))),
		HoursBack:  getEnvAsInt("HOURS_BACK", entity.DefaultHoursBack),
		HoursAhead: getEnvAsInt("HOURS_AHEAD", entity.DefaultHoursAhead),
	}

	if config.APIKey == "" {
		return nil, errors.New("SWEDAVIA_API_KEY is required")
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
