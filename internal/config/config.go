package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process configuration, resolved once at startup and
// injected into components.
type Config struct {
	Port        string        `env:"PORT" envDefault:"5000"`
	Environment string        `env:"APP_ENV" envDefault:"development"`
	MongoURI    string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string        `env:"MONGO_DB" envDefault:"driver_safety"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"default-secret-key-change-in-production"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	ClientURL   string        `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	MQTTBroker  string        `env:"MQTT_BROKER"`
	MQTTClient  string        `env:"MQTT_CLIENT_ID" envDefault:"driver-safety-api"`
	LogJSON     bool          `env:"LOG_JSON"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
