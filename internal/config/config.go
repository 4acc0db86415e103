package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Cache     Cache     `yaml:"cache"`
	Search    Search    `yaml:"search"`
	RateLimit RateLimit `yaml:"ratelimit"`
	Providers Providers `yaml:"providers"`
	Analytics Analytics `yaml:"analytics"`
}

type HTTP struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Cache struct {
	Enabled       bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"true"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	FlightTTL     time.Duration `yaml:"flight_ttl" env:"CACHE_FLIGHT_TTL" env-default:"5m"`
	HotelTTL      time.Duration `yaml:"hotel_ttl" env:"CACHE_HOTEL_TTL" env-default:"10m"`
}

type Search struct {
	// Timeout bounds the whole fan-out/collect phase of one search.
	Timeout time.Duration `yaml:"timeout" env:"SEARCH_TIMEOUT" env-default:"15s"`
}

// RateLimit paces outbound provider calls. Providers holds per-upstream
// overrides keyed by provider name; it is yaml-only since maps do not
// map onto env vars.
type RateLimit struct {
	RPS       float64                 `yaml:"rps" env:"RATELIMIT_RPS" env-default:"10"`
	Burst     int                     `yaml:"burst" env:"RATELIMIT_BURST" env-default:"20"`
	Providers map[string]ProviderRate `yaml:"providers"`
}

type ProviderRate struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Providers struct {
	AmadeusClientID     string `yaml:"amadeus_client_id" env:"AMADEUS_CLIENT_ID"`
	AmadeusClientSecret string `yaml:"amadeus_client_secret" env:"AMADEUS_CLIENT_SECRET"`
	SkyscannerAPIKey    string `yaml:"skyscanner_api_key" env:"SKYSCANNER_API_KEY"`
	TravelpayoutsToken  string `yaml:"travelpayouts_token" env:"TRAVELPAYOUTS_TOKEN"`
	TravelpayoutsMarker string `yaml:"travelpayouts_marker" env:"TRAVELPAYOUTS_MARKER"`
	BookingAPIKey       string `yaml:"booking_api_key" env:"BOOKING_API_KEY"`
	// MockEnabled turns on the synthetic providers for development
	// environments with no upstream credentials.
	MockEnabled bool `yaml:"mock_enabled" env:"MOCK_PROVIDERS_ENABLED" env-default:"false"`
}

type Analytics struct {
	// Sink selects the search-log destination: postgres, kafka or none.
	Sink         string   `yaml:"sink" env:"ANALYTICS_SINK" env-default:"none"`
	PostgresDSN  string   `yaml:"postgres_dsn" env:"ANALYTICS_POSTGRES_DSN"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"ANALYTICS_KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaTopic   string   `yaml:"kafka_topic" env:"ANALYTICS_KAFKA_TOPIC" env-default:"search-logs"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fall back to env vars when the file is absent
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
