package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port       string `env:"GAME_SERVICE_PORT" envDefault:"3002"`
	SocketPort string `env:"SOCKET_SERVICE_PORT" envDefault:"3003"`
	RateLimit  int    `env:"RATE_LIMIT" envDefault:"100"` // requests per minute per IP
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	StoreDriver string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI    string        `env:"MONGODB_URI"`
	PostgresURL string        `env:"POSTGRES_URL"`
	GameTTL     time.Duration `env:"GAME_TTL" envDefault:"0s"`

	PokeAPIURL        string        `env:"POKEAPI_URL" envDefault:"https://pokeapi.co/api/v2"`
	PokeAPITimeout    time.Duration `env:"POKEAPI_TIMEOUT" envDefault:"10s"`
	CatalogSize       int           `env:"POKEMON_CATALOG_SIZE" envDefault:"805"`
	LookupConcurrency int           `env:"LOOKUP_CONCURRENCY" envDefault:"6"`

	NatsEnabled bool `env:"NATS_ENABLED" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSocket parses the same environment for the socket service, which never
// opens a game store.
func LoadSocket() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimit < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be at least 1, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for store driver %q", c.StoreDriver)
		}
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.CatalogSize < 1 {
		return fmt.Errorf("POKEMON_CATALOG_SIZE must be at least 1, got %d", c.CatalogSize)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("RATE_LIMIT must be at least 1, got %d", c.RateLimit)
	}
	if c.GameTTL < 0 {
		return fmt.Errorf("GAME_TTL must not be negative")
	}
	return nil
}
