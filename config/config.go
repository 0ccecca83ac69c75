package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"BLOCKPRESS_DB" envDefault:"blockpress.db"`
	SessionSecret string `env:"SESSION_SECRET,required"`
	Port          int    `env:"PORT" envDefault:"8080"`
	Env           string `env:"BLOCKPRESS_ENV" envDefault:"development"`
	LogLevel      string `env:"BLOCKPRESS_LOG_LEVEL" envDefault:"info"`

	// Seeding configuration
	DoSeed bool `env:"BLOCKPRESS_SEED" envDefault:"false"`

	// Front-office page cache
	CacheDir string `env:"BLOCKPRESS_CACHE_DIR" envDefault:"cache"`
	CacheTTL int    `env:"BLOCKPRESS_CACHE_TTL" envDefault:"300"` // seconds
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the address the HTTP server listens on.
func (c Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MinSessionSecretLength is the minimum accepted length for the session secret.
const MinSessionSecretLength = 32

// Load reads an optional .env file, parses environment variables and
// returns a Config struct.
func Load() (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}

	return cfg, nil
}
