// Package config holds the explicitly constructed runtime configuration.
// All environment-derived settings are read once at startup and injected
// into the managers instead of being read ad hoc from the process environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingPepper is returned when the server-wide password secret is unset.
// This is a fatal startup condition, not a per-request error.
var ErrMissingPepper = errors.New("PASSWORD_PEPPER is not set")

// Config is the complete runtime configuration of the server.
type Config struct {
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	Port        string `env:"PORT" env-default:":8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	Database Database
	Mail     Mail

	// PasswordPepper is the server-wide secret mixed into every password
	// before the adaptive hash is applied.
	PasswordPepper string `env:"PASSWORD_PEPPER"`
	// BcryptCost overrides the environment-derived default when > 0.
	BcryptCost int `env:"BCRYPT_COST" env-default:"0"`

	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"720h"`
	ActivationTTL time.Duration `env:"ACTIVATION_TTL" env-default:"24h"`

	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// Database holds the Postgres connection settings.
type Database struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASS"`
	Name     string `env:"DB_NAME"`
}

// Mail holds the Mailgun settings used by the mail manager.
type Mail struct {
	APIKey           string `env:"MAILGUN_API_KEY"`
	Domain           string `env:"MAILGUN_DOMAIN" env-default:"mail.kanzlei-weber.de"`
	ContactRecipient string `env:"CONTACT_RECIPIENT" env-default:"kontakt@kanzlei-weber.de"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the startup-class invariants of the configuration.
func (c *Config) Validate() error {
	if c.PasswordPepper == "" {
		return ErrMissingPepper
	}

	return nil
}

// Cost returns the bcrypt cost factor for the configured environment.
// Development and test stay at the cheap minimum so iteration is fast,
// production pays for offline brute-force resistance.
func (c *Config) Cost() int {
	if c.BcryptCost > 0 {
		return c.BcryptCost
	}

	if c.Environment == "production" {
		return 12
	}

	return bcrypt.MinCost
}

// ConnectionString assembles the pgx connection string.
func (d *Database) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}
