package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds application configuration. Values are read from an optional TOML
// file first and then overridden by PROJECTHUB_* environment variables.
type Config struct {
	Server struct {
		Port string `toml:"port" env:"PORT" validate:"required"`
	} `toml:"server" envPrefix:"SERVER_"`

	Database struct {
		Driver string `toml:"driver" env:"DRIVER" validate:"required,oneof=sqlite postgres"`
		DSN    string `toml:"dsn" env:"DSN" validate:"required"`
	} `toml:"database" envPrefix:"DATABASE_"`

	Auth struct {
		JWTSecret    string   `toml:"jwt_secret" env:"JWT_SECRET" validate:"required,min=16"`
		TokenTTL     Duration `toml:"token_ttl" env:"TOKEN_TTL" validate:"gt=0"`
		RootEmail    string   `toml:"root_email" env:"ROOT_EMAIL" validate:"required,email"`
		RootPassword string   `toml:"root_password" env:"ROOT_PASSWORD" validate:"required,min=8"`
	} `toml:"auth" envPrefix:"AUTH_"`

	Log struct {
		Level  string `toml:"level" env:"LEVEL" validate:"oneof=debug info warn error dpanic panic fatal"`
		Format string `toml:"format" env:"FORMAT" validate:"oneof=json console"`
	} `toml:"log" envPrefix:"LOG_"`

	Redis struct {
		Addr     string `toml:"addr" env:"ADDR" validate:"omitempty,hostname_port"`
		Password string `toml:"password" env:"PASSWORD"`
		DB       int    `toml:"db" env:"DB" validate:"gte=0"`
	} `toml:"redis" envPrefix:"REDIS_"`

	Throttle struct {
		Limit  int      `toml:"limit" env:"LIMIT" validate:"gte=1"`
		Window Duration `toml:"window" env:"WINDOW" validate:"gt=0"`
	} `toml:"throttle" envPrefix:"THROTTLE_"`
}

// Duration is a time.Duration that decodes from strings such as "15m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	var c Config
	c.Server.Port = "8080"
	c.Database.Driver = "sqlite"
	c.Database.DSN = "projecthub.db"
	c.Auth.JWTSecret = "projecthub-dev-secret-change-in-production"
	c.Auth.TokenTTL = Duration(24 * time.Hour)
	c.Auth.RootEmail = "root@projecthub.local"
	c.Auth.RootPassword = "changeme123"
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Throttle.Limit = 10
	c.Throttle.Window = Duration(time.Minute)
	return &c
}

// Load builds the configuration. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load()

	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(c, env.Options{Prefix: "PROJECTHUB_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
