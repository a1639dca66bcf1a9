// Package config loads all runtime settings from the environment into an
// explicit settings object. Nothing else in the codebase reads os.Getenv;
// the mail transport and database pool are constructed from these values
// and passed down as dependencies.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds every configurable value of the portal backend.
type Settings struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"communityportal"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	SMTPEnabled  bool   `envconfig:"SMTP_ENABLED" default:"false"`
	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
}

// Load reads an optional .env file, then processes PORTAL_* environment
// variables into a Settings value.
func Load() (Settings, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("PORTAL", &s); err != nil {
		return Settings{}, fmt.Errorf("process env config: %w", err)
	}
	return s, nil
}

// DSN builds a libpq-compatible connection string.
func (s Settings) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.DBHost, s.DBPort, s.DBUser, s.DBPassword, s.DBName, s.DBSSLMode,
	)
}
