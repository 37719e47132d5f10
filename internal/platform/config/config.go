package config

import (
	"fmt"
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	RedisURL    string

	// Timezone is the fixed reference timezone for calendar dates and
	// ping wall-clock times.
	Timezone string

	// InactivityThreshold is how long a client may go without a
	// successful check-in before the sweep locks it.
	InactivityThreshold time.Duration

	// SweepInterval and IssueInterval drive the background triggers
	// owned by main; the core services never self-schedule.
	SweepInterval time.Duration
	IssueInterval time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main
// stays lean. An empty KEYPULSE_DATABASE_URL selects the in-memory
// store; an empty KEYPULSE_REDIS_URL disables the distributed job lock.
func FromEnv() Server {
	return Server{
		Addr:                envOr("KEYPULSE_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("KEYPULSE_DATABASE_URL"),
		RedisURL:            os.Getenv("KEYPULSE_REDIS_URL"),
		Timezone:            envOr("KEYPULSE_TIMEZONE", "Asia/Kolkata"),
		InactivityThreshold: durationOr("KEYPULSE_INACTIVITY_THRESHOLD", 48*time.Hour),
		SweepInterval:       durationOr("KEYPULSE_SWEEP_INTERVAL", 24*time.Hour),
		IssueInterval:       durationOr("KEYPULSE_ISSUE_INTERVAL", 24*time.Hour),
		ShutdownTimeout:     durationOr("KEYPULSE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Location resolves the configured reference timezone.
func (s Server) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
