package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultDatabaseURL   = "fleetservice.db"
	defaultPort          = "8080"
	defaultHoldTTL       = "5m"
	defaultMaxSpan       = "720h"
	defaultSweepInterval = "10s"
	defaultTxTimeout     = "10s"
)

// Config holds the runtime configuration for the fleet service.
type Config struct {
	DatabaseURL string
	Port        string

	// ReservationHoldTTL is how long a PENDING hold stays valid before it
	// can be expired.
	ReservationHoldTTL time.Duration

	// ReservationMaxSpan caps the length of a single booking interval.
	ReservationMaxSpan time.Duration

	// ReaperSweepInterval is the delay between expiry sweeps.
	ReaperSweepInterval time.Duration

	// TxTimeout bounds a single allocation/confirm transaction.
	TxTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))

	var err error
	cfg.ReservationHoldTTL, err = parseDurationEnv("RESERVATION_HOLD_TTL", defaultHoldTTL)
	if err != nil {
		return nil, err
	}

	cfg.ReservationMaxSpan, err = parseDurationEnv("RESERVATION_MAX_SPAN", defaultMaxSpan)
	if err != nil {
		return nil, err
	}

	cfg.ReaperSweepInterval, err = parseDurationEnv("RESERVATION_SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	cfg.TxTimeout, err = parseDurationEnv("RESERVATION_TX_TIMEOUT", defaultTxTimeout)
	if err != nil {
		return nil, err
	}

	if cfg.ReservationHoldTTL <= 0 {
		return nil, fmt.Errorf("RESERVATION_HOLD_TTL must be positive")
	}
	if cfg.ReaperSweepInterval <= 0 {
		return nil, fmt.Errorf("RESERVATION_SWEEP_INTERVAL must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(getEnv(key, fallback))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return d, nil
}
