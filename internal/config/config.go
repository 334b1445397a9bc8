// Package config loads the service's environment-driven configuration.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Config holds the service's runtime configuration, read from environment
// variables at startup.
type Config struct {
	StoreHost  string
	StorePort  int
	TTL        time.Duration
	ListenAddr string
}

const (
	defaultStoreHost  = "localhost"
	defaultStorePort  = 6379
	defaultTTLSeconds = 300
	defaultListenAddr = ":8090"
)

// Load reads STORE_HOST, STORE_PORT, TTL, and BEAVER_LISTEN_ADDR from the
// environment, applying defaults for any that are unset.
func Load() (Config, error) {
	cfg := Config{
		StoreHost:  getEnv("STORE_HOST", defaultStoreHost),
		StorePort:  defaultStorePort,
		TTL:        defaultTTLSeconds * time.Second,
		ListenAddr: getEnv("BEAVER_LISTEN_ADDR", defaultListenAddr),
	}

	if v := os.Getenv("STORE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid STORE_PORT %q", v)
		}
		cfg.StorePort = port
	}

	if v := os.Getenv("TTL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid TTL %q", v)
		}
		cfg.TTL = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
