package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Getenv returns the value of key, or def when it is unset or empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Getenb reads a boolean from key. Unrecognised values fall back to def.
func Getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
		log.Printf("ignoring %s=%q: not a boolean", key, v)
	}
	return def
}

// Getdur reads a time.Duration from key, e.g. "24h".
func Getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil && d > 0 {
			return d
		}
		log.Printf("ignoring %s=%q: not a positive duration", key, v)
	}
	return def
}
