package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	// TTL is the value of the TTL header on outgoing pushes, in seconds.
	TTL int

	// VAPIDMnemonic, if set, derives the agent's ES256 signing identity.
	// VAPIDSubject is the contact URI claim (usually a mailto: address).
	VAPIDMnemonic string
	VAPIDSubject  string

	// GCMAPIKey, if set, is registered for the legacy GCM gateway at boot.
	GCMAPIKey string
}

func FromEnv() (*Config, error) {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getenv("PUSH_LISTEN_ADDR", "127.0.0.1:8080"),
		VAPIDMnemonic: strings.TrimSpace(os.Getenv("PUSH_VAPID_MNEMONIC")),
		VAPIDSubject:  strings.TrimSpace(os.Getenv("PUSH_VAPID_SUBJECT")),
		GCMAPIKey:     strings.TrimSpace(os.Getenv("PUSH_GCM_API_KEY")),
	}

	ttlRaw := getenv("PUSH_TTL_SECS", "2419200")
	ttl, err := strconv.Atoi(ttlRaw)
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("PUSH_TTL_SECS must be a non-negative integer, got %q", ttlRaw)
	}
	cfg.TTL = ttl

	if cfg.VAPIDSubject != "" && cfg.VAPIDMnemonic == "" {
		return nil, fmt.Errorf("PUSH_VAPID_SUBJECT is set but PUSH_VAPID_MNEMONIC is not")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
