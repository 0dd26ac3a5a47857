package session

import (
	"os"
	"strconv"
	"time"

	"casavia/internal/auth/token"
)

// Config defines runtime configuration for the session subsystem.
//
// The signing secret is process-wide and loaded exactly once at startup.
// If it is absent or too short the server refuses to start: rejecting all
// tokens beats silently signing them with a weak default.
type Config struct {
	// Issuer is the value set in the "iss" claim of every token.
	Issuer string

	// Secret signs both access and refresh tokens (HS256).
	Secret []byte

	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration

	// RefreshTTL is the refresh-token (and cookie) lifetime.
	RefreshTTL time.Duration

	// Enforced controls whether auth responses carry tokens and the gate
	// rejects unauthenticated requests. Disabling it is a demo escape hatch,
	// not a security boundary: sign-in and refresh report success with a null
	// body, and protected routes pass through anonymously.
	Enforced bool
}

// DefaultConfig returns the default TTL policy: 15 minute access tokens,
// 30 day refresh tokens.
func DefaultConfig() Config {
	return Config{
		Issuer:     "casavia",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Enforced:   true,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - CASAVIA_AUTH_SECRET (>= 32 bytes)
//
// Optional:
//   - CASAVIA_AUTH_ISSUER
//   - CASAVIA_AUTH_ACCESS_TTL (Go duration)
//   - CASAVIA_AUTH_REFRESH_TTL (Go duration)
//   - CASAVIA_USE_AUTH (bool, default true)
//
// Returns ErrConfig when a value is invalid or the secret is unusable.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CASAVIA_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("CASAVIA_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := os.Getenv("CASAVIA_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	if v := os.Getenv("CASAVIA_USE_AUTH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.Enforced = b
	}

	cfg.Secret = []byte(os.Getenv("CASAVIA_AUTH_SECRET"))
	if len(cfg.Secret) < token.MinSecretBytes {
		return Config{}, ErrConfig
	}

	// Access tokens must not outlive the refresh tokens that renew them.
	if cfg.AccessTTL > cfg.RefreshTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
