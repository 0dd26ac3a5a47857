package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// CookieName is the refresh-token cookie. The name is part of the wire
// contract with the browser client.
const CookieName = "refreshToken"

// Config controls auth endpoint behavior.
type Config struct {
	// CookieSecure marks the refresh cookie Secure. Must be on in production;
	// off by default so plain-HTTP local development keeps the cookie.
	CookieSecure bool

	// MaxBodyBytes bounds request bodies before JSON decoding.
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth API config with safe defaults.
//
//   - CASAVIA_COOKIE_SECURE (bool; also enabled when CASAVIA_ENV=production)
//   - CASAVIA_AUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	cfg := Config{
		CookieSecure: strings.EqualFold(strings.TrimSpace(os.Getenv("CASAVIA_ENV")), "production"),
		MaxBodyBytes: 1 << 20,
	}

	if v := strings.TrimSpace(os.Getenv("CASAVIA_COOKIE_SECURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CASAVIA_AUTH_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	return cfg
}

func (c Config) sameSite() http.SameSite { return http.SameSiteStrictMode }
