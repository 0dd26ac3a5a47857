package app

import "time"

// Config contains server runtime configuration loaded from environment
// variables. Auth-specific configuration lives in the session and authapi
// packages and is loaded separately.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DBFile is the JSON file backing the mock store.
	DBFile string

	// AllowedOrigin is the single browser origin allowed to make
	// credentialed cross-origin requests. Empty disables CORS handling.
	AllowedOrigin string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("CASAVIA_HTTP_ADDR", "0.0.0.0:3001"),
		LogLevel: EnvString("CASAVIA_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("CASAVIA_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CASAVIA_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CASAVIA_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CASAVIA_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("CASAVIA_HTTP_MAX_HEADER_BYTES", 1<<20),

		DBFile:        EnvString("CASAVIA_DB_FILE", "./casavia.db.json"),
		AllowedOrigin: EnvString("CASAVIA_ALLOWED_ORIGIN", ""),
	}
}
