package session

import "errors"

var (
	// ErrInvalidCredentials is returned on a sign-in miss. It deliberately
	// carries no hint about which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when an access or refresh token is missing,
	// malformed, or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)
