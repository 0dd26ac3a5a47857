// Package token implements the signed access/refresh token codec.
//
// Tokens are HS256 JWTs signed with a single process-wide secret. They carry
// the user id in the subject claim plus issued-at/expiry timestamps and are
// verified statelessly: signature plus expiry, nothing persisted server-side.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails verification for any
	// reason: bad signature, malformed input, unexpected algorithm, or expiry.
	// Verification failure is an expected outcome, not an exceptional one.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSecretTooShort is returned when the signing secret is absent or
	// below the minimum byte length. There is no fallback secret: the codec
	// fails closed instead.
	ErrSecretTooShort = errors.New("signing secret missing or too short")
)

// MinSecretBytes is the minimum length of the HS256 signing secret.
// Measured in bytes (not runes) because the key is used as raw bytes.
const MinSecretBytes = 32

// Claims is the verified payload of a casavia token.
type Claims struct {
	UserID    int64
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies signed, expiring tokens.
// A single Codec instance is safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
}

// New constructs a Codec. The secret must be at least MinSecretBytes bytes.
func New(secret []byte, issuer string) (*Codec, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issue signs a token for userID that expires at now+ttl.
// It is a pure function of secret, inputs, and the supplied clock.
func (c *Codec) Issue(userID int64, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// A token is invalid at exactly its expiry instant: no leeway is applied.
func (c *Codec) Verify(tokenString string, now time.Time) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrInvalidToken
	}

	var reg jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&reg,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(reg.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		UserID:    userID,
		TokenID:   reg.ID,
		ExpiresAt: reg.ExpiresAt.Time,
	}
	if reg.IssuedAt != nil {
		claims.IssuedAt = reg.IssuedAt.Time
	}
	return claims, nil
}
