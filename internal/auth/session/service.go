// Package session implements the sign-in / refresh lifecycle on top of the
// token codec.
//
// Both token kinds are stateless: nothing is persisted server-side and there
// is no revocation list, so "sign-out" is a cookie clear, not a revocation.
// The access-token payload is the user id directly; the same policy applies
// to sign-in and refresh.
package session

import (
	"context"
	"errors"
	"time"

	"casavia/internal/auth/token"
	"casavia/internal/store"
)

// UserStore is the credential-store contract the issuer needs.
type UserStore interface {
	FindUserByCredentials(username, password string) (store.User, error)
	FindUserByID(id int64) (store.User, error)
}

// AccessClaims is the verified principal attached to authenticated requests.
type AccessClaims struct {
	UserID    int64
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issued is the result of a successful sign-in or refresh.
// RefreshToken and RefreshExp are zero on refresh: the existing cookie stays.
type Issued struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	User         store.User
}

// Service mints and verifies session tokens against the credential store.
type Service struct {
	cfg   Config
	codec *token.Codec
	users UserStore
}

// NewService constructs a Service. Fails when the secret cannot back a codec.
func NewService(cfg Config, users UserStore) (*Service, error) {
	codec, err := token.New(cfg.Secret, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, codec: codec, users: users}, nil
}

// Enforced reports whether auth enforcement is active.
func (s *Service) Enforced() bool { return s.cfg.Enforced }

// RefreshTTL returns the configured refresh-token lifetime, which is also the
// cookie max-age.
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// SignIn checks credentials and mints an access/refresh token pair.
// A miss returns ErrInvalidCredentials regardless of which field was wrong.
func (s *Service) SignIn(_ context.Context, identifier, secret string) (Issued, error) {
	user, err := s.users.FindUserByCredentials(identifier, secret)
	if err != nil {
		return Issued{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()

	refreshToken, refreshExp, err := s.codec.Issue(user.ID, now, s.cfg.RefreshTTL)
	if err != nil {
		return Issued{}, err
	}
	accessToken, accessExp, err := s.codec.Issue(user.ID, now, s.cfg.AccessTTL)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: refreshToken,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Refresh verifies a refresh token, re-resolves the user, and mints a fresh
// access token without re-checking credentials.
func (s *Service) Refresh(_ context.Context, refreshToken string) (Issued, error) {
	now := time.Now().UTC()

	claims, err := s.codec.Verify(refreshToken, now)
	if err != nil {
		return Issued{}, ErrInvalidToken
	}

	user, err := s.users.FindUserByID(claims.UserID)
	if err != nil {
		return Issued{}, ErrInvalidToken
	}

	accessToken, accessExp, err := s.codec.Issue(user.ID, now, s.cfg.AccessTTL)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		AccessToken: accessToken,
		AccessExp:   accessExp,
		User:        user,
	}, nil
}

// VerifyAccess checks an access token's signature and expiry. It does not
// re-fetch the user record: verification, not enrichment, is its job, and the
// same token verifies to the same result until it expires.
func (s *Service) VerifyAccess(tokenString string, now time.Time) (AccessClaims, error) {
	claims, err := s.codec.Verify(tokenString, now)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	return AccessClaims{
		UserID:    claims.UserID,
		TokenID:   claims.TokenID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// IssueAccessToken mints a short-lived access token for an already-resolved
// user id. Used by tests and tooling that need a token with a custom TTL.
func (s *Service) IssueAccessToken(userID int64, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if ttl < 0 {
		return "", time.Time{}, errors.New("negative ttl")
	}
	return s.codec.Issue(userID, now, ttl)
}
