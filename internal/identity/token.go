// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTokenTTL is the lifetime of an issued session token. There is
// no revocation path: once issued, a token stays valid until expiry, and
// suspension is enforced separately against the current account record.
const SessionTokenTTL = 30 * 24 * time.Hour

// sessionClaims binds an account identifier to the registered
// issued-at/expires-at claims.
type sessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// TokenService issues and verifies signed session tokens. It is
// stateless beyond the HMAC signing key, which is process-wide
// configuration loaded once at startup.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService creates a TokenService with the given signing key.
// An empty key is a fatal configuration error, never defaulted.
func NewTokenService(key []byte) (*TokenService, error) {
	if len(key) == 0 {
		return nil, oops.Code("TOKEN_KEY_MISSING").
			Errorf("session token signing key is not configured")
	}
	return &TokenService{key: key, ttl: SessionTokenTTL, now: time.Now}, nil
}

// Issue signs a session token for the account, expiring SessionTokenTTL
// from now.
func (s *TokenService) Issue(accountID ulid.ULID) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		AccountID: accountID.String(),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a session token and returns
// the account identifier it carries. A mis-signed or malformed token
// fails with TOKEN_INVALID; a validly-signed but expired token fails
// with TOKEN_EXPIRED. The two are distinguished because the
// caller-facing message differs.
func (s *TokenService) Verify(tokenString string) (ulid.ULID, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ulid.ULID{}, oops.Code("TOKEN_EXPIRED").
				Errorf("session token has expired")
		}
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").
			Errorf("session token is not valid")
	}
	if !token.Valid {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").
			Errorf("session token is not valid")
	}

	id, err := ulid.Parse(claims.AccountID)
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").
			Errorf("session token is not valid")
	}
	return id, nil
}
