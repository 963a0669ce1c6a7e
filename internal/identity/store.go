// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// AccountStore manages account persistence. It is the single shared
// mutable resource of the core: implementations must provide atomic
// per-account read-modify-write for the password and reset fields.
//
// Every method that writes the password digest takes an already-hashed
// value. Hashing happens exactly once, in the service layer, and only
// when the secret actually changes; no store write ever re-hashes.
type AccountStore interface {
	// Create stores a new account. The email must be unique
	// case-insensitively; a conflict fails with code EMAIL_TAKEN.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by identifier.
	// Returns ErrNotFound if no account exists.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by normalized email
	// (case-insensitive). Returns ErrNotFound if no account exists.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdatePassword replaces only the password digest.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SaveResetToken stores the reset credential digest and expiry,
	// overwriting any prior credential. No other field is validated or
	// touched.
	SaveResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes any stored reset credential. Used both
	// for the delivery-failure rollback and as a no-op-safe cleanup.
	ClearResetToken(ctx context.Context, id ulid.ULID) error

	// ConsumeResetToken atomically finds the account whose stored reset
	// digest matches and whose expiry is strictly in the future, sets
	// the new password digest, and clears the reset fields. Returns
	// ErrNotFound when no live credential matches, whether the token is
	// wrong, already consumed, or expired.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*Account, error)
}
