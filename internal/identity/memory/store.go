// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package memory provides an in-memory AccountStore for tests and
// development mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/identity"
)

// Store implements identity.AccountStore with a mutex-guarded map.
// All read-modify-write sequences on a single account happen under the
// lock, so concurrent secret and reset-field updates cannot lose writes.
type Store struct {
	mu       sync.Mutex
	accounts map[ulid.ULID]*identity.Account
	byEmail  map[string]ulid.ULID // normalized email -> id
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[ulid.ULID]*identity.Account),
		byEmail:  make(map[string]ulid.ULID),
	}
}

// clone copies an account so callers never share memory with the stored
// record. The reset expiry pointer is copied too.
func clone(account *identity.Account) *identity.Account {
	cp := *account
	if account.ResetExpiresAt != nil {
		at := *account.ResetExpiresAt
		cp.ResetExpiresAt = &at
	}
	return &cp
}

// Create stores a new account, rejecting case-insensitive email reuse.
func (s *Store) Create(_ context.Context, account *identity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := identity.NormalizeEmail(account.Email)
	if _, exists := s.byEmail[email]; exists {
		return oops.Code("EMAIL_TAKEN").
			With("email", email).
			Errorf("email already registered")
	}

	s.accounts[account.ID] = clone(account)
	s.byEmail[email] = account.ID
	return nil
}

// GetByID retrieves an account by identifier.
func (s *Store) GetByID(_ context.Context, id ulid.ULID) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return clone(account), nil
}

// GetByEmail retrieves an account by normalized email.
func (s *Store) GetByEmail(_ context.Context, email string) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[identity.NormalizeEmail(email)]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return clone(s.accounts[id]), nil
}

// UpdatePassword replaces only the password digest.
func (s *Store) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return identity.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = time.Now()
	return nil
}

// SaveResetToken stores the reset digest and expiry, overwriting any
// prior credential.
func (s *Store) SaveResetToken(_ context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return identity.ErrNotFound
	}
	account.ResetTokenHash = tokenHash
	account.ResetExpiresAt = &expiresAt
	return nil
}

// ClearResetToken removes any stored reset credential.
func (s *Store) ClearResetToken(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return identity.ErrNotFound
	}
	account.ResetTokenHash = ""
	account.ResetExpiresAt = nil
	return nil
}

// ConsumeResetToken atomically matches a live reset credential, sets the
// new password digest, and clears the reset fields.
func (s *Store) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.ResetTokenHash != tokenHash {
			continue
		}
		if !account.HasLiveReset(now) {
			break
		}
		account.PasswordHash = newPasswordHash
		account.ResetTokenHash = ""
		account.ResetExpiresAt = nil
		account.UpdatedAt = now
		return clone(account), nil
	}
	return nil, identity.ErrNotFound
}

// Compile-time interface check.
var _ identity.AccountStore = (*Store)(nil)
