// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// PendingProviderMessage is the advisory returned when a provider in
// pending status logs in. Non-fatal: the login still succeeds.
const PendingProviderMessage = "Your provider account is pending approval."

// dummyPasswordHash is verified when a login targets a non-existent
// account so response time stays consistent with the real-account path.
// This is NOT a credential - it is a fake digest that matches no issued
// password.
//
//nolint:gosec // G101: fake digest for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Mailer delivers the plaintext reset credential out-of-band. The core
// never stores the plaintext; delivery failure triggers a rollback of
// the persisted reset fields.
type Mailer interface {
	DeliverReset(ctx context.Context, email, token string) error
}

// RegisterRequest carries the fields required to create an account.
type RegisterRequest struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
}

// AuthResult is the success payload for operations that establish an
// authenticated identity: an account summary plus a fresh session token.
// Message carries the non-fatal advisory for pending providers.
type AuthResult struct {
	Account Summary
	Token   string
	Message string
}

// Service orchestrates the credential store, password hasher, token
// service, and authorization gate into the operations external
// collaborators call.
type Service struct {
	store  AccountStore
	hasher PasswordHasher
	tokens *TokenService
	gate   *Gate
	mailer Mailer
}

// NewService creates a Service. All dependencies are required.
func NewService(store AccountStore, hasher PasswordHasher, tokens *TokenService, mailer Mailer) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("account store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if mailer == nil {
		return nil, oops.Errorf("mailer is required")
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		gate:   NewGate(),
		mailer: mailer,
	}, nil
}

// RegisterClient creates a client account in active status. Requires no
// prior authentication.
func (s *Service) RegisterClient(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, nil, req, RoleClient, StatusActive)
}

// RegisterProvider creates a provider account in pending status. The
// caller must be an authenticated admin; the account stays pending until
// promoted out-of-band.
func (s *Service) RegisterProvider(ctx context.Context, caller *Account, req RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, caller, req, RoleProvider, StatusPending)
}

// RegisterAdmin creates an admin account in active status. The caller
// must be an authenticated admin.
func (s *Service) RegisterAdmin(ctx context.Context, caller *Account, req RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, caller, req, RoleAdmin, StatusActive)
}

// register enforces the elevated-registration rule at the operation
// boundary, then validates, hashes exactly once, and persists.
func (s *Service) register(ctx context.Context, caller *Account, req RegisterRequest, role Role, status Status) (*AuthResult, error) {
	if err := s.gate.CheckElevatedRegistration(caller, role); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account, err := NewAccount(req.FullName, req.Email, hash, req.PhoneNumber, role, status)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account.Summary(), Token: token}, nil
}

// Login authenticates a credential pair and issues a session token.
// Wrong email and wrong password fail identically with
// INVALID_CREDENTIALS; lifecycle rejection is reported separately as
// ACCOUNT_NOT_USABLE only after the secret checked out.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, lookupErr := s.store.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		exists = true
	}

	// Always verify so the response time is consistent whether or not
	// the account exists.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		return nil, oops.Code("LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !exists || !valid {
		return nil, oops.Code("INVALID_CREDENTIALS").
			Errorf("invalid email or password")
	}

	if err := s.gate.CheckUsable(account); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	result := &AuthResult{Account: account.Summary(), Token: token}
	if account.Role == RoleProvider && account.Status == StatusPending {
		result.Message = PendingProviderMessage
	}
	return result, nil
}

// ResolveToken verifies a bearer token and loads the current account
// record, enforcing the lifecycle gate against present state rather than
// token contents. This is how suspension takes effect despite tokens
// having no revocation path.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Account, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				Errorf("account no longer exists")
		}
		return nil, oops.Code("RESOLVE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	if err := s.gate.CheckUsable(account); err != nil {
		return nil, err
	}
	return account, nil
}

// CurrentIdentity returns the account summary for a bearer token.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (Summary, error) {
	account, err := s.ResolveToken(ctx, token)
	if err != nil {
		return Summary{}, err
	}
	return account.Summary(), nil
}

// RequestReset issues a reset credential for the account registered
// under email and hands the plaintext to the mailer. Only the digest and
// expiry are persisted; if delivery fails they are rolled back so no
// undeliverable credential stays live.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	account, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ACCOUNT_NOT_FOUND").
				Errorf("no account registered with this email")
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	token, digest, err := GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.store.SaveResetToken(ctx, account.ID, digest, time.Now().Add(ResetTokenExpiry)); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "save reset token").
			Wrap(err)
	}

	if err := s.mailer.DeliverReset(ctx, account.Email, token); err != nil {
		// A credential nobody received must not stay live.
		if clearErr := s.store.ClearResetToken(ctx, account.ID); clearErr != nil {
			return oops.Code("RESET_DELIVERY_FAILED").
				With("operation", "rollback reset token").
				Wrap(clearErr)
		}
		return oops.Code("RESET_DELIVERY_FAILED").
			With("operation", "deliver reset token").
			Wrap(err)
	}

	return nil
}

// CompleteReset consumes a reset credential and sets a new password.
// Wrong, already-consumed, and expired tokens fail uniformly with
// RESET_TOKEN_INVALID. On success the reset fields are cleared in the
// same atomic store operation and a fresh session token is issued.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) (*AuthResult, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	account, err := s.store.ConsumeResetToken(ctx, HashResetToken(token), hash, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("RESET_TOKEN_INVALID").
				Errorf("invalid or expired token")
		}
		return nil, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "consume reset token").
			Wrap(err)
	}

	sessionToken, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account.Summary(), Token: sessionToken}, nil
}
