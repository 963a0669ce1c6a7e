// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role determines which operations an account may invoke.
type Role string

// Account roles.
const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state, independent of role.
type Status string

// Account lifecycle states.
const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// MinPasswordLength is the minimum accepted secret length.
const MinPasswordLength = 6

// emailRegex matches a standard address shape: local part, @, domain
// labels, and a 2-3 character TLD.
var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Account is a stored identity with a role and lifecycle status.
// The password is held only as a bcrypt digest. The reset fields hold at
// most one live reset credential (sha256 digest + expiry); issuing a new
// credential overwrites them.
type Account struct {
	ID             ulid.ULID
	FullName       string
	Email          string
	PasswordHash   string
	PhoneNumber    string
	Role           Role
	Status         Status
	ProfilePhoto   string
	ResetTokenHash string
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary is the caller-facing view of an account. It never carries the
// password digest or reset fields.
type Summary struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	ProfilePhoto string    `json:"profilePhoto,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// Summary returns the caller-facing view of the account.
func (a *Account) Summary() Summary {
	return Summary{
		ID:           a.ID.String(),
		FullName:     a.FullName,
		Email:        a.Email,
		PhoneNumber:  a.PhoneNumber,
		Role:         a.Role,
		Status:       a.Status,
		ProfilePhoto: a.ProfilePhoto,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// HasLiveReset reports whether a reset credential is stored and still
// valid at the given time.
func (a *Account) HasLiveReset(now time.Time) bool {
	return a.ResetTokenHash != "" && a.ResetExpiresAt != nil && a.ResetExpiresAt.After(now)
}

// NormalizeEmail lowercases and trims an email for storage and
// comparison. Uniqueness is always checked against the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates a validated Account with the given role and status.
// The passwordHash must already be a digest; NewAccount never hashes.
func NewAccount(fullName, email, passwordHash, phoneNumber string, role Role, status Status) (*Account, error) {
	if fullName == "" {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "fullName").
			Errorf("full name is required")
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "email").
			Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "email").
			Errorf("email address is not valid")
	}
	if passwordHash == "" {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "password").
			Errorf("password is required")
	}
	if phoneNumber == "" {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "phoneNumber").
			Errorf("phone number is required")
	}
	if !role.Valid() {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "role").
			Errorf("unknown role %q", role)
	}
	if !status.Valid() {
		return nil, oops.Code("VALIDATION_FAILED").
			With("field", "status").
			Errorf("unknown status %q", status)
	}

	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  phoneNumber,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidatePassword checks a plaintext secret against the length policy.
// Runs before hashing so the caller gets a field-level validation error
// instead of an opaque hasher failure.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("VALIDATION_FAILED").
			With("field", "password").
			Errorf("password is required")
	}
	if len(password) < MinPasswordLength {
		return oops.Code("VALIDATION_FAILED").
			With("field", "password").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
