// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import "github.com/samber/oops"

// Gate decides whether a resolved account may proceed with an operation.
// It enforces the lifecycle state machine ({pending, active} may log in
// and continue; {suspended, inactive} may not) and per-operation role
// sets.
type Gate struct{}

// NewGate creates a Gate.
func NewGate() *Gate {
	return &Gate{}
}

// CheckUsable rejects accounts whose lifecycle state forbids login and
// authenticated-call continuation.
func (g *Gate) CheckUsable(account *Account) error {
	switch account.Status {
	case StatusSuspended, StatusInactive:
		return oops.Code("ACCOUNT_NOT_USABLE").
			With("status", string(account.Status)).
			Errorf("account has been suspended, contact support")
	default:
		return nil
	}
}

// CheckRole rejects accounts whose role is not in the permitted set for
// the requested operation.
func (g *Gate) CheckRole(account *Account, permitted ...Role) error {
	for _, role := range permitted {
		if account.Role == role {
			return nil
		}
	}
	return oops.Code("ROLE_FORBIDDEN").
		With("role", string(account.Role)).
		Errorf("role %q is not authorized for this operation", account.Role)
}

// CheckElevatedRegistration enforces the privilege-escalation guard:
// creating a provider or admin account requires the caller to already be
// an authenticated admin. Creating a client account requires no caller.
func (g *Gate) CheckElevatedRegistration(caller *Account, newRole Role) error {
	if newRole == RoleClient {
		return nil
	}
	if caller == nil {
		return oops.Code("ROLE_FORBIDDEN").
			With("new_role", string(newRole)).
			Errorf("creating a %s account requires an authenticated admin", newRole)
	}
	return g.CheckRole(caller, RoleAdmin)
}
