// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/identity"
	"github.com/taskhive/taskhive/pkg/errutil"
)

func TestGate_CheckUsable(t *testing.T) {
	gate := identity.NewGate()

	tests := []struct {
		name       string
		status     identity.Status
		expectCode string
	}{
		{name: "active passes", status: identity.StatusActive},
		{name: "pending passes", status: identity.StatusPending},
		{name: "suspended rejected", status: identity.StatusSuspended, expectCode: "ACCOUNT_NOT_USABLE"},
		{name: "inactive rejected", status: identity.StatusInactive, expectCode: "ACCOUNT_NOT_USABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.CheckUsable(&identity.Account{Status: tt.status})
			if tt.expectCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.expectCode)
		})
	}
}

func TestGate_CheckRole(t *testing.T) {
	gate := identity.NewGate()

	t.Run("permitted role passes", func(t *testing.T) {
		account := &identity.Account{Role: identity.RoleAdmin}
		require.NoError(t, gate.CheckRole(account, identity.RoleAdmin))
	})

	t.Run("any of several permitted roles passes", func(t *testing.T) {
		account := &identity.Account{Role: identity.RoleProvider}
		require.NoError(t, gate.CheckRole(account, identity.RoleAdmin, identity.RoleProvider))
	})

	t.Run("role outside the set is rejected", func(t *testing.T) {
		account := &identity.Account{Role: identity.RoleClient}
		err := gate.CheckRole(account, identity.RoleAdmin)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ROLE_FORBIDDEN")
		errutil.AssertErrorContext(t, err, "role", "client")
	})
}

func TestGate_CheckElevatedRegistration(t *testing.T) {
	gate := identity.NewGate()

	t.Run("client registration needs no caller", func(t *testing.T) {
		require.NoError(t, gate.CheckElevatedRegistration(nil, identity.RoleClient))
	})

	t.Run("admin caller may create provider", func(t *testing.T) {
		caller := &identity.Account{Role: identity.RoleAdmin}
		require.NoError(t, gate.CheckElevatedRegistration(caller, identity.RoleProvider))
	})

	t.Run("admin caller may create admin", func(t *testing.T) {
		caller := &identity.Account{Role: identity.RoleAdmin}
		require.NoError(t, gate.CheckElevatedRegistration(caller, identity.RoleAdmin))
	})

	t.Run("anonymous caller may not create provider", func(t *testing.T) {
		err := gate.CheckElevatedRegistration(nil, identity.RoleProvider)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ROLE_FORBIDDEN")
	})

	t.Run("client caller may not create provider", func(t *testing.T) {
		caller := &identity.Account{Role: identity.RoleClient}
		err := gate.CheckElevatedRegistration(caller, identity.RoleProvider)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ROLE_FORBIDDEN")
	})

	t.Run("provider caller may not create admin", func(t *testing.T) {
		caller := &identity.Account{Role: identity.RoleProvider}
		err := gate.CheckElevatedRegistration(caller, identity.RoleAdmin)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "ROLE_FORBIDDEN")
	})
}
