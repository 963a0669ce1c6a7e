// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/identity"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := identity.NewBcryptHasher(bcrypt.MinCost)

	t.Run("produces bcrypt digest", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
		assert.NotEqual(t, "password123", hash)
	})

	t.Run("same password produces different digests", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := identity.NewBcryptHasher(bcrypt.MinCost)

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails without error", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed digest returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-digest")
		assert.Error(t, err)
	})
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	// A cost below bcrypt's minimum falls back to the default, so the
	// digest carries the default work factor.
	hasher := identity.NewBcryptHasher(0)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, identity.DefaultHashCost, cost)
}
