// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskhive/taskhive/internal/identity"
	identitypg "github.com/taskhive/taskhive/internal/identity/postgres"
	"github.com/taskhive/taskhive/internal/store"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// TestMain sets up a PostgreSQL testcontainer and applies the schema.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("taskhive_test"),
		tcpostgres.WithUsername("taskhive"),
		tcpostgres.WithPassword("taskhive"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create pool: " + err.Error())
	}

	testPool = pool
	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createTestAccount(t *testing.T, repo *identitypg.AccountRepository, email string) *identity.Account {
	t.Helper()
	ctx := context.Background()

	account, err := identity.NewAccount(
		"Integration Person", email, "$2a$10$somedigest", "555-0100",
		identity.RoleClient, identity.StatusActive,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, account))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, account.ID.String())
	})
	return account
}

func TestAccountRepository_Integration_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "create@example.com")

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
	assert.Equal(t, account.Email, stored.Email)
	assert.Equal(t, account.Role, stored.Role)
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetExpiresAt)
}

func TestAccountRepository_Integration_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	createTestAccount(t, repo, "dup@example.com")

	// Same address with different case must hit the unique index.
	dup, err := identity.NewAccount(
		"Other Person", "dup@example.com", "$2a$10$otherdigest", "555-0101",
		identity.RoleClient, identity.StatusActive,
	)
	require.NoError(t, err)
	dup.Email = "Dup@Example.COM"

	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAccountRepository_Integration_GetByEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "case@example.com")

	stored, err := repo.GetByEmail(ctx, "CASE@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

func TestAccountRepository_Integration_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	_, err := repo.GetByID(ctx, ulid.Make())
	assert.ErrorIs(t, err, identity.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestAccountRepository_Integration_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "updatepw@example.com")

	require.NoError(t, repo.UpdatePassword(ctx, account.ID, "$2a$10$newdigest"))

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newdigest", stored.PasswordHash)
}

func TestAccountRepository_Integration_ResetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "reset@example.com")

	_, digest, err := identity.GenerateResetToken()
	require.NoError(t, err)
	expiry := time.Now().Add(30 * time.Minute)

	require.NoError(t, repo.SaveResetToken(ctx, account.ID, digest, expiry))

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, digest, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetExpiresAt)

	consumed, err := repo.ConsumeResetToken(ctx, digest, "$2a$10$afterreset", time.Now())
	require.NoError(t, err)
	assert.Equal(t, account.ID, consumed.ID)
	assert.Equal(t, "$2a$10$afterreset", consumed.PasswordHash)
	assert.Empty(t, consumed.ResetTokenHash)

	// Consumed means gone.
	_, err = repo.ConsumeResetToken(ctx, digest, "$2a$10$again", time.Now())
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestAccountRepository_Integration_ConsumeExpired(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "expired@example.com")

	_, digest, err := identity.GenerateResetToken()
	require.NoError(t, err)
	require.NoError(t, repo.SaveResetToken(ctx, account.ID, digest, time.Now().Add(-time.Second)))

	_, err = repo.ConsumeResetToken(ctx, digest, "$2a$10$newdigest", time.Now())
	assert.ErrorIs(t, err, identity.ErrNotFound)

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.PasswordHash, stored.PasswordHash)
}

func TestAccountRepository_Integration_ClearResetToken(t *testing.T) {
	ctx := context.Background()
	repo := identitypg.NewAccountRepository(testPool)

	account := createTestAccount(t, repo, "clear@example.com")

	_, digest, err := identity.GenerateResetToken()
	require.NoError(t, err)
	require.NoError(t, repo.SaveResetToken(ctx, account.ID, digest, time.Now().Add(30*time.Minute)))
	require.NoError(t, repo.ClearResetToken(ctx, account.ID))

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetExpiresAt)
}
