// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package postgres provides the PostgreSQL implementation of the
// identity AccountStore.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/identity"
)

// poolIface is the subset of pgxpool.Pool the repository needs.
// Narrowed so tests can substitute a pgxmock pool.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements identity.AccountStore using PostgreSQL.
// Secret and reset-field writes are single conditional statements, so
// per-account read-modify-write is atomic without client-side locking.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, full_name, email, password_hash, phone_number,
		       role, status, profile_photo, reset_token_hash,
		       reset_expires_at, created_at, updated_at`

// Create stores a new account. A case-insensitive email conflict
// surfaces as EMAIL_TAKEN via the unique index on LOWER(email).
func (r *AccountRepository) Create(ctx context.Context, account *identity.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, full_name, email, password_hash, phone_number,
			role, status, profile_photo, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.FullName,
		account.Email,
		account.PasswordHash,
		account.PhoneNumber,
		string(account.Role),
		string(account.Status),
		nullable(account.ProfilePhoto),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("EMAIL_TAKEN").
				With("email", account.Email).
				Errorf("email already registered")
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("email", account.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*identity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email, case-insensitively.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// UpdatePassword replaces only the password digest.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}

// SaveResetToken stores the reset digest and expiry, overwriting any
// prior credential. No other column is touched.
func (r *AccountRepository) SaveResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET reset_token_hash = $2, reset_expires_at = $3
		WHERE id = $1
	`, id.String(), tokenHash, expiresAt)
	if err != nil {
		return oops.Code("RESET_SAVE_FAILED").
			With("operation", "save reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}

// ClearResetToken removes any stored reset credential.
func (r *AccountRepository) ClearResetToken(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET reset_token_hash = NULL, reset_expires_at = NULL
		WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("RESET_CLEAR_FAILED").
			With("operation", "clear reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}

// ConsumeResetToken matches a live reset credential and swaps in the new
// password digest in one statement. The WHERE clause enforces both the
// digest match and the strict-future expiry, so a concurrent consumer or
// an expired credential finds zero rows.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*identity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			reset_token_hash = NULL,
			reset_expires_at = NULL,
			updated_at = $3
		WHERE reset_token_hash = $1 AND reset_expires_at > $3
		RETURNING `+accountColumns+`
	`, tokenHash, newPasswordHash, now)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "consume reset token").
			Wrap(err)
	}
	return account, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*identity.Account, error) {
	var (
		idStr          string
		fullName       string
		email          string
		passwordHash   string
		phoneNumber    string
		role           string
		status         string
		profilePhoto   *string
		resetTokenHash *string
		resetExpiresAt *time.Time
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&idStr,
		&fullName,
		&email,
		&passwordHash,
		&phoneNumber,
		&role,
		&status,
		&profilePhoto,
		&resetTokenHash,
		&resetExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	account := &identity.Account{
		ID:             id,
		FullName:       fullName,
		Email:          email,
		PasswordHash:   passwordHash,
		PhoneNumber:    phoneNumber,
		Role:           identity.Role(role),
		Status:         identity.Status(status),
		ResetExpiresAt: resetExpiresAt,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	if profilePhoto != nil {
		account.ProfilePhoto = *profilePhoto
	}
	if resetTokenHash != nil {
		account.ResetTokenHash = *resetTokenHash
	}
	return account, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Compile-time interface check.
var _ identity.AccountStore = (*AccountRepository)(nil)
