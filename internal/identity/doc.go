// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package identity is the identity and access-control core of TaskHive.
//
// # Domain Types
//
// Account is the stored identity record, carrying a role (client,
// provider, admin) and a lifecycle status (active, pending, suspended,
// inactive). Accounts should be created through NewAccount, which
// normalizes the email and validates every required field. Direct struct
// initialization bypasses validation and may create invalid state.
//
// # Services
//
// Service is the façade external collaborators call: registration,
// login, current-identity resolution, and the password-reset protocol.
// It composes an AccountStore, a PasswordHasher, a TokenService, and a
// Gate; each of those can also be used on its own.
//
// Secrets never leave this package in plaintext: the store only ever
// sees bcrypt digests, and reset credentials are persisted as sha256
// digests of the plaintext handed to the caller.
package identity
