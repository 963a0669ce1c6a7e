// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Reset credential configuration. Reset tokens are high-entropy and
// short-lived, so a fast fixed-length digest is used for storage instead
// of the adaptive password hasher.
const (
	ResetTokenBytes  = 20               // 20 bytes = 40 hex chars
	ResetTokenExpiry = 30 * time.Minute // credential lifetime
)

// GenerateResetToken creates a one-time reset credential and its stored
// form. Returns (plaintext, sha256 digest, error). The plaintext goes to
// the account holder out-of-band and is never persisted.
func GenerateResetToken() (token, digest string, err error) {
	raw := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(raw)
	digest = HashResetToken(token)

	return token, digest, nil
}

// HashResetToken computes the stored digest of a reset credential.
// Consumption matches this digest in the store, so the plaintext never
// needs to be compared directly.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
