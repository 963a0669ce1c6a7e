// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import (
	"context"
	"log/slog"
)

// LogMailer writes the reset link to the log instead of sending mail.
// It stands in for a real delivery channel in development; production
// deployments supply their own Mailer.
type LogMailer struct {
	logger  *slog.Logger
	baseURL string
}

// NewLogMailer creates a LogMailer. The baseURL is the frontend origin
// the reset link points at.
func NewLogMailer(logger *slog.Logger, baseURL string) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger, baseURL: baseURL}
}

// DeliverReset logs the reset link for the given address.
func (m *LogMailer) DeliverReset(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "password reset requested",
		"email", email,
		"reset_url", m.baseURL+"/auth?token="+token,
	)
	return nil
}

// NopMailer discards reset credentials. Useful in tests that only
// exercise the issuance path.
type NopMailer struct{}

// DeliverReset does nothing.
func (NopMailer) DeliverReset(context.Context, string, string) error { return nil }

// Compile-time interface checks.
var (
	_ Mailer = (*LogMailer)(nil)
	_ Mailer = NopMailer{}
)
