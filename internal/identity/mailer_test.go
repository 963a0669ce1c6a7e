// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/identity"
)

func TestLogMailer_DeliverReset(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mailer := identity.NewLogMailer(logger, "http://localhost:5173")

	err := mailer.DeliverReset(context.Background(), "jane@example.com", "sometoken")
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "jane@example.com", entry["email"])
	assert.Equal(t, "http://localhost:5173/auth?token=sometoken", entry["reset_url"])
}

func TestNopMailer_DeliverReset(t *testing.T) {
	require.NoError(t, identity.NopMailer{}.DeliverReset(context.Background(), "a@x.com", "t"))
}
