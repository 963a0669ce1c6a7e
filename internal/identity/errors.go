// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package identity

import "errors"

// ErrNotFound is returned by stores when a requested account does not
// exist. Services translate it into a caller-facing error code.
var ErrNotFound = errors.New("not found")
