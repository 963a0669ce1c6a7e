// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"net/http"

	"github.com/samber/oops"

	"github.com/taskhive/taskhive/pkg/errutil"
)

// errMissingToken is returned when no bearer token accompanies a
// request that requires authentication.
var errMissingToken = oops.Code("TOKEN_INVALID").
	Errorf("not authorized, no token provided")

// statusForCode maps façade error codes onto HTTP status codes.
var statusForCode = map[string]int{
	"VALIDATION_FAILED":     http.StatusBadRequest,
	"EMAIL_TAKEN":           http.StatusBadRequest,
	"RESET_TOKEN_INVALID":   http.StatusBadRequest,
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"ACCOUNT_NOT_USABLE":    http.StatusUnauthorized,
	"TOKEN_INVALID":         http.StatusUnauthorized,
	"TOKEN_EXPIRED":         http.StatusUnauthorized,
	"ROLE_FORBIDDEN":        http.StatusForbidden,
	"ACCOUNT_NOT_FOUND":     http.StatusNotFound,
	"RESET_DELIVERY_FAILED": http.StatusInternalServerError,
}

// writeError converts a tagged failure into a JSON error response. The
// message is the caller-facing text carried by the error; codes without
// a mapping fall through to 500 with a generic message so internal
// detail never leaks.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errutil.Code(err)
	status, known := statusForCode[code]
	if !known {
		errutil.LogError(h.logger, "internal error", err)
		h.writeJSON(w, r, http.StatusInternalServerError, envelope{
			Success: false,
			Message: "Server error",
		})
		return
	}

	message := "Request failed"
	if oopsErr, ok := oops.AsOops(err); ok {
		message = oopsErr.Error()
	}
	h.writeJSON(w, r, status, envelope{Success: false, Message: message})
}
