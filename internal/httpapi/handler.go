// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package httpapi exposes the identity core to web collaborators as a
// JSON API. It translates HTTP requests into façade calls and tagged
// failures into status codes; it holds no identity logic of its own.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhive/taskhive/internal/identity"
	"github.com/taskhive/taskhive/internal/observability"
)

// Handler wires the identity façade to HTTP routes.
type Handler struct {
	service *identity.Service
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHandler creates a Handler. metrics may be nil when the
// observability server is disabled.
func NewHandler(service *identity.Service, logger *slog.Logger, metrics *observability.Metrics) (*Handler, error) {
	if service == nil {
		return nil, errors.New("httpapi: identity service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger, metrics: metrics}, nil
}

// Register wires the auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.handleRegisterClient)
	mux.HandleFunc("POST /api/auth/client/signup", h.handleRegisterClient)
	mux.HandleFunc("POST /api/auth/provider/signup", h.handleRegisterProvider)
	mux.HandleFunc("POST /api/auth/admin/signup", h.handleRegisterAdmin)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
	mux.HandleFunc("POST /api/auth/forgot-password", h.handleForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password/{token}", h.handleResetPassword)
}

// registerBody is the JSON shape of all three registration endpoints.
type registerBody struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

func (b registerBody) toRequest() identity.RegisterRequest {
	return identity.RegisterRequest{
		FullName:    b.FullName,
		Email:       b.Email,
		Password:    b.Password,
		PhoneNumber: b.PhoneNumber,
	}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotBody struct {
	Email string `json:"email"`
}

type resetBody struct {
	Password string `json:"password"`
}

// envelope is the response shape the frontend expects.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Token   string            `json:"token,omitempty"`
	User    *identity.Summary `json:"user,omitempty"`
}

func (h *Handler) handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.service.RegisterClient(r.Context(), body.toRequest())
	h.countRegistration(identity.RoleClient, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, r, http.StatusCreated, result)
}

func (h *Handler) handleRegisterProvider(w http.ResponseWriter, r *http.Request) {
	h.handleElevatedRegister(w, r, identity.RoleProvider)
}

func (h *Handler) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleElevatedRegister(w, r, identity.RoleAdmin)
}

// handleElevatedRegister resolves the caller from the bearer token and
// delegates to the admin-only registration operations. The façade
// re-checks the caller's role; resolving here only provides the caller
// record.
func (h *Handler) handleElevatedRegister(w http.ResponseWriter, r *http.Request, role identity.Role) {
	caller, err := h.resolveCaller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var body registerBody
	if !h.decode(w, r, &body) {
		return
	}

	var result *identity.AuthResult
	switch role {
	case identity.RoleProvider:
		result, err = h.service.RegisterProvider(r.Context(), caller, body.toRequest())
	default:
		result, err = h.service.RegisterAdmin(r.Context(), caller, body.toRequest())
	}
	h.countRegistration(role, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, r, http.StatusCreated, result)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !h.decode(w, r, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		h.writeJSON(w, r, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Please provide email and password",
		})
		return
	}

	result, err := h.service.Login(r.Context(), body.Email, body.Password)
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, r, http.StatusOK, result)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.service.CurrentIdentity(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{Success: true, User: &summary})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body forgotBody
	if !h.decode(w, r, &body) {
		return
	}
	if body.Email == "" {
		h.writeJSON(w, r, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Please provide email address",
		})
		return
	}

	err := h.service.RequestReset(r.Context(), body.Email)
	if h.metrics != nil {
		h.metrics.ResetsTotal.WithLabelValues("request", outcome(err)).Inc()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: "Password reset email sent",
	})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetBody
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.service.CompleteReset(r.Context(), r.PathValue("token"), body.Password)
	if h.metrics != nil {
		h.metrics.ResetsTotal.WithLabelValues("complete", outcome(err)).Inc()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := envelope{
		Success: true,
		Message: "Password reset successful",
		Token:   result.Token,
		User:    &result.Account,
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// resolveCaller authenticates the bearer token against the current
// account record.
func (h *Handler) resolveCaller(r *http.Request) (*identity.Account, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	return h.service.ResolveToken(r.Context(), token)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Invalid request body",
		})
		return false
	}
	return true
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, status int, result *identity.AuthResult) {
	h.writeJSON(w, r, status, envelope{
		Success: true,
		Message: result.Message,
		Token:   result.Token,
		User:    &result.Account,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	if h.metrics != nil {
		h.metrics.RequestsTotal.WithLabelValues(r.Pattern, http.StatusText(status)).Inc()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (h *Handler) countRegistration(role identity.Role, err error) {
	if h.metrics != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(string(role), outcome(err)).Inc()
	}
}
