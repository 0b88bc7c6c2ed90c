// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trankieu/medora/internal/platform/middleware"
	requestutil "github.com/trankieu/medora/internal/platform/request"
	"github.com/trankieu/medora/internal/platform/respond"
	"github.com/trankieu/medora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the session lifecycle entry points (Registration,
// Login, Refresh, Logout, Password changes). Profile management for the
// individual principal kinds lives in their own packages.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a patient account.
//   - POST /register-doctor : Creates a doctor account (pending approval).
//   - POST /login           : Authenticates and returns a signed token.
//   - POST /refresh         : Rotates a still-valid token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.registerPatient)
	router.Post("/register-doctor", handler.registerDoctor)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// decodeRegister validates the shared registration payload.
func decodeRegister(request *http.Request) (*registerRequest, error) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return nil, validate.ErrInvalidJSON
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, EmailMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength).
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, FullNameMaxLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return &input, nil
}

/*
RegisterPatient handles the creation of a new patient account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Email, Password, FullName)

Response:
  - 201: Principal: Created account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) registerPatient(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeRegister(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.authService.RegisterPatient(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, principal)
}

/*
RegisterDoctor handles the creation of a new doctor account.

POST /api/v1/auth/register-doctor

Description: The account is created in the pending state and cannot log in
until an administrator approves it.

Request:
  - Body: registerRequest (Email, Password, FullName)

Response:
  - 201: Principal: Created account, IsApproved false
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) registerDoctor(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeRegister(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.authService.RegisterDoctor(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, principal)
}

/*
Login authenticates a principal and issues a signed access token.

POST /api/v1/auth/login

Response:
  - 200: Session: Access token, expiry, and account profile
  - 401: ErrUnauthorized: Invalid credentials
  - 403: ErrForbidden: Doctor account pending approval
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Refresh exchanges a still-valid token for a fresh one.

POST /api/v1/auth/refresh

Description: The presented token is revoked as part of the exchange; each
token can be refreshed at most once.

Response:
  - 200: Session: New access token credentials
  - 401: ErrUnauthorized: Missing, expired, revoked, or forged token
  - 503: ErrServiceUnavailable: Revocation store unreachable
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	tokenStr, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), tokenStr)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Logout revokes the presented access token.

POST /api/v1/auth/logout

Response:
  - 204: No Content: Token revoked (idempotent)
  - 503: ErrServiceUnavailable: Revocation store unreachable
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	tokenStr, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), tokenStr); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Me returns the authenticated principal's current account record.

GET /api/v1/auth/me

Response:
  - 200: Principal: Current account profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredPrincipalID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.authService.Profile(request.Context(), principalID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
ChangePassword updates the authenticated principal's credentials.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one, then
revokes the presented token so the caller must log in again.

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Current password incorrect or session invalid
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokenStr, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLength).
		MaxLen(FieldNewPassword, input.NewPassword, PasswordMaxLength)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		claims.PrincipalID,
		input.CurrentPassword,
		input.NewPassword,
		tokenStr,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}
