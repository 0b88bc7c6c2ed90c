// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/pkg/uuid"
)

// # Service

// Service implements credential and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	principals PrincipalRepository
	tokens     *TokenService
}

// NewService constructs the authentication service with its dependencies.
func NewService(principals PrincipalRepository, tokens *TokenService) *Service {
	return &Service{
		principals: principals,
		tokens:     tokens,
	}
}

// Tokens exposes the token lifecycle manager for middleware wiring.
func (service *Service) Tokens() *TokenService {
	return service.tokens
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new principal.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

/*
RegisterPatient validates, hashes, and persists a new patient account.

Patients are active immediately; no approval step applies.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Principal: Created entity
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) RegisterPatient(context context.Context, input RegisterInput) (*Principal, error) {
	return service.register(context, input, sec.RolePatient, true)
}

/*
RegisterDoctor enrolls a doctor account in the pending-approval state.

The account exists but cannot log in until an administrator approves it.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Principal: Created entity (IsApproved = false)
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) RegisterDoctor(context context.Context, input RegisterInput) (*Principal, error) {
	return service.register(context, input, sec.RoleDoctor, false)
}

// register is the shared enrollment path for every principal kind.
func (service *Service) register(context context.Context, input RegisterInput, role sec.Role, approved bool) (*Principal, error) {
	email := NormalizeEmail(input.Email)

	// Verify email uniqueness across ALL principal kinds. Return a
	// client-safe Conflict err.
	_, err := service.principals.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Principal entity. Time-sortable ID to prevent PG index fragmentation.
	principal := &Principal{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsApproved:   approved,
	}

	// Persist the principal to the database. A concurrent registration with
	// the same email loses the race here and surfaces as the same Conflict.
	if err := service.principals.Create(context, principal); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return principal, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session represents a successfully established access session.
type Session struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"` // Seconds until expiry.
	Principal   *Principal `json:"principal,omitempty"`
}

/*
Login validates credentials and issues a signed access token.

Description: Verifies identity, performs constant-time password comparison,
enforces the doctor approval gate, and mints a fresh token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session payload
  - error: Unauthorized, Forbidden (unapproved doctor), or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	principal, err := service.principals.FindByEmail(context, NormalizeEmail(input.Email))

	// If (err != nil) the principal does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, principal.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Doctors must be approved before they can establish a session. Checked
	// AFTER the password so the response never confirms credentials for
	// unapproved accounts to third parties.
	if principal.Role == sec.RoleDoctor && !principal.IsApproved {
		return nil, apperr.Forbidden("Account is pending administrator approval")
	}

	token, _, err := service.tokens.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(service.tokens.Lifetime().Seconds()),
		Principal:   principal,
	}, nil
}

/*
Logout revokes the presented access token.

Description: The token identifier is recorded in the revocation store until
the token's natural expiry. Logging out with an expired or malformed token is
treated as success (idempotent operation).

Parameters:
  - context: context.Context
  - tokenStr: string

Returns:
  - error: ServiceUnavailable if the revocation store cannot record the entry
*/
func (service *Service) Logout(context context.Context, tokenStr string) error {
	err := service.tokens.Revoke(context, tokenStr)
	if err == nil {
		return nil
	}

	// An unusable token has nothing left to revoke.
	if errors.Is(err, sec.ErrTokenInvalid) || errors.Is(err, sec.ErrTokenExpired) {
		return nil
	}

	if errors.Is(err, ErrRevocationUnavailable) {
		return apperr.ServiceUnavailable("Could not complete logout, please retry")
	}
	return fmt.Errorf("auth_service_logout_failed: %w", err)
}

// # Session Management

/*
RefreshSession implements access-token rotation.

Description: Verifies the existing token, revokes it to prevent reuse, and
issues a replacement carrying the same principal, role, and permissions with
a later expiry.

Parameters:
  - context: context.Context
  - tokenStr: string

Returns:
  - *Session: New session credentials (principal omitted)
  - error: Unauthorized for an unusable token, ServiceUnavailable when the
    revocation store is unreachable
*/
func (service *Service) RefreshSession(context context.Context, tokenStr string) (*Session, error) {
	token, _, err := service.tokens.Refresh(context, tokenStr)
	if err != nil {
		if errors.Is(err, ErrRevocationUnavailable) {
			return nil, apperr.ServiceUnavailable("Could not refresh session, please retry")
		}
		// Expired, revoked, forged: all collapse to one client-facing message.
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return &Session{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(service.tokens.Lifetime().Seconds()),
	}, nil
}

/*
ChangePassword allows an authenticated principal to update their credentials.

Description: Verifies the current password, stores the new hash, and revokes
the presented token so the caller must log in again with the new password.

Parameters:
  - context: context.Context
  - principalID: string
  - currentPassword: string
  - newPassword: string
  - currentToken: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, principalID, currentPassword, newPassword, currentToken string) error {

	// Fetch principal by ID
	principal, err := service.principals.FindByID(context, principalID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, principal.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.principals.UpdatePassword(context, principalID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: revoke the presented token to force a fresh login.
	_ = service.tokens.Revoke(context, currentToken)

	return nil
}

/*
Profile returns the current credential record for an authenticated principal.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *Principal: Hydrated entity
  - error: NotFound or retrieval failures
*/
func (service *Service) Profile(context context.Context, principalID string) (*Principal, error) {
	principal, err := service.principals.FindByID(context, principalID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("auth_service_profile_failed: %w", err)
	}
	return principal, nil
}

// # Bootstrap

/*
EnsureSuperAdmin creates the platform owner account if it does not exist.

Description: Called once during startup. The super admin can never be
registered through the public API, so the initial account is seeded from
configuration. The call is a no-op when the email is unset or already taken.

Parameters:
  - context: context.Context
  - email: string (empty disables bootstrapping)
  - password: string

Returns:
  - error: Hashing or storage failures
*/
func (service *Service) EnsureSuperAdmin(context context.Context, email, password string) error {
	if email == "" {
		return nil
	}

	normalized := NormalizeEmail(email)
	if _, err := service.principals.FindByEmail(context, normalized); err == nil {
		return nil
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth_service_bootstrap_hash_failed: %w", err)
	}

	principal := &Principal{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: hashedPassword,
		FullName:     "Platform Owner",
		Role:         sec.RoleSuperAdmin,
		IsApproved:   true,
	}

	if err := service.principals.Create(context, principal); err != nil {
		// Another instance won the bootstrap race.
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("auth_service_bootstrap_failed: %w", err)
	}

	return nil
}

// NormalizeEmail lower-cases and trims an address so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
