// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package auth implements the identity and access management core of Medora.

It defines the Principal credential record and the full session-token
lifecycle: issuance, verification, refresh, and revocation.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to identity.

  - Service: Orchestrates credential checks (Login, Register, ChangePassword).
  - TokenService: Sole authority for minting and invalidating session tokens.
  - Repository: Abstracted interfaces for Postgres (Principals) and Redis (Revocations).
*/
package auth

import (
	"time"

	"github.com/trankieu/medora/internal/platform/sec"
)

// # Domain Entities

// Principal represents any authenticatable entity: super-admin, admin,
// doctor, or patient.
//
// All kinds share one credential table, so an email can belong to at most
// one principal regardless of kind.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string    `json:"full_name"`
	Role         sec.Role  `json:"role"`
	Permissions  []string  `json:"permissions,omitempty"` // Per-principal override set. Empty means role defaults apply.
	IsApproved   bool      `json:"is_approved"`           // Doctors only: must be approved before login.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EffectivePermissions resolves the permission set this principal's tokens
// should carry: the stored override set when present, role defaults otherwise.
func (p *Principal) EffectivePermissions() []sec.Permission {
	return sec.Effective(p.Role, sec.PermissionsFromStrings(p.Permissions))
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "full_name"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldPrincipal       = "principal"
	FieldMessage         = "message"
)
