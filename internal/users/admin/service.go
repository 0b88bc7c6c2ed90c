// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package admin implements administrator account management.

Administrators are regular principals with the admin role; this package adds
their lifecycle operations: creating admins, adjusting their permission
override sets, and retiring them.

# Architecture

  - Service: Orchestrates admin lifecycle rules on top of the shared
    principal repository.
  - Handler: HTTP surface gated per admin:* permission; the owner passes
    every check via the override role.
*/
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
	"github.com/trankieu/medora/pkg/uuid"
)

// # Service

// Service implements administrator management use cases.
type Service struct {
	principals auth.PrincipalRepository
}

// NewService constructs the admin management service.
func NewService(principals auth.PrincipalRepository) *Service {
	return &Service{principals: principals}
}

// CreateInput holds the data required to provision a new administrator.
type CreateInput struct {
	Email       string
	Password    string
	FullName    string
	Permissions []string // Optional override set; empty means role defaults.
}

/*
Create provisions a new administrator account.

Description: Reachable only with the admin:create permission. The optional
permission override set replaces the admin role defaults entirely.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.Principal: Created administrator
  - error: Conflict, ValidationError (unknown permission), or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*auth.Principal, error) {
	if err := validatePermissions(input.Permissions); err != nil {
		return nil, err
	}

	email := auth.NormalizeEmail(input.Email)

	_, err := service.principals.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("admin_service_hash_failed: %w", err)
	}

	principal := &auth.Principal{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         sec.RoleAdmin,
		Permissions:  input.Permissions,
		IsApproved:   true,
	}

	if err := service.principals.Create(context, principal); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("admin_service_create_failed: %w", err)
	}

	return principal, nil
}

/*
List returns a page of administrator accounts, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.Principal: Page of administrators
  - int64: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*auth.Principal, int64, error) {
	admins, total, err := service.principals.ListByRole(context, string(sec.RoleAdmin), params)
	if err != nil {
		return nil, 0, fmt.Errorf("admin_service_list_failed: %w", err)
	}
	return admins, total, nil
}

// UpdateInput holds the mutable administrator fields.
type UpdateInput struct {
	Email    string
	FullName string
}

/*
Update modifies an administrator's profile fields.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *auth.Principal: Updated entity
  - error: NotFound, Conflict, or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*auth.Principal, error) {
	principal, err := service.findAdmin(context, id)
	if err != nil {
		return nil, err
	}

	principal.Email = auth.NormalizeEmail(input.Email)
	principal.FullName = strings.TrimSpace(input.FullName)

	if err := service.principals.Update(context, principal); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("admin_service_update_failed: %w", err)
	}

	return principal, nil
}

/*
SetPermissions replaces an administrator's permission override set.

Description: A non-empty set replaces the admin role defaults entirely.
Passing an empty set clears the override and restores defaults. Changes take
effect on the administrator's NEXT token; outstanding tokens keep the
permissions they were minted with until they expire or are revoked.

Parameters:
  - context: context.Context
  - id: string
  - permissions: []string

Returns:
  - error: NotFound, ValidationError (unknown permission), or storage failures
*/
func (service *Service) SetPermissions(context context.Context, id string, permissions []string) error {
	if err := validatePermissions(permissions); err != nil {
		return err
	}

	if _, err := service.findAdmin(context, id); err != nil {
		return err
	}

	if err := service.principals.SetPermissions(context, id, permissions); err != nil {
		return fmt.Errorf("admin_service_set_permissions_failed: %w", err)
	}
	return nil
}

/*
Delete retires an administrator account.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	if _, err := service.findAdmin(context, id); err != nil {
		return err
	}

	if err := service.principals.Delete(context, id); err != nil {
		return fmt.Errorf("admin_service_delete_failed: %w", err)
	}
	return nil
}

// findAdmin loads a principal and confirms it holds the admin role, so these
// endpoints can never be used to touch doctors, patients, or the owner.
func (service *Service) findAdmin(context context.Context, id string) (*auth.Principal, error) {
	principal, err := service.principals.FindByID(context, id)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Administrator")
		}
		return nil, fmt.Errorf("admin_service_find_failed: %w", err)
	}

	if principal.Role != sec.RoleAdmin {
		return nil, apperr.NotFound("Administrator")
	}
	return principal, nil
}

// validatePermissions rejects permission names outside the known catalog.
func validatePermissions(permissions []string) error {
	known := map[string]bool{}
	for _, perm := range sec.Defaults(sec.RoleAdmin) {
		known[string(perm)] = true
	}
	for _, perm := range sec.Defaults(sec.RoleDoctor) {
		known[string(perm)] = true
	}
	for _, perm := range sec.Defaults(sec.RolePatient) {
		known[string(perm)] = true
	}
	// Admin-lifecycle capabilities are not in any role's defaults but are
	// legal override grants.
	for _, perm := range []sec.Permission{sec.PermAdminCreate, sec.PermAdminUpdate, sec.PermAdminDelete} {
		known[string(perm)] = true
	}

	for _, perm := range permissions {
		if !known[perm] {
			return apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   "permissions",
				Message: fmt.Sprintf("unknown permission %q", perm),
			})
		}
	}
	return nil
}
