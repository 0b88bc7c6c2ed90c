// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package doctor

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
	"github.com/trankieu/medora/pkg/slice"
	"github.com/trankieu/medora/pkg/slug"
)

// maxSlugAttempts bounds the collision-resolution loop during slug generation.
const maxSlugAttempts = 50

// # Service

// Service implements roster management use cases.
type Service struct {
	profiles   ProfileRepository
	principals auth.PrincipalRepository
}

// NewService constructs the doctor roster service.
func NewService(profiles ProfileRepository, principals auth.PrincipalRepository) *Service {
	return &Service{
		profiles:   profiles,
		principals: principals,
	}
}

// ProfileInput holds the doctor-editable profile fields.
type ProfileInput struct {
	Specialty       string
	Bio             string
	ConsultationFee int64
}

/*
UpsertProfile creates or updates the authenticated doctor's public profile.

Description: The slug is derived from the doctor's full name and specialty on
first creation and kept stable afterwards, so published profile links never
break when the bio or fee changes.

Parameters:
  - context: context.Context
  - principalID: string (the authenticated doctor)
  - input: ProfileInput

Returns:
  - *Profile: Saved profile
  - error: NotFound (no doctor principal) or storage failures
*/
func (service *Service) UpsertProfile(context context.Context, principalID string, input ProfileInput) (*Profile, error) {
	principal, err := service.principals.FindByID(context, principalID)
	if err != nil {
		return nil, apperr.NotFound("Doctor")
	}
	if principal.Role != sec.RoleDoctor {
		return nil, apperr.Forbidden("Only doctors can manage a clinical profile")
	}

	profile := &Profile{
		PrincipalID:     principalID,
		Specialty:       strings.TrimSpace(input.Specialty),
		Bio:             strings.TrimSpace(input.Bio),
		ConsultationFee: input.ConsultationFee,
	}

	// Keep an existing slug stable; mint one only on first creation.
	existing, err := service.profiles.FindByPrincipalID(context, principalID)
	if err == nil {
		profile.Slug = existing.Slug
	} else {
		generated, err := service.generateSlug(context, principal.FullName, profile.Specialty)
		if err != nil {
			return nil, err
		}
		profile.Slug = generated
	}

	if err := service.profiles.Upsert(context, profile); err != nil {
		return nil, fmt.Errorf("doctor_service_upsert_profile_failed: %w", err)
	}

	return profile, nil
}

/*
Approve marks a doctor account as approved for login and public listing.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *auth.Principal: Approved account
  - error: NotFound or storage failures
*/
func (service *Service) Approve(context context.Context, principalID string) (*auth.Principal, error) {
	principal, err := service.findDoctorPrincipal(context, principalID)
	if err != nil {
		return nil, err
	}

	if err := service.principals.SetApproved(context, principalID, true); err != nil {
		return nil, fmt.Errorf("doctor_service_approve_failed: %w", err)
	}

	principal.IsApproved = true
	return principal, nil
}

/*
ListPending returns doctor accounts awaiting approval.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.Principal: Pending registrations
  - int64: Total count of doctor accounts (approved and pending)
  - error: Retrieval failures
*/
func (service *Service) ListPending(context context.Context, params pagination.Params) ([]*auth.Principal, int64, error) {
	doctors, total, err := service.principals.ListByRole(context, string(sec.RoleDoctor), params)
	if err != nil {
		return nil, 0, fmt.Errorf("doctor_service_list_pending_failed: %w", err)
	}

	pending := slice.Filter(doctors, func(doc *auth.Principal) bool {
		return !doc.IsApproved
	})
	return pending, total, nil
}

/*
ListApproved returns the public roster, optionally filtered by specialty.

Parameters:
  - context: context.Context
  - specialty: string (empty matches all)
  - params: pagination.Params

Returns:
  - []*Doctor: Page of approved doctors with profiles
  - int64: Total count
  - error: Retrieval failures
*/
func (service *Service) ListApproved(context context.Context, specialty string, params pagination.Params) ([]*Doctor, int64, error) {
	doctors, total, err := service.profiles.ListApproved(context, strings.TrimSpace(specialty), params)
	if err != nil {
		return nil, 0, fmt.Errorf("doctor_service_list_failed: %w", err)
	}
	return doctors, total, nil
}

/*
FindBySlug resolves a public profile link.

Description: Unapproved doctors resolve to NotFound so pending registrations
stay invisible even to someone who guesses the slug.

Parameters:
  - context: context.Context
  - slugValue: string

Returns:
  - *Doctor: Public roster entry
  - error: NotFound or retrieval failures
*/
func (service *Service) FindBySlug(context context.Context, slugValue string) (*Doctor, error) {
	doc, err := service.profiles.FindBySlug(context, slugValue)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Doctor")
		}
		return nil, fmt.Errorf("doctor_service_find_by_slug_failed: %w", err)
	}

	if !doc.IsApproved {
		return nil, apperr.NotFound("Doctor")
	}
	return doc, nil
}

/*
Remove retires a doctor account and its profile.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) Remove(context context.Context, principalID string) error {
	if _, err := service.findDoctorPrincipal(context, principalID); err != nil {
		return err
	}

	if err := service.principals.Delete(context, principalID); err != nil {
		return fmt.Errorf("doctor_service_remove_failed: %w", err)
	}
	return nil
}

// findDoctorPrincipal loads a principal and confirms the doctor role.
func (service *Service) findDoctorPrincipal(context context.Context, id string) (*auth.Principal, error) {
	principal, err := service.principals.FindByID(context, id)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Doctor")
		}
		return nil, fmt.Errorf("doctor_service_find_failed: %w", err)
	}
	if principal.Role != sec.RoleDoctor {
		return nil, apperr.NotFound("Doctor")
	}
	return principal, nil
}

// generateSlug derives a unique URL slug from the doctor's name and specialty,
// appending a numeric suffix on collision.
func (service *Service) generateSlug(context context.Context, fullName, specialty string) (string, error) {
	base := slug.From(fullName + " " + specialty)
	if base == "" {
		base = "doctor"
	}

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		taken, err := service.profiles.SlugExists(context, candidate)
		if err != nil {
			return "", fmt.Errorf("doctor_service_slug_check_failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", apperr.Conflict("Could not allocate a unique profile slug")
}
