// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

// # Service

// Service implements patient registry use cases.
type Service struct {
	profiles   ProfileRepository
	principals auth.PrincipalRepository
}

// NewService constructs the patient registry service.
func NewService(profiles ProfileRepository, principals auth.PrincipalRepository) *Service {
	return &Service{
		profiles:   profiles,
		principals: principals,
	}
}

// ProfileInput holds the patient-editable demographic fields.
type ProfileInput struct {
	Phone     string
	BirthDate *time.Time
	Gender    string
	Address   string
}

/*
UpsertProfile creates or updates the authenticated patient's profile.

Parameters:
  - context: context.Context
  - principalID: string (the authenticated patient)
  - input: ProfileInput

Returns:
  - *Profile: Saved profile
  - error: Forbidden (non-patient caller) or storage failures
*/
func (service *Service) UpsertProfile(context context.Context, principalID string, input ProfileInput) (*Profile, error) {
	principal, err := service.principals.FindByID(context, principalID)
	if err != nil {
		return nil, apperr.NotFound("Patient")
	}
	if principal.Role != sec.RolePatient {
		return nil, apperr.Forbidden("Only patients can manage a patient profile")
	}

	gender := strings.ToLower(strings.TrimSpace(input.Gender))
	if gender == "" {
		gender = GenderUnspecified
	}

	profile := &Profile{
		PrincipalID: principalID,
		Phone:       strings.TrimSpace(input.Phone),
		BirthDate:   input.BirthDate,
		Gender:      gender,
		Address:     strings.TrimSpace(input.Address),
	}

	if err := service.profiles.Upsert(context, profile); err != nil {
		return nil, fmt.Errorf("patient_service_upsert_profile_failed: %w", err)
	}

	return profile, nil
}

/*
Find returns a patient registry entry.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *Patient: Joined registry entry
  - error: NotFound or retrieval failures
*/
func (service *Service) Find(context context.Context, principalID string) (*Patient, error) {
	patient, err := service.profiles.FindByPrincipalID(context, principalID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Patient")
		}
		return nil, fmt.Errorf("patient_service_find_failed: %w", err)
	}
	return patient, nil
}

/*
List returns a page of the patient registry, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Patient: Page of registry entries
  - int64: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*Patient, int64, error) {
	patients, total, err := service.profiles.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("patient_service_list_failed: %w", err)
	}
	return patients, total, nil
}

/*
Remove retires a patient account.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) Remove(context context.Context, principalID string) error {
	principal, err := service.principals.FindByID(context, principalID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Patient")
		}
		return fmt.Errorf("patient_service_remove_find_failed: %w", err)
	}
	if principal.Role != sec.RolePatient {
		return apperr.NotFound("Patient")
	}

	if err := service.principals.Delete(context, principalID); err != nil {
		return fmt.Errorf("patient_service_remove_failed: %w", err)
	}
	return nil
}
