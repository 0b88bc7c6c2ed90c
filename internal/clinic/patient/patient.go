// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package patient implements patient profile management.

A patient is a principal plus an optional demographic profile used for
booking context: contact phone, birth date, gender, and address. Staff with
the patient:list permission can browse the registry; each patient manages
only their own profile.
*/
package patient

import (
	"context"
	"time"

	"github.com/trankieu/medora/pkg/pagination"
)

// # Domain Entities

// Profile holds demographic data attached to a patient principal.
type Profile struct {
	PrincipalID string     `json:"principal_id"`
	Phone       string     `json:"phone,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Address     string     `json:"address,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Patient is the registry view: profile joined with the credential record's
// display fields.
type Patient struct {
	Profile
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// # Field Identifiers

const (
	FieldPhone     = "phone"
	FieldBirthDate = "birth_date"
	FieldGender    = "gender"
	FieldAddress   = "address"

	PhoneMaxLength   = 20
	AddressMaxLength = 300
)

// Accepted gender values. Free-form text is deliberately not stored.
const (
	GenderFemale      = "female"
	GenderMale        = "male"
	GenderUnspecified = "unspecified"
)

// # Repository Contract

// ProfileRepository is the persistence contract for patient profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *Profile) error
	FindByPrincipalID(ctx context.Context, principalID string) (*Patient, error)
	List(ctx context.Context, params pagination.Params) ([]*Patient, int64, error)
}
