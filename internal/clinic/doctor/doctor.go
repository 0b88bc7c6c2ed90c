// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package doctor implements the clinical staff roster.

A doctor is a principal (credential record) plus a public profile: specialty,
bio, consultation fee, and a URL slug derived from the doctor's name and
specialty. Profiles only become publicly listable once an administrator has
approved the underlying account.
*/
package doctor

import (
	"time"
)

// # Domain Entities

// Profile is the public clinical profile attached to a doctor principal.
type Profile struct {
	PrincipalID     string    `json:"principal_id"`
	Slug            string    `json:"slug"`
	Specialty       string    `json:"specialty"`
	Bio             string    `json:"bio,omitempty"`
	ConsultationFee int64     `json:"consultation_fee_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Doctor is the roster view: profile joined with the credential record's
// display fields.
type Doctor struct {
	Profile
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	IsApproved bool   `json:"is_approved"`
}

// # Field Identifiers

const (
	FieldSpecialty       = "specialty"
	FieldBio             = "bio"
	FieldConsultationFee = "consultation_fee_cents"
	FieldSlug            = "slug"

	SpecialtyMaxLength = 80
	BioMaxLength       = 2000
)
