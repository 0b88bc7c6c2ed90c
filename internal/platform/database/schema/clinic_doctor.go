// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package schema

// ClinicDoctorProfileTable represents the 'clinic.doctorprofile' table
type ClinicDoctorProfileTable struct {
	Table           string
	PrincipalID     string
	Slug            string
	Specialty       string
	Bio             string
	ConsultationFee string
	CreatedAt       string
	UpdatedAt       string
}

// ClinicDoctorProfile is the schema definition for clinic.doctorprofile
var ClinicDoctorProfile = ClinicDoctorProfileTable{
	Table:           "clinic.doctorprofile",
	PrincipalID:     "principalid",
	Slug:            "slug",
	Specialty:       "specialty",
	Bio:             "bio",
	ConsultationFee: "consultationfee",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}
