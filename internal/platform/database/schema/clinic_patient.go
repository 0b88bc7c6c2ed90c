// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package schema

// ClinicPatientProfileTable represents the 'clinic.patientprofile' table
type ClinicPatientProfileTable struct {
	Table       string
	PrincipalID string
	Phone       string
	BirthDate   string
	Gender      string
	Address     string
	CreatedAt   string
	UpdatedAt   string
}

// ClinicPatientProfile is the schema definition for clinic.patientprofile
var ClinicPatientProfile = ClinicPatientProfileTable{
	Table:       "clinic.patientprofile",
	PrincipalID: "principalid",
	Phone:       "phone",
	BirthDate:   "birthdate",
	Gender:      "gender",
	Address:     "address",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}
