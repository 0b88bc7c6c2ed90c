// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package schema

// ClinicAppointmentTable represents the 'clinic.appointment' table
type ClinicAppointmentTable struct {
	Table           string
	ID              string
	DoctorID        string
	PatientID       string
	ScheduledAt     string
	DurationMinutes string
	Status          string
	Reason          string
	FeeCents        string
	CreatedAt       string
	UpdatedAt       string
}

// ClinicAppointment is the schema definition for clinic.appointment
var ClinicAppointment = ClinicAppointmentTable{
	Table:           "clinic.appointment",
	ID:              "id",
	DoctorID:        "doctorid",
	PatientID:       "patientid",
	ScheduledAt:     "scheduledat",
	DurationMinutes: "durationminutes",
	Status:          "status",
	Reason:          "reason",
	FeeCents:        "feecents",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}
