// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package appointment implements scheduling between patients and doctors.

An appointment moves through a small state machine:

	pending ──confirm──▶ confirmed ──complete──▶ completed
	   │                     │
	   └───────cancel────────┴──▶ cancelled

Patients book and cancel; doctors confirm, complete, and cancel. The
consultation fee is snapshotted from the doctor's profile at booking time so
later fee changes never reprice existing appointments.
*/
package appointment

import (
	"time"
)

// # Statuses

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid reports whether the status is one of the closed set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		// Terminal states never move again.
		return false
	}
}

// # Domain Entities

// Appointment is a scheduled consultation between a doctor and a patient.
type Appointment struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          Status    `json:"status"`
	Reason          string    `json:"reason,omitempty"`
	FeeCents        int64     `json:"fee_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndsAt returns the scheduled end of the consultation window.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// # Field Identifiers

const (
	FieldDoctorID    = "doctor_id"
	FieldScheduledAt = "scheduled_at"
	FieldDuration    = "duration_minutes"
	FieldReason      = "reason"
	FieldStatus      = "status"

	MinDurationMinutes = 10
	MaxDurationMinutes = 180
	ReasonMaxLength    = 500
)
