// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trankieu/medora/internal/clinic/doctor"
	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/pkg/pagination"
	"github.com/trankieu/medora/pkg/uuid"
)

// # Service

// Service implements scheduling use cases.
type Service struct {
	appointments Repository
	doctors      doctor.ProfileRepository
}

// NewService constructs the scheduling service.
func NewService(appointments Repository, doctors doctor.ProfileRepository) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
	}
}

// BookInput holds the data required to book a consultation.
type BookInput struct {
	DoctorID        string
	ScheduledAt     time.Time
	DurationMinutes int
	Reason          string
}

/*
Book schedules a new consultation for the authenticated patient.

Description: Validates that the doctor exists and is approved, rejects slots
overlapping the doctor's existing pending or confirmed appointments, and
snapshots the consultation fee at booking time.

Parameters:
  - context: context.Context
  - patientID: string (the authenticated patient)
  - input: BookInput

Returns:
  - *Appointment: Created booking in the pending state
  - error: NotFound (unknown/unapproved doctor), Conflict (slot overlap),
    or storage failures
*/
func (service *Service) Book(context context.Context, patientID string, input BookInput) (*Appointment, error) {
	doc, err := service.doctors.FindByPrincipalID(context, input.DoctorID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Doctor")
		}
		return nil, fmt.Errorf("appointment_service_doctor_lookup_failed: %w", err)
	}

	// Unapproved doctors are invisible to booking, same as in the roster.
	if !doc.IsApproved {
		return nil, apperr.NotFound("Doctor")
	}

	appointment := &Appointment{
		ID:              uuid.New(),
		DoctorID:        input.DoctorID,
		PatientID:       patientID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Status:          StatusPending,
		Reason:          strings.TrimSpace(input.Reason),
		FeeCents:        doc.ConsultationFee,
	}

	taken, err := service.appointments.HasOverlap(context, input.DoctorID, appointment.ScheduledAt, appointment.EndsAt())
	if err != nil {
		return nil, fmt.Errorf("appointment_service_overlap_check_failed: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("The doctor is not available in that time slot")
	}

	if err := service.appointments.Create(context, appointment); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			// Concurrent booking lost the race on the exclusion constraint.
			return nil, apperr.Conflict("The doctor is not available in that time slot")
		}
		return nil, fmt.Errorf("appointment_service_book_failed: %w", err)
	}

	return appointment, nil
}

/*
Get returns a single appointment visible to the caller.

Description: Patients and doctors see only their own appointments; staff with
the appointment:list permission see all (enforced by the HTTP layer passing
restrictTo == "").

Parameters:
  - context: context.Context
  - id: string
  - restrictTo: string (principal ID the result must belong to, or empty)

Returns:
  - *Appointment: The booking
  - error: NotFound (including foreign appointments) or retrieval failures
*/
func (service *Service) Get(context context.Context, id, restrictTo string) (*Appointment, error) {
	appointment, err := service.appointments.FindByID(context, id)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Appointment")
		}
		return nil, fmt.Errorf("appointment_service_get_failed: %w", err)
	}

	// Foreign appointments answer NotFound, not Forbidden, so their existence
	// is never confirmed to other principals.
	if restrictTo != "" && appointment.DoctorID != restrictTo && appointment.PatientID != restrictTo {
		return nil, apperr.NotFound("Appointment")
	}

	return appointment, nil
}

/*
List returns a page of appointments matching the filter, soonest first.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*Appointment: Page of bookings
  - int64: Total matching count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Appointment, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldStatus,
			Message: fmt.Sprintf("unknown status %q", filter.Status),
		})
	}

	appointments, total, err := service.appointments.List(context, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("appointment_service_list_failed: %w", err)
	}
	return appointments, total, nil
}

/*
Confirm moves a pending appointment to confirmed. Doctor-only.

Parameters:
  - context: context.Context
  - id: string
  - doctorID: string (the authenticated doctor)

Returns:
  - *Appointment: Updated booking
  - error: NotFound, Unprocessable (invalid transition), or storage failures
*/
func (service *Service) Confirm(context context.Context, id, doctorID string) (*Appointment, error) {
	return service.transition(context, id, doctorID, StatusConfirmed)
}

/*
Complete moves a confirmed appointment to completed. Doctor-only.

Parameters:
  - context: context.Context
  - id: string
  - doctorID: string

Returns:
  - *Appointment: Updated booking
  - error: NotFound, Unprocessable (invalid transition), or storage failures
*/
func (service *Service) Complete(context context.Context, id, doctorID string) (*Appointment, error) {
	return service.transition(context, id, doctorID, StatusCompleted)
}

/*
Cancel moves a pending or confirmed appointment to cancelled.

Description: Either party may cancel; the actor must be the appointment's
doctor or patient.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string

Returns:
  - *Appointment: Updated booking
  - error: NotFound, Unprocessable (already terminal), or storage failures
*/
func (service *Service) Cancel(context context.Context, id, actorID string) (*Appointment, error) {
	return service.transition(context, id, actorID, StatusCancelled)
}

// transition applies a state-machine move after an ownership check.
func (service *Service) transition(context context.Context, id, actorID string, next Status) (*Appointment, error) {
	appointment, err := service.Get(context, id, actorID)
	if err != nil {
		return nil, err
	}

	// Confirm and complete are the doctor's moves; cancel belongs to both
	// parties. Get already proved the actor is one of the two.
	if next != StatusCancelled && appointment.DoctorID != actorID {
		return nil, apperr.Forbidden("Only the doctor can perform this action")
	}

	if !appointment.Status.CanTransitionTo(next) {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("Cannot move a %s appointment to %s", appointment.Status, next))
	}

	if err := service.appointments.UpdateStatus(context, id, next); err != nil {
		return nil, fmt.Errorf("appointment_service_transition_failed: %w", err)
	}

	appointment.Status = next
	return appointment, nil
}
