// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trankieu/medora/internal/platform/middleware"
	requestutil "github.com/trankieu/medora/internal/platform/request"
	"github.com/trankieu/medora/internal/platform/respond"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/platform/validate"
	"github.com/trankieu/medora/pkg/pagination"
)

// Handler implements the scheduling HTTP surface.
type Handler struct {
	appointmentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{appointmentService: service}
}

// Routes returns a [chi.Router] for booking and lifecycle management.
//
// # Endpoints
//   - POST /               : Patient: book a consultation.
//   - GET  /               : Own appointments (staff with appointment:list see all).
//   - GET  /{id}           : Single appointment (ownership enforced).
//   - POST /{id}/confirm   : Doctor: confirm a pending booking.
//   - POST /{id}/complete  : Doctor: complete a confirmed booking.
//   - POST /{id}/cancel    : Either party: cancel.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.With(middleware.RequirePermission(sec.PermAppointmentBook)).Post("/", handler.book)
	router.With(middleware.RequirePermission(sec.PermAppointmentList)).Get("/", handler.list)
	router.With(middleware.RequirePermission(sec.PermAppointmentList)).Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(sec.PermAppointmentManage))
		r.Post("/{id}/confirm", handler.confirm)
		r.Post("/{id}/complete", handler.complete)
	})

	// Cancellation is open to both parties; ownership is checked in the service.
	router.Post("/{id}/cancel", handler.cancel)

	return router
}

// # Request Payloads

type bookRequest struct {
	DoctorID        string    `json:"doctor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}

/*
Book schedules a new consultation.

POST /api/v1/appointments

Response:
  - 201: Appointment: Created booking in the pending state
  - 400: ErrInvalidJSON: Validation failure (past slot, bad duration)
  - 404: ErrNotFound: Unknown or unapproved doctor
  - 409: ErrConflict: Slot overlaps an existing booking
*/
func (handler *Handler) book(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldDoctorID, input.DoctorID).
		UUID(FieldDoctorID, input.DoctorID).
		Future(FieldScheduledAt, input.ScheduledAt).
		Range(FieldDuration, input.DurationMinutes, MinDurationMinutes, MaxDurationMinutes).
		MaxLen(FieldReason, input.Reason, ReasonMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	appointment, err := handler.appointmentService.Book(request.Context(), claims.PrincipalID, BookInput{
		DoctorID:        input.DoctorID,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Reason:          input.Reason,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, appointment)
}

/*
List returns a page of appointments.

GET /api/v1/appointments?status=&page=&limit=

Description: Doctors and patients see their own bookings. Staff whose role
carries no clinical relationship (admins and the owner) see all bookings,
optionally filtered by status.

Response:
  - 200: []Appointment with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	filter := Filter{Status: Status(request.URL.Query().Get(FieldStatus))}

	switch claims.PrincipalRole() {
	case sec.RoleDoctor:
		filter.DoctorID = claims.PrincipalID
	case sec.RolePatient:
		filter.PatientID = claims.PrincipalID
	}

	appointments, total, err := handler.appointmentService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, appointments, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
Get returns a single appointment.

GET /api/v1/appointments/{id}

Response:
  - 200: Appointment
  - 404: ErrNotFound: Unknown or foreign appointment
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	appointment, err := handler.appointmentService.Get(
		request.Context(),
		requestutil.Param(request, "id"),
		ownershipScope(claims),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, appointment)
}

/*
Confirm moves a pending booking to confirmed.

POST /api/v1/appointments/{id}/confirm

Response:
  - 200: Appointment: Confirmed booking
  - 404: ErrNotFound: Unknown or foreign appointment
  - 422: ErrUnprocessable: Invalid lifecycle transition
*/
func (handler *Handler) confirm(writer http.ResponseWriter, request *http.Request) {
	handler.applyTransition(writer, request, handler.appointmentService.Confirm)
}

/*
Complete moves a confirmed booking to completed.

POST /api/v1/appointments/{id}/complete

Response:
  - 200: Appointment: Completed booking
  - 404: ErrNotFound: Unknown or foreign appointment
  - 422: ErrUnprocessable: Invalid lifecycle transition
*/
func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	handler.applyTransition(writer, request, handler.appointmentService.Complete)
}

/*
Cancel moves a live booking to cancelled.

POST /api/v1/appointments/{id}/cancel

Response:
  - 200: Appointment: Cancelled booking
  - 404: ErrNotFound: Unknown or foreign appointment
  - 422: ErrUnprocessable: Already in a terminal state
*/
func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	handler.applyTransition(writer, request, handler.appointmentService.Cancel)
}

// applyTransition shares the claims/param plumbing of the lifecycle endpoints.
func (handler *Handler) applyTransition(
	writer http.ResponseWriter,
	request *http.Request,
	move func(ctx context.Context, id, actorID string) (*Appointment, error),
) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	appointment, err := move(request.Context(), requestutil.Param(request, "id"), claims.PrincipalID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, appointment)
}

// ownershipScope returns the principal ID queries must be restricted to, or
// empty for staff roles that see everything.
func ownershipScope(claims *sec.AuthClaims) string {
	switch claims.PrincipalRole() {
	case sec.RoleDoctor, sec.RolePatient:
		return claims.PrincipalID
	default:
		return ""
	}
}
