// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package doctor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trankieu/medora/internal/platform/middleware"
	requestutil "github.com/trankieu/medora/internal/platform/request"
	"github.com/trankieu/medora/internal/platform/respond"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/platform/validate"
	"github.com/trankieu/medora/pkg/pagination"
)

// Handler implements the doctor roster HTTP surface.
type Handler struct {
	doctorService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{doctorService: service}
}

// Routes returns a [chi.Router] for roster browsing and management.
//
// # Endpoints
//   - GET    /              : Public roster of approved doctors.
//   - GET    /{slug}        : Public profile by slug.
//   - PUT    /me/profile    : Doctor-only profile upsert.
//   - GET    /pending       : Staff: registrations awaiting approval.
//   - POST   /{id}/approve  : Staff: approve a doctor account.
//   - DELETE /{id}          : Staff: retire a doctor.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public roster
	router.Get("/", handler.list)

	// Doctor self-service
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleDoctor))
		r.Put("/me/profile", handler.upsertProfile)
	})

	// Staff management
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(sec.PermDoctorList)).Get("/pending", handler.listPending)
		r.With(middleware.RequirePermission(sec.PermDoctorApprove)).Post("/{id}/approve", handler.approve)
		r.With(middleware.RequirePermission(sec.PermDoctorDelete)).Delete("/{id}", handler.remove)
	})

	// Slug route last so it never shadows the fixed paths above.
	router.Get("/{slug}", handler.findBySlug)

	return router
}

// # Request Payloads

type profileRequest struct {
	Specialty       string `json:"specialty"`
	Bio             string `json:"bio"`
	ConsultationFee int64  `json:"consultation_fee_cents"`
}

/*
List returns the public roster of approved doctors.

GET /api/v1/doctors?specialty=&page=&limit=

Response:
  - 200: []Doctor with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	specialty := request.URL.Query().Get(FieldSpecialty)

	doctors, total, err := handler.doctorService.ListApproved(request.Context(), specialty, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, doctors, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
FindBySlug resolves a public doctor profile link.

GET /api/v1/doctors/{slug}

Response:
  - 200: Doctor: Public roster entry
  - 404: ErrNotFound: Unknown or unapproved doctor
*/
func (handler *Handler) findBySlug(writer http.ResponseWriter, request *http.Request) {
	slugValue := requestutil.Param(request, "slug")

	validator := &validate.Validator{}
	validator.Required(FieldSlug, slugValue).Slug(FieldSlug, slugValue)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	doc, err := handler.doctorService.FindBySlug(request.Context(), slugValue)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, doc)
}

/*
UpsertProfile creates or updates the authenticated doctor's public profile.

PUT /api/v1/doctors/me/profile

Response:
  - 200: Profile: Saved profile
  - 400: ErrInvalidJSON: Validation failure
  - 403: ErrForbidden: Caller is not a doctor
*/
func (handler *Handler) upsertProfile(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredPrincipalID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldSpecialty, input.Specialty).
		MaxLen(FieldSpecialty, input.Specialty, SpecialtyMaxLength).
		MaxLen(FieldBio, input.Bio, BioMaxLength).
		Range(FieldConsultationFee, int(input.ConsultationFee), 0, 100_000_000)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.doctorService.UpsertProfile(request.Context(), principalID, ProfileInput{
		Specialty:       input.Specialty,
		Bio:             input.Bio,
		ConsultationFee: input.ConsultationFee,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
ListPending returns doctor registrations awaiting approval.

GET /api/v1/doctors/pending

Response:
  - 200: []Principal with pagination metadata
  - 403: ErrForbidden: Missing doctor:list permission
*/
func (handler *Handler) listPending(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	pending, total, err := handler.doctorService.ListPending(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pending, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
Approve marks a doctor account as approved.

POST /api/v1/doctors/{id}/approve

Response:
  - 200: Principal: Approved account
  - 403: ErrForbidden: Missing doctor:approve permission
  - 404: ErrNotFound: Unknown doctor
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.doctorService.Approve(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
Remove retires a doctor account.

DELETE /api/v1/doctors/{id}

Response:
  - 204: No Content
  - 403: ErrForbidden: Missing doctor:delete permission
  - 404: ErrNotFound: Unknown doctor
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	if err := handler.doctorService.Remove(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
