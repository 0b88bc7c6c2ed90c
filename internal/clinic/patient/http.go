// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package patient

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trankieu/medora/internal/platform/middleware"
	requestutil "github.com/trankieu/medora/internal/platform/request"
	"github.com/trankieu/medora/internal/platform/respond"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/platform/validate"
	"github.com/trankieu/medora/pkg/pagination"
	"github.com/trankieu/medora/pkg/pointer"
)

// Handler implements the patient registry HTTP surface.
type Handler struct {
	patientService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{patientService: service}
}

// Routes returns a [chi.Router] for patient self-service and staff access.
//
// # Endpoints
//   - GET    /me      : Patient: own registry entry.
//   - PUT    /me      : Patient: profile upsert.
//   - GET    /        : Staff: paginated registry.
//   - GET    /{id}    : Staff: single registry entry.
//   - DELETE /{id}    : Staff: retire a patient.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RolePatient))
		r.Get("/me", handler.me)
		r.Put("/me", handler.upsertProfile)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(sec.PermPatientList)).Get("/", handler.list)
		r.With(middleware.RequirePermission(sec.PermPatientList)).Get("/{id}", handler.find)
		r.With(middleware.RequirePermission(sec.PermPatientDelete)).Delete("/{id}", handler.remove)
	})

	return router
}

// # Request Payloads

type profileRequest struct {
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"` // ISO date, e.g. 1990-04-21
	Gender    string `json:"gender"`
	Address   string `json:"address"`
}

/*
Me returns the authenticated patient's registry entry.

GET /api/v1/patients/me

Response:
  - 200: Patient: Own entry
  - 404: ErrNotFound: No profile created yet
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredPrincipalID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	patient, err := handler.patientService.Find(request.Context(), principalID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, patient)
}

/*
UpsertProfile creates or updates the authenticated patient's profile.

PUT /api/v1/patients/me

Response:
  - 200: Profile: Saved profile
  - 400: ErrInvalidJSON: Validation failure
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

	var birthDate *time.Time
	if input.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", input.BirthDate)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldBirthDate, "must be an ISO date (YYYY-MM-DD)"))
			return
		}
		birthDate = pointer.To(parsed)
	}

	validator := &validate.Validator{}
	validator.MaxLen(FieldPhone, input.Phone, PhoneMaxLength).
		MaxLen(FieldAddress, input.Address, AddressMaxLength)
	if input.Gender != "" {
		validator.OneOf(FieldGender, input.Gender, GenderFemale, GenderMale, GenderUnspecified)
	}
	if birthDate != nil {
		validator.Custom(FieldBirthDate, birthDate.After(time.Now()), "must be in the past")
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.patientService.UpsertProfile(request.Context(), principalID, ProfileInput{
		Phone:     input.Phone,
		BirthDate: birthDate,
		Gender:    input.Gender,
		Address:   input.Address,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
List returns a page of the patient registry.

GET /api/v1/patients?page=&limit=

Response:
  - 200: []Patient with pagination metadata
  - 403: ErrForbidden: Missing patient:list permission
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	patients, total, err := handler.patientService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, patients, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
Find returns a single registry entry.

GET /api/v1/patients/{id}

Response:
  - 200: Patient: Registry entry
  - 404: ErrNotFound: Unknown patient
*/
func (handler *Handler) find(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patient, err := handler.patientService.Find(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, patient)
}

/*
Remove retires a patient account.

DELETE /api/v1/patients/{id}

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown patient
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	if err := handler.patientService.Remove(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
