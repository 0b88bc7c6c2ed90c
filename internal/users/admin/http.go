// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trankieu/medora/internal/platform/middleware"
	requestutil "github.com/trankieu/medora/internal/platform/request"
	"github.com/trankieu/medora/internal/platform/respond"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/platform/validate"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

// Handler implements the administrator management HTTP surface.
//
// Routes are gated per-permission rather than by role: the owner passes
// every check via the override role, and an individual admin can be widened
// into administrator management through its permission override set.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns a [chi.Router] for administrator management.
//
// # Endpoints
//   - GET    /                 : Lists administrators (paginated).
//   - POST   /                 : Provisions a new administrator.
//   - PUT    /{id}             : Updates an administrator's profile.
//   - PUT    /{id}/permissions : Replaces the permission override set.
//   - DELETE /{id}             : Retires an administrator.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.With(middleware.RequirePermission(sec.PermAdminList)).Get("/", handler.list)
	router.With(middleware.RequirePermission(sec.PermAdminCreate)).Post("/", handler.create)
	router.With(middleware.RequirePermission(sec.PermAdminUpdate)).Put("/{id}", handler.update)
	router.With(middleware.RequirePermission(sec.PermAdminUpdate)).Put("/{id}/permissions", handler.setPermissions)
	router.With(middleware.RequirePermission(sec.PermAdminDelete)).Delete("/{id}", handler.remove)

	return router
}

// # Request Payloads

type createRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FullName    string   `json:"full_name"`
	Permissions []string `json:"permissions,omitempty"`
}

type updateRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

/*
List returns a page of administrator accounts.

GET /api/v1/admins?page=&limit=

Response:
  - 200: []Principal with pagination metadata
  - 403: ErrForbidden: Missing admin:list permission
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	admins, total, err := handler.adminService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, admins, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
Create provisions a new administrator.

POST /api/v1/admins

Response:
  - 201: Principal: Created administrator
  - 400: ErrInvalidJSON: Validation failure or unknown permission
  - 409: ErrConflict: Email already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, auth.PasswordMinLength).
		MaxLen(auth.FieldPassword, input.Password, auth.PasswordMaxLength).
		Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, auth.FullNameMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	admin, err := handler.adminService.Create(request.Context(), CreateInput{
		Email:       input.Email,
		Password:    input.Password,
		FullName:    input.FullName,
		Permissions: input.Permissions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, admin)
}

/*
Update modifies an administrator's profile.

PUT /api/v1/admins/{id}

Response:
  - 200: Principal: Updated administrator
  - 404: ErrNotFound: Unknown administrator
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", id).
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, auth.FullNameMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	admin, err := handler.adminService.Update(request.Context(), id, UpdateInput{
		Email:    input.Email,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, admin)
}

/*
SetPermissions replaces an administrator's permission override set.

PUT /api/v1/admins/{id}/permissions

Description: Takes effect on the administrator's next issued token.

Response:
  - 200: Success message
  - 400: ErrInvalidJSON: Unknown permission name
  - 404: ErrNotFound: Unknown administrator
*/
func (handler *Handler) setPermissions(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var input permissionsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.adminService.SetPermissions(request.Context(), id, input.Permissions); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		auth.FieldMessage: "Permissions updated",
	})
}

/*
Remove retires an administrator account.

DELETE /api/v1/admins/{id}

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown administrator
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	if err := handler.adminService.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
