// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package payment

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

// Handler implements the billing HTTP surface.
type Handler struct {
	paymentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{paymentService: service}
}

// Routes returns a [chi.Router] for checkout and payment history.
//
// # Endpoints
//   - POST /checkout : Patient: open a gateway order for a completed booking.
//   - GET  /         : Payment history (patients see their own, staff see all).
//   - POST /callback : Gateway settlement callback.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// The gateway calls back unauthenticated; it proves itself by knowing
	// the merchant reference we generated.
	router.Post("/callback", handler.callback)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(sec.PermPaymentCreate)).Post("/checkout", handler.checkout)
		r.With(middleware.RequirePermission(sec.PermPaymentList)).Get("/", handler.list)
	})

	return router
}

// # Request Payloads

type checkoutRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type callbackRequest struct {
	MerchantOrderID string `json:"merchant_order_id"`
	Success         bool   `json:"success"`
}

/*
Checkout opens a gateway order for a completed appointment.

POST /api/v1/payments/checkout

Response:
  - 201: Checkout: Payment record plus client-side payment key
  - 404: ErrNotFound: Unknown or foreign appointment
  - 409: ErrConflict: Appointment already paid
  - 422: ErrUnprocessable: Appointment not completed yet
  - 502: ErrBadGateway: Payment provider unavailable
*/
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input checkoutRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAppointmentID, input.AppointmentID).
		UUID(FieldAppointmentID, input.AppointmentID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	checkout, err := handler.paymentService.CreateCheckout(request.Context(), claims.PrincipalID, input.AppointmentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, checkout)
}

/*
List returns the payment history visible to the caller.

GET /api/v1/payments?page=&limit=

Description: Patients see their own records; admins and the owner see all.

Response:
  - 200: []Payment with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	var (
		payments []*Payment
		total    int64
	)
	if claims.PrincipalRole() == sec.RolePatient {
		payments, total, err = handler.paymentService.ListForPatient(request.Context(), claims.PrincipalID, params)
	} else {
		payments, total, err = handler.paymentService.ListAll(request.Context(), params)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, payments, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

/*
Callback records a settlement outcome reported by the gateway.

POST /api/v1/payments/callback

Response:
  - 200: Success message
  - 404: ErrNotFound: Unknown merchant reference
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	var input callbackRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("merchant_order_id", input.MerchantOrderID).
		UUID("merchant_order_id", input.MerchantOrderID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.paymentService.MarkSettled(request.Context(), input.MerchantOrderID, input.Success); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"message": "Settlement recorded",
	})
}
