// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/trankieu/medora/internal/clinic/appointment"
	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
	"github.com/trankieu/medora/pkg/uuid"
)

// # Service

// Service implements billing use cases.
type Service struct {
	payments     Repository
	appointments appointment.Repository
	principals   auth.PrincipalRepository
	gateway      Gateway
}

// NewService constructs the billing service.
func NewService(payments Repository, appointments appointment.Repository, principals auth.PrincipalRepository, gateway Gateway) *Service {
	return &Service{
		payments:     payments,
		appointments: appointments,
		principals:   principals,
		gateway:      gateway,
	}
}

/*
CreateCheckout creates a payment for a completed appointment and opens a
gateway order for it.

Description: The amount is taken from the appointment's fee snapshot, never
from client input. Each appointment can be paid at most once; a second
attempt answers Conflict with the existing record's state.

Parameters:
  - context: context.Context
  - patientID: string (the authenticated patient)
  - appointmentID: string

Returns:
  - *Checkout: Payment record plus the client-side payment key
  - error: NotFound (foreign/unknown appointment), Unprocessable (not yet
    completed), Conflict (already paid), BadGateway (upstream failure)
*/
func (service *Service) CreateCheckout(context context.Context, patientID, appointmentID string) (*Checkout, error) {
	booking, err := service.appointments.FindByID(context, appointmentID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Appointment")
		}
		return nil, fmt.Errorf("payment_service_appointment_lookup_failed: %w", err)
	}

	// Foreign appointments stay invisible, same policy as the scheduler.
	if booking.PatientID != patientID {
		return nil, apperr.NotFound("Appointment")
	}

	if booking.Status != appointment.StatusCompleted {
		return nil, apperr.Unprocessable("Only completed appointments can be paid")
	}

	// A store outage here must stop the flow before the gateway call, or a
	// failed lookup would silently cost an upstream order.
	existing, err := service.payments.FindByAppointmentID(context, appointmentID)
	if err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("Appointment already has a %s payment", existing.Status))
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("payment_service_payment_lookup_failed: %w", err)
	}

	record := &Payment{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		PatientID:     patientID,
		AmountCents:   booking.FeeCents,
		Currency:      DefaultCurrency,
		Status:        StatusPending,
	}

	// Billing contact data comes from the credential record.
	payer, err := service.principals.FindByID(context, patientID)
	if err != nil {
		return nil, fmt.Errorf("payment_service_payer_lookup_failed: %w", err)
	}

	result, err := service.gateway.CreateOrder(context, OrderRequest{
		MerchantRef: record.ID,
		AmountCents: record.AmountCents,
		Currency:    record.Currency,
		Email:       payer.Email,
		FullName:    payer.FullName,
	})
	if err != nil {
		return nil, apperr.BadGateway("Payment provider is unavailable", err)
	}

	record.GatewayOrder = result.OrderID

	if err := service.payments.Create(context, record); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict("Appointment already has a payment")
		}
		return nil, fmt.Errorf("payment_service_create_failed: %w", err)
	}

	return &Checkout{
		Payment:    record,
		PaymentKey: result.PaymentKey,
	}, nil
}

/*
MarkSettled records the settlement outcome reported by the gateway callback.

Parameters:
  - context: context.Context
  - paymentID: string (our merchant reference)
  - success: bool

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) MarkSettled(context context.Context, paymentID string, success bool) error {
	if _, err := service.payments.FindByID(context, paymentID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Payment")
		}
		return fmt.Errorf("payment_service_settle_lookup_failed: %w", err)
	}

	status := StatusPaid
	if !success {
		status = StatusFailed
	}

	if err := service.payments.UpdateStatus(context, paymentID, status); err != nil {
		return fmt.Errorf("payment_service_settle_failed: %w", err)
	}
	return nil
}

/*
ListForPatient returns the authenticated patient's payment history.

Parameters:
  - context: context.Context
  - patientID: string
  - params: pagination.Params

Returns:
  - []*Payment: Page of records
  - int64: Total count
  - error: Retrieval failures
*/
func (service *Service) ListForPatient(context context.Context, patientID string, params pagination.Params) ([]*Payment, int64, error) {
	payments, total, err := service.payments.ListByPatient(context, patientID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("payment_service_list_failed: %w", err)
	}
	return payments, total, nil
}

/*
ListAll returns every payment record, newest first. Staff only.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Payment: Page of records
  - int64: Total count
  - error: Retrieval failures
*/
func (service *Service) ListAll(context context.Context, params pagination.Params) ([]*Payment, int64, error) {
	payments, total, err := service.payments.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("payment_service_list_all_failed: %w", err)
	}
	return payments, total, nil
}
