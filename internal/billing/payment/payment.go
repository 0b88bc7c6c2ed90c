// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

/*
Package payment implements consultation billing through the Paymob gateway.

A payment is created for a completed booking and carries the fee snapshot
taken when the appointment was booked. The gateway interaction produces a
client-side payment key; the recorded payment stays pending until settlement.

# Architecture

  - Service: Orchestrates payment creation and listing.
  - Gateway: Abstracted Paymob HTTP client (authenticate, register order,
    mint payment key).
  - Repository: Postgres persistence for payment records.
*/
package payment

import (
	"context"
	"time"

	"github.com/trankieu/medora/pkg/pagination"
)

// # Statuses

// Status is the settlement state of a payment.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// # Domain Entities

// Payment records one billing attempt for an appointment.
type Payment struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        Status    `json:"status"`
	GatewayOrder  string    `json:"gateway_order_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Checkout is the transport payload handed to the client after a payment is
// created: the record plus the gateway token the client pays with.
type Checkout struct {
	Payment    *Payment `json:"payment"`
	PaymentKey string   `json:"payment_key"`
}

// # Field Identifiers

const (
	FieldAppointmentID = "appointment_id"

	// DefaultCurrency is the only settlement currency currently supported.
	DefaultCurrency = "EGP"
)

// # Repository Contract

// Repository is the persistence contract for payment records.
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByAppointmentID(ctx context.Context, appointmentID string) (*Payment, error)
	ListByPatient(ctx context.Context, patientID string, params pagination.Params) ([]*Payment, int64, error)
	List(ctx context.Context, params pagination.Params) ([]*Payment, int64, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
