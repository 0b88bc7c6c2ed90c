// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package payment_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trankieu/medora/internal/billing/payment"
	"github.com/trankieu/medora/internal/clinic/appointment"
	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

const (
	patientID     = "0191e4a0-0000-7000-8000-00000000beef"
	doctorID      = "0191e4a0-0000-7000-8000-00000000d0c0"
	strangerID    = "0191e4a0-0000-7000-8000-00000000aaaa"
	appointmentID = "0191e4a0-0000-7000-8000-00000000ca1e"
)

// # Test Fakes

type memoryPayments struct {
	byID            map[string]*payment.Payment
	byAppointmentID map[string]*payment.Payment

	// lookupErr simulates a store outage on FindByAppointmentID.
	lookupErr error
}

func newMemoryPayments() *memoryPayments {
	return &memoryPayments{
		byID:            map[string]*payment.Payment{},
		byAppointmentID: map[string]*payment.Payment{},
	}
}

func (m *memoryPayments) Create(_ context.Context, p *payment.Payment) error {
	if _, exists := m.byAppointmentID[p.AppointmentID]; exists {
		return dberr.ErrDuplicate
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	m.byAppointmentID[p.AppointmentID] = p
	return nil
}

func (m *memoryPayments) FindByID(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return p, nil
}

func (m *memoryPayments) FindByAppointmentID(_ context.Context, appointmentID string) (*payment.Payment, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	p, ok := m.byAppointmentID[appointmentID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return p, nil
}

func (m *memoryPayments) ListByPatient(_ context.Context, patientID string, _ pagination.Params) ([]*payment.Payment, int64, error) {
	var out []*payment.Payment
	for _, p := range m.byID {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryPayments) List(_ context.Context, _ pagination.Params) ([]*payment.Payment, int64, error) {
	var out []*payment.Payment
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memoryPayments) UpdateStatus(_ context.Context, id string, status payment.Status) error {
	p, ok := m.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	p.Status = status
	return nil
}

type memoryAppointments struct {
	byID map[string]*appointment.Appointment
}

func (m *memoryAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	m.byID[a.ID] = a
	return nil
}

func (m *memoryAppointments) FindByID(_ context.Context, id string) (*appointment.Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return a, nil
}

func (m *memoryAppointments) List(_ context.Context, _ appointment.Filter, _ pagination.Params) ([]*appointment.Appointment, int64, error) {
	return nil, 0, nil
}

func (m *memoryAppointments) UpdateStatus(_ context.Context, id string, status appointment.Status) error {
	m.byID[id].Status = status
	return nil
}

func (m *memoryAppointments) HasOverlap(_ context.Context, _ string, _, _ time.Time) (bool, error) {
	return false, nil
}

type memoryPrincipals struct {
	byID map[string]*auth.Principal
}

func (m *memoryPrincipals) Create(_ context.Context, p *auth.Principal) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memoryPrincipals) FindByID(_ context.Context, id string) (*auth.Principal, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return p, nil
}

func (m *memoryPrincipals) FindByEmail(_ context.Context, _ string) (*auth.Principal, error) {
	return nil, dberr.ErrNotFound
}

func (m *memoryPrincipals) ListByRole(_ context.Context, _ string, _ pagination.Params) ([]*auth.Principal, int64, error) {
	return nil, 0, nil
}

func (m *memoryPrincipals) Update(_ context.Context, _ *auth.Principal) error        { return nil }
func (m *memoryPrincipals) UpdatePassword(_ context.Context, _, _ string) error      { return nil }
func (m *memoryPrincipals) SetApproved(_ context.Context, _ string, _ bool) error    { return nil }
func (m *memoryPrincipals) SetPermissions(_ context.Context, _ string, _ []string) error {
	return nil
}
func (m *memoryPrincipals) Delete(_ context.Context, _ string) error { return nil }

// stubGateway records the orders it was asked to create.
type stubGateway struct {
	orders  []payment.OrderRequest
	failing bool
}

func (g *stubGateway) CreateOrder(_ context.Context, order payment.OrderRequest) (*payment.OrderResult, error) {
	if g.failing {
		return nil, errors.New("upstream timeout")
	}
	g.orders = append(g.orders, order)
	return &payment.OrderResult{
		OrderID:    "paymob-98765",
		PaymentKey: "pk-test-token",
	}, nil
}

// # Fixtures

func newTestService(t *testing.T, bookingStatus appointment.Status) (*payment.Service, *memoryPayments, *stubGateway) {
	t.Helper()

	appointments := &memoryAppointments{byID: map[string]*appointment.Appointment{
		appointmentID: {
			ID:              appointmentID,
			DoctorID:        doctorID,
			PatientID:       patientID,
			ScheduledAt:     time.Now().Add(-time.Hour),
			DurationMinutes: 30,
			Status:          bookingStatus,
			FeeCents:        25000,
		},
	}}

	principals := &memoryPrincipals{byID: map[string]*auth.Principal{
		patientID: {
			ID:       patientID,
			Email:    "payer@medora.health",
			FullName: "Pay Er",
			Role:     sec.RolePatient,
		},
	}}

	payments := newMemoryPayments()
	gateway := &stubGateway{}

	return payment.NewService(payments, appointments, principals, gateway), payments, gateway
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.HTTPStatus
}

// # Tests

/*
TestService_CreateCheckout verifies the happy path: the amount comes from the
appointment's fee snapshot and the gateway order carries our merchant
reference and the payer's contact data.
*/
func TestService_CreateCheckout(t *testing.T) {
	service, payments, gateway := newTestService(t, appointment.StatusCompleted)

	checkout, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusPending, checkout.Payment.Status)
	assert.EqualValues(t, 25000, checkout.Payment.AmountCents)
	assert.Equal(t, payment.DefaultCurrency, checkout.Payment.Currency)
	assert.Equal(t, "paymob-98765", checkout.Payment.GatewayOrder)
	assert.Equal(t, "pk-test-token", checkout.PaymentKey)

	require.Len(t, gateway.orders, 1)
	assert.Equal(t, checkout.Payment.ID, gateway.orders[0].MerchantRef)
	assert.Equal(t, "payer@medora.health", gateway.orders[0].Email)

	stored, err := payments.FindByAppointmentID(context.Background(), appointmentID)
	require.NoError(t, err)
	assert.Equal(t, checkout.Payment.ID, stored.ID)
}

/*
TestService_CreateCheckout_Guards verifies the rejection paths: foreign
appointment, not-yet-completed booking, and double payment.
*/
func TestService_CreateCheckout_Guards(t *testing.T) {
	t.Run("foreign appointment", func(t *testing.T) {
		service, _, _ := newTestService(t, appointment.StatusCompleted)

		_, err := service.CreateCheckout(context.Background(), strangerID, appointmentID)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("not completed", func(t *testing.T) {
		service, _, _ := newTestService(t, appointment.StatusConfirmed)

		_, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
	})

	t.Run("double payment", func(t *testing.T) {
		service, _, _ := newTestService(t, appointment.StatusCompleted)

		_, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
		require.NoError(t, err)

		_, err = service.CreateCheckout(context.Background(), patientID, appointmentID)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
	})
}

/*
TestService_CreateCheckout_GatewayDown verifies that an upstream failure maps
to 502 and leaves no half-created payment record behind.
*/
func TestService_CreateCheckout_GatewayDown(t *testing.T) {
	service, payments, gateway := newTestService(t, appointment.StatusCompleted)
	gateway.failing = true

	_, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))

	_, err = payments.FindByAppointmentID(context.Background(), appointmentID)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestService_CreateCheckout_StoreDown verifies that a failed duplicate lookup
stops the flow before the gateway call: no upstream order may be created when
we cannot prove the appointment is unpaid.
*/
func TestService_CreateCheckout_StoreDown(t *testing.T) {
	service, payments, gateway := newTestService(t, appointment.StatusCompleted)
	storeErr := errors.New("connection reset by peer")
	payments.lookupErr = storeErr

	_, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, apperr.As(err), "store outage must not map to a client error")

	assert.Empty(t, gateway.orders)
	assert.Empty(t, payments.byID)
}

/*
TestService_MarkSettled verifies settlement recording for both outcomes.
*/
func TestService_MarkSettled(t *testing.T) {
	service, payments, _ := newTestService(t, appointment.StatusCompleted)

	checkout, err := service.CreateCheckout(context.Background(), patientID, appointmentID)
	require.NoError(t, err)

	require.NoError(t, service.MarkSettled(context.Background(), checkout.Payment.ID, true))
	settled, err := payments.FindByID(context.Background(), checkout.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, settled.Status)

	// Unknown merchant references answer NotFound.
	err = service.MarkSettled(context.Background(), "0191e4a0-dead-7000-8000-000000000000", true)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
