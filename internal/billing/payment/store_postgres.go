// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trankieu/medora/internal/platform/database/schema"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/pkg/pagination"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
//
// # Schema Table Mapping
//   - billing.payment: one row per billing attempt, unique per appointment.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for payment records.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func paymentColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.BillingPayment.ID, schema.BillingPayment.AppointmentID,
		schema.BillingPayment.PatientID, schema.BillingPayment.AmountCents,
		schema.BillingPayment.Currency, schema.BillingPayment.Status,
		schema.BillingPayment.GatewayOrder, schema.BillingPayment.CreatedAt,
		schema.BillingPayment.UpdatedAt,
	)
}

func scanPayment(row pgx.Row) (*Payment, error) {
	payment := &Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.AppointmentID,
		&payment.PatientID,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&payment.GatewayOrder,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// # Repository Methods

/*
Create inserts a new payment record.

Parameters:
  - context: context.Context
  - payment: *Payment

Returns:
  - error: dberr.ErrDuplicate for a second payment on the same appointment,
    or execution failure
*/
func (repository *PostgresRepository) Create(context context.Context, payment *Payment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s`,
		schema.BillingPayment.Table,
		schema.BillingPayment.ID, schema.BillingPayment.AppointmentID,
		schema.BillingPayment.PatientID, schema.BillingPayment.AmountCents,
		schema.BillingPayment.Currency, schema.BillingPayment.Status,
		schema.BillingPayment.GatewayOrder,
		schema.BillingPayment.CreatedAt, schema.BillingPayment.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		payment.ID,
		payment.AppointmentID,
		payment.PatientID,
		payment.AmountCents,
		payment.Currency,
		payment.Status,
		payment.GatewayOrder,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_payment_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a payment record by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Payment: Hydrated record
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		paymentColumns(), schema.BillingPayment.Table, schema.BillingPayment.ID)

	payment, err := scanPayment(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_payment_repo_find_failed: %w", err)
	}

	return payment, nil
}

/*
FindByAppointmentID retrieves the payment attached to an appointment.

Parameters:
  - context: context.Context
  - appointmentID: string

Returns:
  - *Payment: Hydrated record
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByAppointmentID(context context.Context, appointmentID string) (*Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		paymentColumns(), schema.BillingPayment.Table, schema.BillingPayment.AppointmentID)

	payment, err := scanPayment(repository.pool.QueryRow(context, query, appointmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_payment_repo_find_by_appointment_failed: %w", err)
	}

	return payment, nil
}

/*
ListByPatient retrieves a page of one patient's payments, newest first.
*/
func (repository *PostgresRepository) ListByPatient(context context.Context, patientID string, params pagination.Params) ([]*Payment, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.BillingPayment.Table, schema.BillingPayment.PatientID)

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		paymentColumns(), schema.BillingPayment.Table,
		schema.BillingPayment.PatientID, schema.BillingPayment.CreatedAt)

	rows, err := repository.pool.Query(context, query, patientID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_list_by_patient_failed: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows, total)
}

/*
List retrieves a page of all payment records, newest first.
*/
func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*Payment, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.BillingPayment.Table)

	var total int64
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		paymentColumns(), schema.BillingPayment.Table, schema.BillingPayment.CreatedAt)

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows, total)
}

/*
UpdateStatus records a settlement outcome.
*/
func (repository *PostgresRepository) UpdateStatus(context context.Context, id string, status Status) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.BillingPayment.Table, schema.BillingPayment.Status,
		schema.BillingPayment.UpdatedAt, schema.BillingPayment.ID)

	_, err := repository.pool.Exec(context, query, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres_payment_repo_update_status_failed: %w", err)
	}

	return nil
}

func collectPayments(rows pgx.Rows, total int64) ([]*Payment, int64, error) {
	var payments []*Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}
	return payments, total, nil
}
