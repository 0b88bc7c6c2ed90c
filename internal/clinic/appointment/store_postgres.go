// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

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
//   - clinic.appointment: one row per booking, status-driven lifecycle.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for appointments.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func appointmentColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.ClinicAppointment.ID, schema.ClinicAppointment.DoctorID,
		schema.ClinicAppointment.PatientID, schema.ClinicAppointment.ScheduledAt,
		schema.ClinicAppointment.DurationMinutes, schema.ClinicAppointment.Status,
		schema.ClinicAppointment.Reason, schema.ClinicAppointment.FeeCents,
		schema.ClinicAppointment.CreatedAt, schema.ClinicAppointment.UpdatedAt,
	)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	appointment := &Appointment{}
	err := row.Scan(
		&appointment.ID,
		&appointment.DoctorID,
		&appointment.PatientID,
		&appointment.ScheduledAt,
		&appointment.DurationMinutes,
		&appointment.Status,
		&appointment.Reason,
		&appointment.FeeCents,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// # Repository Methods

/*
Create inserts a new booking.

Parameters:
  - context: context.Context
  - appointment: *Appointment

Returns:
  - error: dberr.ErrDuplicate when the slot exclusion constraint fires,
    or execution failure
*/
func (repository *PostgresRepository) Create(context context.Context, appointment *Appointment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.ClinicAppointment.Table,
		schema.ClinicAppointment.ID, schema.ClinicAppointment.DoctorID,
		schema.ClinicAppointment.PatientID, schema.ClinicAppointment.ScheduledAt,
		schema.ClinicAppointment.DurationMinutes, schema.ClinicAppointment.Status,
		schema.ClinicAppointment.Reason, schema.ClinicAppointment.FeeCents,
		schema.ClinicAppointment.CreatedAt, schema.ClinicAppointment.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.ScheduledAt,
		appointment.DurationMinutes,
		appointment.Status,
		appointment.Reason,
		appointment.FeeCents,
	).Scan(&appointment.CreatedAt, &appointment.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_appointment_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a single booking.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Appointment: Hydrated booking
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		appointmentColumns(), schema.ClinicAppointment.Table, schema.ClinicAppointment.ID)

	appointment, err := scanAppointment(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_appointment_repo_find_failed: %w", err)
	}

	return appointment, nil
}

/*
List retrieves a page of bookings matching the filter, soonest first.

Parameters:
  - context: context.Context
  - filter: Filter (zero values match everything)
  - params: pagination.Params

Returns:
  - []*Appointment: Page of bookings
  - int64: Total matching count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, params pagination.Params) ([]*Appointment, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		where += fmt.Sprintf(" AND %s = $%d", schema.ClinicAppointment.DoctorID, len(args))
	}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		where += fmt.Sprintf(" AND %s = $%d", schema.ClinicAppointment.PatientID, len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND %s = $%d", schema.ClinicAppointment.Status, len(args))
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.ClinicAppointment.Table) + where

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_appointment_repo_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM %s`, appointmentColumns(), schema.ClinicAppointment.Table) +
		where + fmt.Sprintf(` ORDER BY %s ASC LIMIT $%d OFFSET $%d`,
		schema.ClinicAppointment.ScheduledAt, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_appointment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, appointment)
	}

	return appointments, total, nil
}

/*
UpdateStatus applies a lifecycle state change.

Parameters:
  - context: context.Context
  - id: string
  - status: Status

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) UpdateStatus(context context.Context, id string, status Status) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.ClinicAppointment.Table, schema.ClinicAppointment.Status,
		schema.ClinicAppointment.UpdatedAt, schema.ClinicAppointment.ID)

	_, err := repository.pool.Exec(context, query, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres_appointment_repo_update_status_failed: %w", err)
	}

	return nil
}

/*
HasOverlap reports whether the doctor has a live booking intersecting the
[start, end) window.

Description: Cancelled and completed appointments never block a slot. The
interval comparison treats windows as half-open so back-to-back bookings do
not collide.

Parameters:
  - context: context.Context
  - doctorID: string
  - start, end: time.Time

Returns:
  - bool: True when an intersecting booking exists
  - error: Retrieval failures
*/
func (repository *PostgresRepository) HasOverlap(context context.Context, doctorID string, start, end time.Time) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE %s = $1
			  AND %s IN ($2, $3)
			  AND %s < $5
			  AND (%s + make_interval(mins => %s)) > $4
		)`,
		schema.ClinicAppointment.Table,
		schema.ClinicAppointment.DoctorID,
		schema.ClinicAppointment.Status,
		schema.ClinicAppointment.ScheduledAt,
		schema.ClinicAppointment.ScheduledAt, schema.ClinicAppointment.DurationMinutes,
	)

	var exists bool
	err := repository.pool.QueryRow(context, query,
		doctorID, string(StatusPending), string(StatusConfirmed), start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres_appointment_repo_overlap_failed: %w", err)
	}

	return exists, nil
}
