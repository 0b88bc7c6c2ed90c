// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package patient

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

// PostgresProfileRepository implements [ProfileRepository] using pgx.
//
// # Schema Table Mapping
//   - clinic.patientprofile: demographic data, 1:1 with users.principal.
//   - users.principal: joined for display fields.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new Postgres implementation for patient profiles.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

func patientSelect() string {
	return fmt.Sprintf(`
		SELECT pp.%s, pp.%s, pp.%s, pp.%s, pp.%s, pp.%s, pp.%s,
		       p.%s, p.%s
		FROM %s pp
		JOIN %s p ON p.%s = pp.%s AND p.%s IS NULL`,
		schema.ClinicPatientProfile.PrincipalID, schema.ClinicPatientProfile.Phone,
		schema.ClinicPatientProfile.BirthDate, schema.ClinicPatientProfile.Gender,
		schema.ClinicPatientProfile.Address, schema.ClinicPatientProfile.CreatedAt,
		schema.ClinicPatientProfile.UpdatedAt,
		schema.UsersPrincipal.FullName, schema.UsersPrincipal.Email,
		schema.ClinicPatientProfile.Table,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.ID,
		schema.ClinicPatientProfile.PrincipalID, schema.UsersPrincipal.DeletedAt,
	)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	patient := &Patient{}
	err := row.Scan(
		&patient.PrincipalID,
		&patient.Phone,
		&patient.BirthDate,
		&patient.Gender,
		&patient.Address,
		&patient.CreatedAt,
		&patient.UpdatedAt,
		&patient.FullName,
		&patient.Email,
	)
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// # ProfileRepository Methods

/*
Upsert saves a patient profile using an ON CONFLICT UPDATE strategy.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Synchronization failures
*/
func (repository *PostgresProfileRepository) Upsert(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s, %s`,
		schema.ClinicPatientProfile.Table,
		schema.ClinicPatientProfile.PrincipalID, schema.ClinicPatientProfile.Phone,
		schema.ClinicPatientProfile.BirthDate, schema.ClinicPatientProfile.Gender,
		schema.ClinicPatientProfile.Address,
		schema.ClinicPatientProfile.PrincipalID,
		schema.ClinicPatientProfile.Phone, schema.ClinicPatientProfile.Phone,
		schema.ClinicPatientProfile.BirthDate, schema.ClinicPatientProfile.BirthDate,
		schema.ClinicPatientProfile.Gender, schema.ClinicPatientProfile.Gender,
		schema.ClinicPatientProfile.Address, schema.ClinicPatientProfile.Address,
		schema.ClinicPatientProfile.UpdatedAt,
		schema.ClinicPatientProfile.CreatedAt, schema.ClinicPatientProfile.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		profile.PrincipalID,
		profile.Phone,
		profile.BirthDate,
		profile.Gender,
		profile.Address,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	// If the upsert fails, return an error
	if err != nil {
		return fmt.Errorf("postgres_patient_repo_upsert_failed: %w", err)
	}

	return nil
}

/*
FindByPrincipalID retrieves a registry entry by the owning principal.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *Patient: Joined registry entry
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresProfileRepository) FindByPrincipalID(context context.Context, principalID string) (*Patient, error) {
	query := patientSelect() + fmt.Sprintf(` WHERE pp.%s = $1`, schema.ClinicPatientProfile.PrincipalID)

	patient, err := scanPatient(repository.pool.QueryRow(context, query, principalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_patient_repo_find_failed: %w", err)
	}

	return patient, nil
}

/*
List retrieves a page of the patient registry, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Patient: Page of registry entries
  - int64: Total count
  - error: Retrieval failures
*/
func (repository *PostgresProfileRepository) List(context context.Context, params pagination.Params) ([]*Patient, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s pp
		JOIN %s p ON p.%s = pp.%s AND p.%s IS NULL`,
		schema.ClinicPatientProfile.Table,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.ID,
		schema.ClinicPatientProfile.PrincipalID, schema.UsersPrincipal.DeletedAt,
	)

	var total int64
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_patient_repo_count_failed: %w", err)
	}

	query := patientSelect() + fmt.Sprintf(`
		ORDER BY pp.%s DESC
		LIMIT $1 OFFSET $2`,
		schema.ClinicPatientProfile.CreatedAt)

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_patient_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, patient)
	}

	return patients, total, nil
}
