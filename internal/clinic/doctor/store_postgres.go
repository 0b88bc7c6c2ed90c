// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package doctor

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
//   - clinic.doctorprofile: public clinical profile, 1:1 with users.principal.
//   - users.principal: joined for display fields and the approval flag.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new Postgres implementation for doctor profiles.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// doctorSelect is the joined roster projection shared by the read queries.
func doctorSelect() string {
	return fmt.Sprintf(`
		SELECT d.%s, d.%s, d.%s, d.%s, d.%s, d.%s, d.%s,
		       p.%s, p.%s, p.%s
		FROM %s d
		JOIN %s p ON p.%s = d.%s AND p.%s IS NULL`,
		schema.ClinicDoctorProfile.PrincipalID, schema.ClinicDoctorProfile.Slug,
		schema.ClinicDoctorProfile.Specialty, schema.ClinicDoctorProfile.Bio,
		schema.ClinicDoctorProfile.ConsultationFee, schema.ClinicDoctorProfile.CreatedAt,
		schema.ClinicDoctorProfile.UpdatedAt,
		schema.UsersPrincipal.FullName, schema.UsersPrincipal.Email, schema.UsersPrincipal.IsApproved,
		schema.ClinicDoctorProfile.Table,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.ID,
		schema.ClinicDoctorProfile.PrincipalID, schema.UsersPrincipal.DeletedAt,
	)
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	doc := &Doctor{}
	err := row.Scan(
		&doc.PrincipalID,
		&doc.Slug,
		&doc.Specialty,
		&doc.Bio,
		&doc.ConsultationFee,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.FullName,
		&doc.Email,
		&doc.IsApproved,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// # ProfileRepository Methods

/*
Upsert saves a doctor profile using an ON CONFLICT UPDATE strategy.

Description: The slug column is written only on insert; updates never touch
it, keeping published profile links stable.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: dberr.ErrDuplicate on slug collision, or synchronization failures
*/
func (repository *PostgresProfileRepository) Upsert(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s, %s`,
		schema.ClinicDoctorProfile.Table,
		schema.ClinicDoctorProfile.PrincipalID, schema.ClinicDoctorProfile.Slug,
		schema.ClinicDoctorProfile.Specialty, schema.ClinicDoctorProfile.Bio,
		schema.ClinicDoctorProfile.ConsultationFee,
		schema.ClinicDoctorProfile.PrincipalID,
		schema.ClinicDoctorProfile.Specialty, schema.ClinicDoctorProfile.Specialty,
		schema.ClinicDoctorProfile.Bio, schema.ClinicDoctorProfile.Bio,
		schema.ClinicDoctorProfile.ConsultationFee, schema.ClinicDoctorProfile.ConsultationFee,
		schema.ClinicDoctorProfile.UpdatedAt,
		schema.ClinicDoctorProfile.CreatedAt, schema.ClinicDoctorProfile.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		profile.PrincipalID,
		profile.Slug,
		profile.Specialty,
		profile.Bio,
		profile.ConsultationFee,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_doctor_repo_upsert_failed")
	}

	return nil
}

/*
FindByPrincipalID retrieves a roster entry by the owning principal.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *Doctor: Joined roster entry
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresProfileRepository) FindByPrincipalID(context context.Context, principalID string) (*Doctor, error) {
	query := doctorSelect() + fmt.Sprintf(` WHERE d.%s = $1`, schema.ClinicDoctorProfile.PrincipalID)

	doc, err := scanDoctor(repository.pool.QueryRow(context, query, principalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_doctor_repo_find_by_principal_failed: %w", err)
	}

	return doc, nil
}

/*
FindBySlug retrieves a roster entry by its public URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Doctor: Joined roster entry
  - error: dberr.ErrNotFound or retrieval failures
*/
func (repository *PostgresProfileRepository) FindBySlug(context context.Context, slug string) (*Doctor, error) {
	query := doctorSelect() + fmt.Sprintf(` WHERE d.%s = $1`, schema.ClinicDoctorProfile.Slug)

	doc, err := scanDoctor(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_doctor_repo_find_by_slug_failed: %w", err)
	}

	return doc, nil
}

/*
ListApproved retrieves a page of approved doctors, optionally filtered by
specialty (case-insensitive exact match).

Parameters:
  - context: context.Context
  - specialty: string (empty matches all)
  - params: pagination.Params

Returns:
  - []*Doctor: Page of roster entries
  - int64: Total matching count
  - error: Retrieval failures
*/
func (repository *PostgresProfileRepository) ListApproved(context context.Context, specialty string, params pagination.Params) ([]*Doctor, int64, error) {
	filter := fmt.Sprintf(` WHERE p.%s = TRUE`, schema.UsersPrincipal.IsApproved)
	args := []interface{}{}

	if specialty != "" {
		filter += fmt.Sprintf(` AND LOWER(d.%s) = LOWER($1)`, schema.ClinicDoctorProfile.Specialty)
		args = append(args, specialty)
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s d
		JOIN %s p ON p.%s = d.%s AND p.%s IS NULL`,
		schema.ClinicDoctorProfile.Table,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.ID,
		schema.ClinicDoctorProfile.PrincipalID, schema.UsersPrincipal.DeletedAt,
	) + filter

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_doctor_repo_count_failed: %w", err)
	}

	listQuery := doctorSelect() + filter + fmt.Sprintf(`
		ORDER BY p.%s ASC
		LIMIT $%d OFFSET $%d`,
		schema.UsersPrincipal.FullName, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_doctor_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, doc)
	}

	return doctors, total, nil
}

/*
SlugExists reports whether a slug is already taken.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - bool: True when taken
  - error: Retrieval failures
*/
func (repository *PostgresProfileRepository) SlugExists(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`,
		schema.ClinicDoctorProfile.Table, schema.ClinicDoctorProfile.Slug)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_doctor_repo_slug_exists_failed: %w", err)
	}
	return exists, nil
}
