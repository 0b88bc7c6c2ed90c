// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

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

// PostgresPrincipalRepository implements [PrincipalRepository] using pgx.
//
// # Schema Table Mapping
//   - users.principal: master credential record for every principal kind.
type PostgresPrincipalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository creates a new Postgres implementation for credential storage.
func NewPrincipalRepository(pool *pgxpool.Pool) *PostgresPrincipalRepository {
	return &PostgresPrincipalRepository{pool: pool}
}

// principalColumns is the canonical SELECT column list, matched by scanPrincipal.
func principalColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.UsersPrincipal.ID, schema.UsersPrincipal.Email, schema.UsersPrincipal.PasswordHash,
		schema.UsersPrincipal.FullName, schema.UsersPrincipal.Role, schema.UsersPrincipal.Permissions,
		schema.UsersPrincipal.IsApproved, schema.UsersPrincipal.CreatedAt, schema.UsersPrincipal.UpdatedAt,
	)
}

func scanPrincipal(row pgx.Row) (*Principal, error) {
	principal := &Principal{}
	err := row.Scan(
		&principal.ID,
		&principal.Email,
		&principal.PasswordHash,
		&principal.FullName,
		&principal.Role,
		&principal.Permissions,
		&principal.IsApproved,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// # PrincipalRepository Methods

/*
Create inserts a new credential record into users.principal.

Parameters:
  - context: context.Context
  - principal: *Principal (ID must be pre-assigned)

Returns:
  - error: dberr.ErrDuplicate on email collision, or execution failure
*/
func (repository *PostgresPrincipalRepository) Create(context context.Context, principal *Principal) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s`,
		schema.UsersPrincipal.Table,
		schema.UsersPrincipal.ID, schema.UsersPrincipal.Email, schema.UsersPrincipal.PasswordHash,
		schema.UsersPrincipal.FullName, schema.UsersPrincipal.Role, schema.UsersPrincipal.Permissions,
		schema.UsersPrincipal.IsApproved,
		schema.UsersPrincipal.CreatedAt, schema.UsersPrincipal.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		principal.ID,
		principal.Email,
		principal.PasswordHash,
		principal.FullName,
		principal.Role,
		principal.Permissions,
		principal.IsApproved,
	).Scan(&principal.CreatedAt, &principal.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "postgres_principal_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a credential record by primary key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Principal: Hydrated credential entity
  - error: dberr.ErrNotFound or database execution failure
*/
func (repository *PostgresPrincipalRepository) FindByID(context context.Context, id string) (*Principal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		principalColumns(),
		schema.UsersPrincipal.Table,
		schema.UsersPrincipal.ID, schema.UsersPrincipal.DeletedAt,
	)

	principal, err := scanPrincipal(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_principal_repo_find_by_id_failed: %w", err)
	}

	return principal, nil
}

/*
FindByEmail retrieves a credential record by its unique email address.

Parameters:
  - context: context.Context
  - email: string (already normalized to lower case by the service layer)

Returns:
  - *Principal: Hydrated credential entity
  - error: dberr.ErrNotFound or database execution failure
*/
func (repository *PostgresPrincipalRepository) FindByEmail(context context.Context, email string) (*Principal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		principalColumns(),
		schema.UsersPrincipal.Table,
		schema.UsersPrincipal.Email, schema.UsersPrincipal.DeletedAt,
	)

	principal, err := scanPrincipal(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_principal_repo_find_by_email_failed: %w", err)
	}

	return principal, nil
}

/*
ListByRole retrieves a page of credential records for a given role, newest first.

Parameters:
  - context: context.Context
  - role: string
  - params: pagination.Params

Returns:
  - []*Principal: Page of records
  - int64: Total matching count for pagination metadata
  - error: Database retrieval failures
*/
func (repository *PostgresPrincipalRepository) ListByRole(context context.Context, role string, params pagination.Params) ([]*Principal, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s IS NULL`,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.Role, schema.UsersPrincipal.DeletedAt)

	var total int64
	if err := repository.pool.QueryRow(context, countQuery, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_principal_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		principalColumns(),
		schema.UsersPrincipal.Table,
		schema.UsersPrincipal.Role, schema.UsersPrincipal.DeletedAt,
		schema.UsersPrincipal.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, role, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_principal_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var principals []*Principal
	for rows.Next() {
		principal, err := scanPrincipal(rows)
		if err != nil {
			return nil, 0, err
		}
		principals = append(principals, principal)
	}

	return principals, total, nil
}

/*
Update modifies the mutable profile fields of a credential record.

Description: Syncs Email, FullName, and Permissions while refreshing the
updatedat timestamp. Role changes are deliberately not supported here.

Parameters:
  - context: context.Context
  - principal: *Principal

Returns:
  - error: dberr.ErrDuplicate on email collision, or update failures
*/
func (repository *PostgresPrincipalRepository) Update(context context.Context, principal *Principal) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s IS NULL`,
		schema.UsersPrincipal.Table,
		schema.UsersPrincipal.Email, schema.UsersPrincipal.FullName,
		schema.UsersPrincipal.Permissions, schema.UsersPrincipal.UpdatedAt,
		schema.UsersPrincipal.ID, schema.UsersPrincipal.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query,
		principal.ID,
		principal.Email,
		principal.FullName,
		principal.Permissions,
		time.Now(),
	)

	// If the update fails, return an error
	if err != nil {
		return dberr.Wrap(err, "postgres_principal_repo_update_failed")
	}

	return nil
}

/*
UpdatePassword replaces the stored password hash.

Parameters:
  - context: context.Context
  - id: string
  - passwordHash: string (already bcrypt-hashed)

Returns:
  - error: Update failures
*/
func (repository *PostgresPrincipalRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.PasswordHash,
		schema.UsersPrincipal.UpdatedAt, schema.UsersPrincipal.ID, schema.UsersPrincipal.DeletedAt)

	_, err := repository.pool.Exec(context, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres_principal_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
SetApproved flags or unflags a doctor account as approved for login.

Parameters:
  - context: context.Context
  - id: string
  - approved: bool

Returns:
  - error: Update failures
*/
func (repository *PostgresPrincipalRepository) SetApproved(context context.Context, id string, approved bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.IsApproved,
		schema.UsersPrincipal.UpdatedAt, schema.UsersPrincipal.ID, schema.UsersPrincipal.DeletedAt)

	_, err := repository.pool.Exec(context, query, id, approved)
	if err != nil {
		return fmt.Errorf("postgres_principal_repo_set_approved_failed: %w", err)
	}

	return nil
}

/*
SetPermissions replaces the per-principal permission override set.

Passing an empty slice clears the override, restoring role defaults.

Parameters:
  - context: context.Context
  - id: string
  - permissions: []string

Returns:
  - error: Update failures
*/
func (repository *PostgresPrincipalRepository) SetPermissions(context context.Context, id string, permissions []string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.Permissions,
		schema.UsersPrincipal.UpdatedAt, schema.UsersPrincipal.ID, schema.UsersPrincipal.DeletedAt)

	_, err := repository.pool.Exec(context, query, id, permissions)
	if err != nil {
		return fmt.Errorf("postgres_principal_repo_set_permissions_failed: %w", err)
	}

	return nil
}

/*
Delete flags a credential record as logically destroyed.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresPrincipalRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.UsersPrincipal.Table, schema.UsersPrincipal.DeletedAt, schema.UsersPrincipal.ID)
	_, err := repository.pool.Exec(context, query, id)
	return err
}
